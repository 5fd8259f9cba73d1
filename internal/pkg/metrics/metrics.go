package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "meetup_ws_connections",
		Help: "Current number of live websocket connections",
	})
	JoinsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meetup_joins_total",
		Help: "Total number of successful meetup admissions",
	})
	JoinsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meetup_joins_rejected_total",
		Help: "Total number of admissions rejected at capacity",
	})
	LeavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meetup_leaves_total",
		Help: "Total number of meetup leaves",
	})
	ChatEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meetup_chat_entries_total",
		Help: "Total number of transcript entries appended",
	})
	EventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meetup_events_dropped_total",
		Help: "Total number of events dropped on full subscriber buffers",
	})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		JoinsTotal,
		JoinsRejectedTotal,
		LeavesTotal,
		ChatEntriesTotal,
		EventsDroppedTotal,
	)
}
