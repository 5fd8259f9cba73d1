package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusmeet/backend/internal/pkg/metrics"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 64

// Subscriber is one delivery target: a single buffered queue fed by every
// channel the subscriber is on. Deliveries into a full queue are dropped so a
// slow or disconnected consumer never stalls a publisher.
type Subscriber struct {
	mu     sync.Mutex
	queue  chan Event
	closed bool
}

// NewSubscriber creates a subscriber with the given queue length.
func NewSubscriber(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Subscriber{queue: make(chan Event, buffer)}
}

// Events returns the subscriber's receive side. The channel is closed when
// the subscriber is released from the router.
func (s *Subscriber) Events() <-chan Event {
	return s.queue
}

// trySend enqueues without blocking. Returns false if the event was dropped
// because the queue is full or the subscriber is already closed.
func (s *Subscriber) trySend(evt Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.queue <- evt:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}

// Router fans events out to the current subscribers of a named channel.
// The registry favors many concurrent publishes over occasional
// subscribe/unsubscribe churn.
type Router struct {
	mu       sync.RWMutex
	channels map[string]map[*Subscriber]struct{}
	logger   zerolog.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{
		channels: make(map[string]map[*Subscriber]struct{}),
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe adds the subscriber to a channel. Idempotent.
func (r *Router) Subscribe(channel string, s *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs, ok := r.channels[channel]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		r.channels[channel] = subs
	}
	subs[s] = struct{}{}
}

// Unsubscribe removes the subscriber from a channel. Idempotent; removing a
// subscriber that is not on the channel is a no-op.
func (r *Router) Unsubscribe(channel string, s *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subs, ok := r.channels[channel]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(r.channels, channel)
		}
	}
}

// Release removes the subscriber from every channel and closes its queue.
// Call exactly once when the owning connection goes away; pending events
// already queued are still readable until the channel drains.
func (r *Router) Release(s *Subscriber) {
	r.mu.Lock()
	for channel, subs := range r.channels {
		delete(subs, s)
		if len(subs) == 0 {
			delete(r.channels, channel)
		}
	}
	r.mu.Unlock()
	s.close()
}

// Publish delivers the events, in order, to every current subscriber of the
// channel. It never blocks on a slow subscriber: each delivery goes into the
// subscriber's own buffer and is dropped, counted and logged on overflow.
// Events passed in one call share a single registry snapshot, so a subscriber
// sees either all of them (order preserved) or a suffix dropped at its buffer
// limit, never a reordering.
func (r *Router) Publish(channel string, evts ...Event) {
	if len(evts) == 0 {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs, ok := r.channels[channel]
	if !ok {
		return
	}
	for s := range subs {
		for _, evt := range evts {
			if !s.trySend(evt) {
				metrics.EventsDroppedTotal.Inc()
				r.logger.Warn().
					Str("channel", channel).
					Str("eventType", string(evt.Type)).
					Msg("Dropped event for slow subscriber")
			}
		}
	}
}

// SubscriberCount returns the number of subscribers currently on a channel.
func (r *Router) SubscriberCount(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}
