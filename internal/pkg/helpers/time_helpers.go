package helpers

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// FormatClock renders a wall-clock time as the 12-hour "h:mm am/pm" display
// format used in transcript entries. Midnight is "12:mm am", noon "12:mm pm".
func FormatClock(t time.Time) string {
	h := t.Hour()
	m := t.Minute()
	switch {
	case h > 12:
		return fmt.Sprintf("%d:%02d pm", h-12, m)
	case h == 12:
		return fmt.Sprintf("12:%02d pm", m)
	case h == 0:
		return fmt.Sprintf("12:%02d am", m)
	default:
		return fmt.Sprintf("%d:%02d am", h, m)
	}
}
