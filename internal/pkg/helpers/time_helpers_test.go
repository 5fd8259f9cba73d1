package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatClock(t *testing.T) {
	cases := []struct {
		hour, minute int
		want         string
	}{
		{0, 5, "12:05 am"},
		{9, 30, "9:30 am"},
		{12, 0, "12:00 pm"},
		{13, 7, "1:07 pm"},
		{23, 59, "11:59 pm"},
	}
	for _, c := range cases {
		at := time.Date(2025, 4, 23, c.hour, c.minute, 0, 0, time.Local)
		require.Equal(t, c.want, FormatClock(at))
	}
}

func TestParseDuration_Fallback(t *testing.T) {
	require.Equal(t, time.Hour, ParseDuration("not-a-duration", time.Hour))
	require.Equal(t, 30*time.Minute, ParseDuration("30m", time.Hour))
}
