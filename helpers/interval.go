package helpers

import (
	"fmt"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// IntervalDuration parses a bar interval such as "1m", "4h" or "1d"
func IntervalDuration(interval string) (time.Duration, error) {
	duration, err := str2duration.ParseDuration(interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", interval, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid interval %q: must be positive", interval)
	}
	return duration, nil
}

// BarsToDays converts a number of bars of the given interval into days
func BarsToDays(bars int, interval time.Duration) float64 {
	return float64(bars) * interval.Hours() / 24
}
