package helpers

import (
	"context"
	"time"
)

// Sleep waits for d or until the context is done, returning the context error in that case
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
