package monitor

import (
	"context"
	"time"
)

// Scheduler waits between cycles. Sleep returns a non-nil error when ctx is
// done before d elapses, which ends the loop.
type Scheduler interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerScheduler sleeps on a real timer.
type TimerScheduler struct{}

func (TimerScheduler) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
