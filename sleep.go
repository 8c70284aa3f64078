package poller

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

const (
	minSleepSeconds    = 1.0
	maxSleepSeconds    = 3.0
	safetyBufferSecs   = 5.0
	perGameWorkSeconds = 1.5
	minWorthwhileSleep = 0.2
)

// SleepWindow returns the jitter window, in seconds, for the pause after the
// game at index out of total. remaining is the host's remaining execution time;
// hasDeadline is false when the host did not report one. A zero window means
// do not sleep.
func SleepWindow(remaining time.Duration, hasDeadline bool, index, total int) (lo, hi float64) {
	itemsRemaining := total - 1 - index
	if itemsRemaining < 1 {
		return 0, 0
	}
	if !hasDeadline {
		return minSleepSeconds, maxSleepSeconds
	}

	work := float64(itemsRemaining) * perGameWorkSeconds
	budget := remaining.Seconds() - work - safetyBufferSecs
	if budget <= 0 {
		return 0, 0
	}
	ceiling := math.Min(maxSleepSeconds, budget/float64(itemsRemaining))
	if ceiling < minWorthwhileSleep {
		return 0, 0
	}
	return math.Min(minSleepSeconds, ceiling), ceiling
}

// SafeSleepDuration picks a uniformly jittered pause inside SleepWindow.
func SafeSleepDuration(rng *rand.Rand, remaining time.Duration, hasDeadline bool, index, total int) time.Duration {
	lo, hi := SleepWindow(remaining, hasDeadline, index, total)
	if hi <= 0 {
		return 0
	}
	secs := lo + rng.Float64()*(hi-lo)
	return time.Duration(secs * float64(time.Second))
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
