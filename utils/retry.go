package utils

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
// Each attempt is handed one of Conditions, chosen through Pick.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Conditions  []string

	// Pick returns an index in [0, n). Defaults to math/rand.
	Pick func(n int) int
	// Sleep waits between attempts. Defaults to SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs fn up to MaxAttempts times with a fixed delay between failed attempts.
// Every attempt is recorded in log. After the last failure the attempt's error
// is returned wrapped, so errors.Is still sees its kind.
func (r *RetryConfig) Do(ctx context.Context, op string, log *TaskLog, fn func(ctx context.Context, cond string) error) error {
	pick := r.Pick
	if pick == nil {
		pick = rand.Intn
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		cond := ""
		if len(r.Conditions) > 0 {
			cond = r.Conditions[pick(len(r.Conditions))]
		}
		log.Info("Attempt %d: %s (wait until: %s)", attempt, op, cond)

		lastErr = fn(ctx, cond)
		if lastErr == nil {
			log.Info("Attempt %d: %s succeeded", attempt, op)
			return nil
		}
		log.Warn("Attempt %d failed: %v", attempt, lastErr)

		if attempt < attempts {
			if err := sleep(ctx, r.Delay); err != nil {
				return fmt.Errorf("%s interrupted after %d attempts: %w", op, attempt, lastErr)
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}

// SleepContext pauses for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
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
