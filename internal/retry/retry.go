// Package retry provides bounded retries with jittered exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the total number of attempts, 1-indexed.
	MaxAttempts int
	// BaseDelay scales the backoff window: before attempt n+1 the retrier
	// sleeps a uniformly random duration in [0, BaseDelay * 2^n).
	BaseDelay time.Duration

	// Sleep and Rand are injectable for tests; nil selects the real ones.
	Sleep func(context.Context, time.Duration) error
	Rand  func() float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
	}
}

// ErrRetriesExhausted marks failures that consumed every attempt.
var ErrRetriesExhausted = errors.New("retries exhausted")

// ExhaustedError carries the last error after all attempts failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is lets callers match the sentinel without losing the wrapped cause.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// Permanent wraps an error so Do stops retrying immediately.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Do runs fn up to cfg.MaxAttempts times. Between failures it sleeps a
// jittered exponential backoff. A *Permanent error or context cancellation
// is returned as-is; anything else after the final attempt comes back as an
// *ExhaustedError.
func Do(ctx context.Context, cfg Config, fn func(context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = realSleep
	}
	random := cfg.Rand
	if random == nil {
		random = rand.Float64
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		// random(0, base * 2^attempt)
		window := float64(cfg.BaseDelay) * float64(int64(1)<<uint(attempt))
		delay := time.Duration(random() * window)
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return &ExhaustedError{Attempts: cfg.MaxAttempts, Err: lastErr}
}

func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
