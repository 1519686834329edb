package retry

import (
	"context"
	"time"
)

// Policy is a bounded retry with exponential backoff, applied to
// idempotent external calls (embedding, index provisioning, web
// search). Zero value retries nothing; use Default for the usual
// three attempts.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Default is three attempts with 200ms base backoff capped at 2s.
var Default = Policy{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// Do runs fn until it succeeds, attempts run out, or the context is
// cancelled. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
