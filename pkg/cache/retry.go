package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend marks a failure of a remote cache backend. Only errors that
// wrap it are retried by [Backoff].
var ErrBackend = errors.New("cache backend unavailable")

// Backoff retries an operation whose delay doubles after every failed
// attempt, starting at Base.
type Backoff struct {
	Base     time.Duration
	Attempts int
}

// connectBackoff bounds how long NewRedisCache waits for a server that is
// still starting.
var connectBackoff = Backoff{Base: 100 * time.Millisecond, Attempts: 3}

// Do calls fn until it succeeds, returns an error not wrapping ErrBackend,
// or Attempts calls were made. Do returns ctx.Err() if ctx ends while
// waiting between attempts.
func (b Backoff) Do(ctx context.Context, fn func(context.Context) error) error {
	delay := b.Base
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil || !errors.Is(err, ErrBackend) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
