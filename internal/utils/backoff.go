package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Backoff retries with exponential delay plus jitter.
type Backoff struct {
	base       time.Duration
	jitter     time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, jitter: base, maxRetries: maxRetries}
}

type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error { return permanent{err} }

// Do calls fn until it succeeds, returns a Permanent error, the retries are
// used up or ctx is done.
func (b Backoff) Do(ctx context.Context, fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		var p permanent
		if errors.As(err, &p) {
			return p.err
		}
		if i == b.maxRetries {
			break
		}
		sleep := time.Duration(1<<i) * b.base
		if b.jitter > 0 {
			sleep += time.Duration(rand.Int63n(int64(b.jitter)))
		}
		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
	return err
}
