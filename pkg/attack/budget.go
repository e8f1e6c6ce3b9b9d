package attack

import (
	"context"
	"io"
	"log/slog"
)

// DefaultCheckEvery is how often Budget polls Stop when CheckEvery is unset.
const DefaultCheckEvery = 1024

// Budget bounds a search loop.
//
// Max is the hard cap on iterations. Stop, when set, is a cooperative
// cancellation predicate polled every CheckEvery iterations; returning true
// ends the search as if the cap had been reached.
type Budget struct {
	Max        int
	CheckEvery int
	Stop       func() bool
}

// Allow reports whether iteration i (0-based) may run.
func (b Budget) Allow(i int) bool {
	if b.Max > 0 && i >= b.Max {
		return false
	}
	if b.Stop == nil {
		return true
	}
	every := b.CheckEvery
	if every <= 0 {
		every = DefaultCheckEvery
	}
	if i%every == 0 && b.Stop() {
		return false
	}
	return true
}

// StopOnDone returns a Stop predicate that fires once ctx is done.
func StopOnDone(ctx context.Context) func() bool {
	return func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Logger returns l, or a logger that drops everything when l is nil.
func Logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discard
	}
	return l
}
