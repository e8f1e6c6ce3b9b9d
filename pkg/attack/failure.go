// Package attack holds the pieces every engine in this module shares: the
// typed failure returned in place of a result, the search budget used to bound
// long-running loops, and the default logger.
//
// Engines return (result, error). When the error is not nil it is (or wraps)
// a *Failure whose Kind tells the caller what went wrong:
//
//	res, err := wiener.Attack(e, n, wiener.Config{})
//	switch attack.KindOf(err) {
//	case attack.KindNone:
//	    fmt.Println("d =", res.D)
//	case attack.KindSearchExhausted:
//	    // retry with a larger bound, or give up
//	}
package attack

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an engine could not produce a result.
type Kind int

const (
	// KindNone is reported for a nil error or an error that is not a Failure.
	KindNone Kind = iota
	// KindPrecondition means the inputs violate a requirement of the attack.
	// Never worth retrying with the same inputs.
	KindPrecondition
	// KindSearchExhausted means a bounded search ran out of budget. The
	// caller may retry with a larger bound.
	KindSearchExhausted
	// KindOracleInconsistency means an injected oracle broke its contract.
	KindOracleInconsistency
	// KindDegenerateResult means the algorithm ran to completion but the
	// structure it produced carries no answer for these inputs.
	KindDegenerateResult
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPrecondition:
		return "precondition violation"
	case KindSearchExhausted:
		return "search exhausted"
	case KindOracleInconsistency:
		return "oracle inconsistency"
	case KindDegenerateResult:
		return "degenerate result"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is the error every engine returns instead of a result.
type Failure struct {
	Engine string // engine that failed, e.g. "wiener"
	Kind   Kind
	Reason string // human-readable explanation
	Err    error  // optional underlying cause, usually a package sentinel
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", f.Engine, f.Kind, f.Reason)
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause so errors.Is matches package sentinels.
func (f *Failure) Unwrap() error { return f.Err }

// Fail builds a Failure with a formatted reason.
func Fail(engine string, kind Kind, cause error, format string, args ...interface{}) *Failure {
	return &Failure{
		Engine: engine,
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
		Err:    cause,
	}
}

// Precondition is shorthand for Fail(engine, KindPrecondition, ...).
func Precondition(engine string, cause error, format string, args ...interface{}) *Failure {
	return Fail(engine, KindPrecondition, cause, format, args...)
}

// Exhausted is shorthand for Fail(engine, KindSearchExhausted, nil, ...).
func Exhausted(engine string, format string, args ...interface{}) *Failure {
	return Fail(engine, KindSearchExhausted, nil, format, args...)
}

// AsFailure returns the first Failure in err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf reports the Kind of the first Failure in err's chain, or KindNone.
func KindOf(err error) Kind {
	if f, ok := AsFailure(err); ok {
		return f.Kind
	}
	return KindNone
}

// IsKind reports whether err carries a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
