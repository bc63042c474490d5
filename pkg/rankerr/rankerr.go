// Package rankerr defines the error kinds shared across the engine.
package rankerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can choose a retry/backoff policy
// without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	// KindBlocked means the source actively denied access. Back off, do not
	// retry immediately.
	KindBlocked
	// KindRateLimitExceeded means a local quota window is exhausted.
	KindRateLimitExceeded
	// KindUpstreamRateLimited means the remote service reported its own
	// daily quota. Recovery is calendar-aligned.
	KindUpstreamRateLimited
	// KindAllProxiesExhausted means no proxy remains usable.
	KindAllProxiesExhausted
	KindInvalidInput
	KindNotFound
	// KindTransientFailure covers network and parse errors expected to
	// succeed on retry.
	KindTransientFailure
)

func (k Kind) String() string {
	switch k {
	case KindBlocked:
		return "blocked"
	case KindRateLimitExceeded:
		return "rate_limit_exceeded"
	case KindUpstreamRateLimited:
		return "upstream_rate_limited"
	case KindAllProxiesExhausted:
		return "all_proxies_exhausted"
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindTransientFailure:
		return "transient_failure"
	default:
		return "unknown"
	}
}

// Error carries a kind, the operation that produced it, and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to an underlying error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
