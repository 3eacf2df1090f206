package outcome

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrHeaderEncoding = errors.New("invalid utf-8 in header")
	ErrInvalidDate    = errors.New("invalid date header")
	ErrNoOutcome      = errors.New("no outcome found in game")
	ErrMissingField   = errors.New("required header missing")
)

// Kind classifies a record error.
type Kind uint8

// Record error kinds.
const (
	// KindHeaderEncoding means a required header is not valid UTF-8. Fatal.
	KindHeaderEncoding Kind = iota + 1
	// KindDate means the Date header does not match YYYY.MM.DD. Fatal.
	KindDate
	// KindNoOutcome means the record has no decided result. Skippable.
	KindNoOutcome
	// KindMissingField means White, Black or Date never appeared or was
	// empty. Skippable.
	KindMissingField
)

// String returns a metrics-friendly label for k.
func (k Kind) String() string {
	switch k {
	case KindHeaderEncoding:
		return "header_encoding"
	case KindDate:
		return "invalid_date"
	case KindNoOutcome:
		return "no_outcome"
	case KindMissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// Fatal reports whether a record error of kind k must abort the run.
// Encoding and date failures indicate a corrupt archive rather than a
// game that simply has nothing to rate.
func (k Kind) Fatal() bool {
	return k == KindHeaderEncoding || k == KindDate
}

func (k Kind) sentinel() error {
	switch k {
	case KindHeaderEncoding:
		return ErrHeaderEncoding
	case KindDate:
		return ErrInvalidDate
	case KindNoOutcome:
		return ErrNoOutcome
	default:
		return ErrMissingField
	}
}

// Error is a classified failure to turn one record into a GameOutcome.
type Error struct {
	Kind Kind
	// Field names the offending header, if any.
	Field string
	// Value is the raw header value, quoted for display.
	Value string
	// Err is the underlying cause, if any.
	Err error
}

// Fatal reports whether e must abort the run.
func (e *Error) Fatal() bool { return e.Kind.Fatal() }

func (e *Error) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" %s", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// IsFatal reports whether err carries a fatal record error.
func IsFatal(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Fatal()
}
