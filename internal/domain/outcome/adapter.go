// Package outcome turns one raw archive record into a validated GameOutcome.
//
// Adapter implements the archive reader's visitor callbacks. It accumulates
// the White, Black and Date headers plus the terminal result of a single
// record and validates them when Result is called.
package outcome

import (
	"strconv"
	"unicode/utf8"

	"github.com/okian/gambit/internal/domain/model"
)

// Header keys consumed by the adapter. All other headers are ignored.
const (
	HeaderWhite = "White"
	HeaderBlack = "Black"
	HeaderDate  = "Date"
)

// maxQuotedValue bounds how much of a bad header value ends up in errors.
const maxQuotedValue = 64

// Adapter accumulates one record. The zero value is ready to use; BeginGame
// resets it so one Adapter can be reused across records.
type Adapter struct {
	white, black string
	date         model.Date
	result       model.Result
	hasResult    bool
	err          *Error
}

// NewAdapter returns an empty Adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// BeginGame clears all state accumulated for the previous record.
func (a *Adapter) BeginGame() {
	*a = Adapter{}
}

// Header consumes one tag pair. key and value are only valid during the call.
func (a *Adapter) Header(key, value []byte) {
	switch string(key) {
	case HeaderWhite:
		if s, ok := a.decode(HeaderWhite, value); ok {
			a.white = s
		}
	case HeaderBlack:
		if s, ok := a.decode(HeaderBlack, value); ok {
			a.black = s
		}
	case HeaderDate:
		s, ok := a.decode(HeaderDate, value)
		if !ok {
			return
		}
		d, err := model.ParseDate(s)
		if err != nil {
			a.fail(&Error{Kind: KindDate, Field: HeaderDate, Value: quote(value), Err: err})
			return
		}
		a.date = d
	}
}

// Outcome consumes the terminal result; nil means "*" or no terminator.
func (a *Adapter) Outcome(r *model.Result) {
	if r == nil || !r.Valid() {
		a.fail(&Error{Kind: KindNoOutcome})
		return
	}
	a.result = *r
	a.hasResult = true
}

// Result finalizes the record. A recorded error wins over everything else;
// otherwise missing fields are reported before the outcome is built.
func (a *Adapter) Result() (model.GameOutcome, error) {
	if a.err != nil {
		return model.GameOutcome{}, a.err
	}
	if !a.hasResult {
		return model.GameOutcome{}, &Error{Kind: KindNoOutcome}
	}
	switch {
	case a.white == "":
		return model.GameOutcome{}, &Error{Kind: KindMissingField, Field: HeaderWhite}
	case a.black == "":
		return model.GameOutcome{}, &Error{Kind: KindMissingField, Field: HeaderBlack}
	case a.date.IsZero():
		return model.GameOutcome{}, &Error{Kind: KindMissingField, Field: HeaderDate}
	}
	return model.GameOutcome{
		White:  a.white,
		Black:  a.black,
		Date:   a.date,
		Result: a.result,
	}, nil
}

func (a *Adapter) decode(field string, value []byte) (string, bool) {
	if !utf8.Valid(value) {
		a.fail(&Error{Kind: KindHeaderEncoding, Field: field, Value: quote(value)})
		return "", false
	}
	return string(value), true
}

// fail records err unless a fatal error is already held. A fatal error
// replaces a skippable one so corruption is never masked by "*".
func (a *Adapter) fail(err *Error) {
	if a.err == nil || (!a.err.Fatal() && err.Fatal()) {
		a.err = err
	}
}

func quote(value []byte) string {
	if len(value) > maxQuotedValue {
		value = value[:maxQuotedValue]
	}
	return strconv.QuoteToASCII(string(value))
}
