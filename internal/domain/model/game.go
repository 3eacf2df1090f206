// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Result is the terminal result of one game from White's perspective.
type Result uint8

// Legal game results. The zero value is invalid so an unset Result is
// never mistaken for a decided game.
const (
	WhiteWin Result = iota + 1
	BlackWin
	Draw
)

// String returns the archive token for r.
func (r Result) String() string {
	switch r {
	case WhiteWin:
		return "1-0"
	case BlackWin:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return fmt.Sprintf("Result(%d)", uint8(r))
	}
}

// Valid reports whether r is one of the three legal results.
func (r Result) Valid() bool {
	return r >= WhiteWin && r <= Draw
}

// ParseResult maps an archive result token to a Result. The unknown
// result "*" and anything else report false.
func ParseResult(token string) (Result, bool) {
	switch token {
	case "1-0":
		return WhiteWin, true
	case "0-1":
		return BlackWin, true
	case "1/2-1/2":
		return Draw, true
	default:
		return 0, false
	}
}

// dateLayout is the archive Date header layout (YYYY.MM.DD).
const dateLayout = "2006.01.02"

// Date is a calendar day. It is comparable and usable as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY.MM.DD header value, rejecting impossible days.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to
// or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// IsZero reports whether d was never set.
func (d Date) IsZero() bool { return d == Date{} }

// String formats d as YYYY.MM.DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d.%02d.%02d", d.Year, int(d.Month), d.Day)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// GameOutcome is one validated game result. White and Black are exact,
// case-sensitive competitor names.
type GameOutcome struct {
	White  string
	Black  string
	Date   Date
	Result Result
}
