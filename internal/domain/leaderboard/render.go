package leaderboard

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/okian/gambit/internal/domain/model"
)

// Format selects how the leaderboard is written.
type Format string

// Supported output formats.
const (
	FormatPlain Format = "plain"
	FormatTable Format = "table"
)

// ParseFormat maps a configured format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatPlain:
		return FormatPlain, nil
	case FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Render writes entries to w in the given format. Plain output is one
// "<competitor>: <rating> (<deviation>)" line per entry.
func Render(w io.Writer, entries []model.LeaderboardEntry, format Format) error {
	bw := bufio.NewWriter(w)
	switch format {
	case FormatPlain, "":
		for _, e := range entries {
			fmt.Fprintf(bw, "%s: %.2f (%.2f)\n", e.Competitor, e.Rating, e.Deviation)
		}
	case FormatTable:
		renderTable(bw, entries)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func renderTable(w io.Writer, entries []model.LeaderboardEntry) {
	nameWidth := runewidth.StringWidth("Competitor")
	for _, e := range entries {
		nameWidth = max(nameWidth, runewidth.StringWidth(e.Competitor))
	}

	fmt.Fprintf(w, "%4s  %s  %9s  %9s\n", "Rank", padRight("Competitor", nameWidth), "Rating", "RD")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 4+2+nameWidth+2+9+2+9))
	for _, e := range entries {
		fmt.Fprintf(w, "%4d  %s  %9.2f  %9.2f\n", e.Rank, padRight(e.Competitor, nameWidth), e.Rating, e.Deviation)
	}
}

// RenderHistory writes one "<date>: <rating>" line per point.
func RenderHistory(w io.Writer, points []model.HistoryPoint) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		fmt.Fprintf(bw, "%s: %.2f\n", p.Date, p.Rating)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
