// Package testarchive writes synthetic, reproducible PGN archives for tests
// and local benchmarking.
package testarchive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gambit/internal/domain/model"
)

// ErrInvalidConfig is returned for a config that cannot produce an archive.
var ErrInvalidConfig = errors.New("invalid archive config")

var openings = []string{
	"1. e4 e5 2. Nf3 Nc6 3. Bb5 a6",
	"1. d4 d5 2. c4 e6 3. Nc3 Nf6",
	"1. e4 c5 2. Nf3 d6 3. d4 cxd4 4. Nxd4 Nf6",
	"1. c4 e5 2. Nc3 Nf6 { English } 3. g3 d5",
	"1. e4 e6 2. d4 d5 (2... c5 3. d5) 3. Nc3 Bb4",
}

// Validate checks that cfg can produce an archive.
func (c Config) Validate() error {
	switch {
	case c.Games < 0:
		return fmt.Errorf("%w: games must be >= 0", ErrInvalidConfig)
	case c.Players < 2:
		return fmt.Errorf("%w: need at least 2 players", ErrInvalidConfig)
	case c.Days < 1:
		return fmt.Errorf("%w: days must be >= 1", ErrInvalidConfig)
	case c.UnknownShare < 0 || c.UnknownShare > 1:
		return fmt.Errorf("%w: unknown share must be in [0,1]", ErrInvalidConfig)
	}
	return nil
}

// Generate writes cfg.Games records to w. Records are written in random
// date order and every record carries a unique Site tag.
func Generate(w io.Writer, cfg Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}

	src := rand.NewChaCha8(seedBytes(cfg.Seed))
	rng := rand.New(src)
	bw := bufio.NewWriter(w)

	stats := Stats{Players: cfg.Players}
	for i := 0; i < cfg.Games; i++ {
		white := rng.IntN(cfg.Players)
		black := rng.IntN(cfg.Players - 1)
		if black >= white {
			black++
		}
		date := cfg.Start.AddDate(0, 0, rng.IntN(cfg.Days))

		site, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return stats, fmt.Errorf("site id for game %d: %w", i+1, err)
		}

		token := "*"
		if rng.Float64() >= cfg.UnknownShare {
			token = randomResult(rng).String()
			stats.Decided++
		} else {
			stats.Unknown++
		}

		writeGame(bw, game{
			site:    site.String(),
			white:   playerName(white),
			black:   playerName(black),
			date:    date,
			opening: openings[rng.IntN(len(openings))],
			result:  token,
		})
		stats.Games++
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flush archive: %w", err)
	}
	return stats, nil
}

type game struct {
	site    string
	white   string
	black   string
	date    time.Time
	opening string
	result  string
}

func writeGame(w *bufio.Writer, g game) {
	fmt.Fprintf(w, "[Event \"Synthetic\"]\n")
	fmt.Fprintf(w, "[Site \"urn:uuid:%s\"]\n", g.site)
	fmt.Fprintf(w, "[Date \"%s\"]\n", g.date.Format("2006.01.02"))
	fmt.Fprintf(w, "[White \"%s\"]\n", g.white)
	fmt.Fprintf(w, "[Black \"%s\"]\n", g.black)
	fmt.Fprintf(w, "[Result \"%s\"]\n\n", g.result)
	fmt.Fprintf(w, "%s %s\n\n", g.opening, g.result)
}

func randomResult(rng *rand.Rand) model.Result {
	switch n := rng.IntN(10); {
	case n < 4:
		return model.WhiteWin
	case n < 7:
		return model.BlackWin
	default:
		return model.Draw
	}
}

// PlayerName returns the name used for player i.
func PlayerName(i int) string { return playerName(i) }

func playerName(i int) string { return fmt.Sprintf("player-%03d", i) }

func seedBytes(seed uint64) [32]byte {
	var b [32]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(seed >> (8 * i))
	}
	return b
}
