// Command gen-archive writes a synthetic PGN archive for local runs of the
// rank command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/gambit/internal/testarchive"
	"github.com/okian/gambit/pkg/logger"
)

func main() {
	def := testarchive.DefaultConfig()
	var (
		output   = flag.String("output", "games.pgn", "Archive file to write")
		games    = flag.Int("games", def.Games, "Number of games to generate")
		players  = flag.Int("players", def.Players, "Number of distinct players")
		days     = flag.Int("days", def.Days, "Number of days games are spread over")
		unknown  = flag.Float64("unknown", def.UnknownShare, "Share of games without a result")
		seed     = flag.Uint64("seed", def.Seed, "Random seed")
		start    = flag.String("start", def.Start.Format("2006.01.02"), "First game date (YYYY.MM.DD)")
		compress = flag.String("compress", testarchive.CompressNone, "Compression: none, gzip or zstd")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	log := logger.Named("gen-archive")

	startDate, err := time.Parse("2006.01.02", *start)
	if err != nil {
		log.Error(ctx, "invalid start date", logger.String("start", *start), logger.Error(err))
		os.Exit(2)
	}

	cfg := testarchive.Config{
		Games:        *games,
		Players:      *players,
		Days:         *days,
		UnknownShare: *unknown,
		Seed:         *seed,
		Start:        startDate,
	}
	stats, err := testarchive.WriteFile(*output, cfg, *compress)
	if err != nil {
		log.Error(ctx, "failed to write archive", logger.String("output", *output), logger.Error(err))
		os.Exit(1)
	}

	log.Info(ctx, "archive written",
		logger.String("output", *output),
		logger.String("compression", *compress),
		logger.Int("games", stats.Games),
		logger.Int("decided", stats.Decided),
		logger.Int("unknown", stats.Unknown),
		logger.Int("players", stats.Players),
	)
}
