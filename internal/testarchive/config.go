package testarchive

import "time"

// Config describes the archive to generate.
type Config struct {
	Games        int       // Number of records to write
	Players      int       // Size of the player pool
	Days         int       // Dates are drawn from [Start, Start+Days)
	UnknownShare float64   // Share of records ending in "*"
	Seed         uint64    // Same seed, same archive
	Start        time.Time // First possible game date
}

// DefaultConfig returns a small archive of 1000 games between 50 players
// over one year.
func DefaultConfig() Config {
	return Config{
		Games:        defaultGames,
		Players:      defaultPlayers,
		Days:         defaultDays,
		UnknownShare: defaultUnknownShare,
		Seed:         defaultSeed,
		Start:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Stats summarizes a generated archive.
type Stats struct {
	Games   int
	Decided int
	Unknown int
	Players int
}
