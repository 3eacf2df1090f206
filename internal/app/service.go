// Package service runs the rating pipeline over one archive: records are
// collected, put in date order, folded into Glicko-2 state and turned into
// a leaderboard.
package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/okian/gambit/internal/adapters/pgn"
	"github.com/okian/gambit/internal/adapters/repository"
	"github.com/okian/gambit/internal/domain/glicko"
	"github.com/okian/gambit/internal/domain/history"
	"github.com/okian/gambit/internal/domain/leaderboard"
	"github.com/okian/gambit/internal/domain/model"
	"github.com/okian/gambit/internal/domain/rating"
	"github.com/okian/gambit/pkg/logger"
	"github.com/okian/gambit/pkg/metrics"
)

// Stats counts what happened to the records of one run.
type Stats struct {
	Records     int            // records read from the archive
	Outcomes    int            // records that produced a rated game
	Skipped     map[string]int // skipped records by error kind
	Competitors int            // distinct competitors rated
}

func (s *Stats) skip(kind string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	s.Skipped[kind]++
}

// SkippedTotal returns the number of skipped records over all kinds.
func (s Stats) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Report is the result of one run.
type Report struct {
	Leaderboard []model.LeaderboardEntry
	// History is the series of the competitor selected with WithHistory,
	// nil when none was selected or the competitor never played.
	History           []model.HistoryPoint
	HistoryCompetitor string
	States            map[string]model.RatingState
	Stats             Stats
	Duration          time.Duration

	tracker *history.Tracker
}

// HistoryOf returns the rating history of any competitor when the run was
// made with WithFullHistory, and nil otherwise.
func (r *Report) HistoryOf(competitor string) []model.HistoryPoint {
	if r.tracker == nil {
		return nil
	}
	return r.tracker.Series(competitor)
}

// Service runs the pipeline. A Service holds no state between runs.
type Service struct {
	threshold float64
	glicko    glicko.Config
	historyOf string
	fullHist  bool
	base      logger.Logger
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service. Components log through
// named children of l.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.base = l
		}
	}
}

// WithThreshold sets the deviation below which competitors are ranked.
func WithThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithGlickoConfig sets the Glicko-2 system constants.
func WithGlickoConfig(cfg glicko.Config) Option {
	return func(s *Service) {
		s.glicko = cfg
	}
}

// WithHistory selects the competitor whose rating history is reported.
func WithHistory(competitor string) Option {
	return func(s *Service) {
		s.historyOf = competitor
	}
}

// WithFullHistory keeps the rating history of every competitor, for
// Report.HistoryOf.
func WithFullHistory() Option {
	return func(s *Service) {
		s.fullHist = true
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		threshold: leaderboard.DefaultThreshold,
		glicko:    glicko.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.base == nil {
		s.base = logger.Get()
	}
	s.logger = s.base.Named("pipeline")
	return s
}

// RunFile opens the archive at path and runs the pipeline over it.
func (s *Service) RunFile(ctx context.Context, path string) (*Report, error) {
	r, err := pgn.Open(path)
	if err != nil {
		metrics.RecordErrorByComponent("pipeline", "open")
		return nil, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			s.logger.Warn(ctx, "failed to close archive", logger.String("path", path), logger.Error(cerr))
		}
	}()

	s.logger.Info(ctx, "reading archive",
		logger.String("path", path),
		logger.String("compression", string(r.Compression())),
	)
	return s.Run(ctx, r)
}

// Run reads every record from src and rates the resulting games in date
// order. A corrupt record or read failure aborts the run and no report is
// returned.
func (s *Service) Run(ctx context.Context, src RecordSource) (*Report, error) {
	start := time.Now()
	report := &Report{HistoryCompetitor: s.historyOf}

	outcomes, err := collect(ctx, src, s.logger, &report.Stats)
	if err != nil {
		return nil, err
	}
	order(outcomes)

	store := repository.NewMemoryStore()
	engineOpts := []rating.Option{
		rating.WithConfig(s.glicko),
		rating.WithLogger(s.base.Named("rating")),
		rating.WithNotFound(repository.ErrNotFound),
	}
	var tracker *history.Tracker
	if s.historyOf != "" || s.fullHist {
		tracker = history.NewTracker()
		engineOpts = append(engineOpts, rating.WithObserver(tracker))
	}
	engine := rating.NewEngine(store, engineOpts...)

	for i, g := range outcomes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := engine.Apply(ctx, g); err != nil {
			return nil, fmt.Errorf("%w: game %d (%s vs %s, %s): %w", ErrRating, i+1, g.White, g.Black, g.Date, err)
		}
	}

	states, err := store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRating, err)
	}
	report.States = states
	report.Stats.Competitors = len(states)
	report.Leaderboard = leaderboard.Build(states, s.threshold)
	if s.historyOf != "" {
		report.History = tracker.Series(s.historyOf)
	}
	if s.fullHist {
		report.tracker = tracker
	}

	report.Duration = time.Since(start)
	metrics.UpdateRunDuration(report.Duration.Seconds())

	s.logger.Info(ctx, "rating run complete",
		logger.Int("records", report.Stats.Records),
		logger.Int("outcomes", report.Stats.Outcomes),
		logger.Int("skipped", report.Stats.SkippedTotal()),
		logger.Int("competitors", report.Stats.Competitors),
		logger.Int("ranked", len(report.Leaderboard)),
		logger.Float64("threshold", s.threshold),
		logger.Any("skipped_by_kind", sortedKinds(report.Stats.Skipped)),
		logger.String("duration", report.Duration.String()),
	)
	return report, nil
}

func sortedKinds(m map[string]int) []string {
	kinds := slices.Sorted(maps.Keys(m))
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return out
}
