// Package rating folds game outcomes into per-competitor Glicko-2 state.
package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/gambit/internal/domain/glicko"
	"github.com/okian/gambit/internal/domain/model"
	"github.com/okian/gambit/pkg/logger"
	"github.com/okian/gambit/pkg/metrics"
)

// Store is the state the engine reads and writes. A competitor that was
// never written must be reported with ErrUnknownCompetitor (or any error
// wrapping it) so the engine can fall back to the baseline.
type Store interface {
	Get(ctx context.Context, id string) (model.RatingState, error)
	Put(ctx context.Context, id string, st model.RatingState) error
}

// Observer is told about every post-game state, once per player per game.
type Observer interface {
	Observe(competitor string, date model.Date, st model.RatingState)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(competitor string, date model.Date, st model.RatingState)

// Observe calls f.
func (f ObserverFunc) Observe(competitor string, date model.Date, st model.RatingState) {
	f(competitor, date, st)
}

// Engine applies outcomes one at a time. It is not safe for concurrent
// Apply calls: the fold depends on the order of games.
type Engine struct {
	store     Store
	notFound  error
	cfg       glicko.Config
	observers []Observer
	logger    logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig sets the Glicko-2 system constants.
func WithConfig(cfg glicko.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithObserver registers o to receive every post-game state.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotFound sets the error the store returns for an unknown competitor.
// Defaults to ErrUnknownCompetitor.
func WithNotFound(err error) Option {
	return func(e *Engine) {
		if err != nil {
			e.notFound = err
		}
	}
}

// NewEngine creates an engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notFound: ErrUnknownCompetitor,
		cfg:      glicko.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("rating")
	}
	return e
}

// State returns the current state of id, or the baseline for a competitor
// that has not played yet. It never creates an entry.
func (e *Engine) State(ctx context.Context, id string) (model.RatingState, error) {
	st, err := e.store.Get(ctx, id)
	if errors.Is(err, e.notFound) {
		return glicko.Default(), nil
	}
	if err != nil {
		return model.RatingState{}, fmt.Errorf("%w: %s: %w", ErrStore, id, err)
	}
	return st, nil
}

// Apply rates one game. Both players are updated from their pre-game
// states; unseen players start from the baseline.
func (e *Engine) Apply(ctx context.Context, g model.GameOutcome) error {
	if !g.Result.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidResult, g.Result)
	}

	white, err := e.State(ctx, g.White)
	if err != nil {
		return err
	}
	black, err := e.State(ctx, g.Black)
	if err != nil {
		return err
	}

	start := time.Now()
	newWhite, newBlack := glicko.Update(white, black, glicko.ScoreFor(g.Result), e.cfg)
	metrics.RecordRatingUpdateLatency(float64(time.Since(start).Microseconds()))

	if err := e.put(ctx, g.White, newWhite); err != nil {
		return err
	}
	// A self-pairing resolves to the black side, matching a sequential write.
	if err := e.put(ctx, g.Black, newBlack); err != nil {
		return err
	}
	metrics.RecordOutcomeApplied()

	for _, o := range e.observers {
		o.Observe(g.White, g.Date, newWhite)
		o.Observe(g.Black, g.Date, newBlack)
	}

	e.logger.Debug(ctx, "game rated",
		logger.String("white", g.White),
		logger.String("black", g.Black),
		logger.String("date", g.Date.String()),
		logger.String("result", g.Result.String()),
		logger.Float64("white_rating", newWhite.Rating),
		logger.Float64("black_rating", newBlack.Rating),
	)
	return nil
}

func (e *Engine) put(ctx context.Context, id string, st model.RatingState) error {
	if err := e.store.Put(ctx, id, st); err != nil {
		metrics.RecordErrorByComponent("rating", "store_put")
		return fmt.Errorf("%w: %s: %w", ErrStore, id, err)
	}
	return nil
}
