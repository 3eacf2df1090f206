package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/gambit/internal/adapters/pgn"
	"github.com/okian/gambit/internal/domain/model"
	"github.com/okian/gambit/internal/domain/outcome"
	"github.com/okian/gambit/pkg/logger"
	"github.com/okian/gambit/pkg/metrics"
)

// RecordSource yields archive records one at a time. ReadGame returns
// false once the archive is exhausted.
type RecordSource interface {
	ReadGame(v pgn.Visitor) (bool, error)
}

// collect drains src into a slice of outcomes in archive order. Records
// without a usable outcome are counted and skipped. A corrupt record or a
// read failure aborts the whole collection.
func collect(ctx context.Context, src RecordSource, log logger.Logger, stats *Stats) ([]model.GameOutcome, error) {
	adapter := outcome.NewAdapter()
	var outcomes []model.GameOutcome

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := src.ReadGame(adapter)
		if err != nil {
			metrics.RecordErrorByComponent("collector", "read")
			return nil, fmt.Errorf("%w: %w", ErrReadArchive, err)
		}
		if !ok {
			return outcomes, nil
		}
		stats.Records++
		metrics.RecordRecordRead()

		g, err := adapter.Result()
		if err == nil {
			outcomes = append(outcomes, g)
			stats.Outcomes++
			metrics.RecordOutcomeCollected()
			continue
		}
		if outcome.IsFatal(err) {
			metrics.RecordErrorByComponent("collector", "corrupt_record")
			return nil, fmt.Errorf("%w: record %d: %w", ErrCorruptArchive, stats.Records, err)
		}

		kind := skipKind(err)
		stats.skip(kind)
		metrics.RecordRecordSkipped(kind)
		log.Debug(ctx, "record skipped",
			logger.Int("record", stats.Records),
			logger.String("kind", kind),
			logger.Error(err),
		)
	}
}

func skipKind(err error) string {
	var oe *outcome.Error
	if errors.As(err, &oe) {
		return oe.Kind.String()
	}
	return outcome.Kind(0).String()
}
