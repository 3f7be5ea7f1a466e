// Package event ingests interaction telemetry: batched impressions from feed
// renders and single explicit actions. Ingestion is write-only; the feed
// engine reads these events back through its own repositories.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/observability/metrics"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// MaxImpressionBatch bounds one logging call. Clients render at most a few
// hundred tiles per screen; anything larger is a bug or abuse.
const MaxImpressionBatch = 500

// Service handles interaction event ingestion.
type Service struct {
	Interactions repository.InteractionRepository
	Logger       *slog.Logger

	// Now is the injectable clock. Nil means time.Now.
	Now func() time.Time
}

func (s *Service) nowUTC() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// LogImpressions validates and persists a batch of impressions, returning the
// number actually inserted. Duplicates within the retention window are
// silently skipped by the store, so retried batches do not inflate exclusion.
// The whole batch is rejected when any entry is invalid; client batches are
// homogeneous, so partial acceptance would only hide bugs.
func (s *Service) LogImpressions(ctx context.Context, impressions []*entity.Impression) (int64, error) {
	if len(impressions) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(impressions) > MaxImpressionBatch {
		return 0, ErrBatchTooLarge
	}

	now := s.nowUTC()
	for i, imp := range impressions {
		if err := imp.Validate(); err != nil {
			return 0, fmt.Errorf("impression %d: %w", i, err)
		}
		if imp.CreatedAt.IsZero() {
			imp.CreatedAt = now
		}
	}

	inserted, err := s.Interactions.InsertImpressions(ctx, impressions)
	if err != nil {
		return 0, fmt.Errorf("insert impressions: %w", err)
	}

	metrics.RecordImpressionsLogged(inserted)
	s.log().Debug("impressions logged",
		slog.Int("batch", len(impressions)),
		slog.Int64("inserted", inserted))
	return inserted, nil
}

// LogAction validates and persists one explicit action event.
func (s *Service) LogAction(ctx context.Context, action *entity.Action) error {
	if err := action.Validate(); err != nil {
		return err
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = s.nowUTC()
	}

	if err := s.Interactions.InsertAction(ctx, action); err != nil {
		return fmt.Errorf("insert action: %w", err)
	}

	metrics.RecordActionLogged(string(action.Action))
	s.log().Debug("action logged",
		slog.Int64("profile_id", action.ProfileID),
		slog.Int64("title_id", action.TitleID),
		slog.String("action", string(action.Action)))
	return nil
}
