package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/repository"
)

type stubInteractions struct {
	impressions []*entity.Impression
	actions     []*entity.Action
	err         error
}

func (s *stubInteractions) RecentActionTitleIDs(context.Context, int64, int) ([]int64, error) {
	return nil, nil
}

func (s *stubInteractions) RecentStrongActions(context.Context, int64, int) ([]repository.ActionRef, error) {
	return nil, nil
}

func (s *stubInteractions) ActionTitleIDs(context.Context, int64, int) ([]int64, error) {
	return nil, nil
}

func (s *stubInteractions) ImpressionTitleIDsSince(context.Context, int64, time.Time, int) ([]int64, error) {
	return nil, nil
}

func (s *stubInteractions) TrendingTitleIDs(context.Context, time.Time, int) ([]int64, error) {
	return nil, nil
}

func (s *stubInteractions) InsertImpressions(_ context.Context, impressions []*entity.Impression) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.impressions = append(s.impressions, impressions...)
	return int64(len(impressions)), nil
}

func (s *stubInteractions) InsertAction(_ context.Context, action *entity.Action) error {
	if s.err != nil {
		return s.err
	}
	s.actions = append(s.actions, action)
	return nil
}

func newService(repo *stubInteractions) *Service {
	return &Service{
		Interactions: repo,
		Now:          func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func validImpression() *entity.Impression {
	return &entity.Impression{
		ProfileID: 1,
		TitleID:   42,
		SessionID: "sess-1",
		RowType:   "trending",
		Position:  3,
	}
}

func TestLogImpressions(t *testing.T) {
	t.Run("accepts valid batch", func(t *testing.T) {
		repo := &stubInteractions{}
		svc := newService(repo)

		inserted, err := svc.LogImpressions(context.Background(), []*entity.Impression{
			validImpression(), validImpression(),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)
		assert.Len(t, repo.impressions, 2)
	})

	t.Run("stamps missing created at", func(t *testing.T) {
		repo := &stubInteractions{}
		svc := newService(repo)

		_, err := svc.LogImpressions(context.Background(), []*entity.Impression{validImpression()})

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), repo.impressions[0].CreatedAt)
	})

	t.Run("keeps provided created at", func(t *testing.T) {
		repo := &stubInteractions{}
		svc := newService(repo)
		imp := validImpression()
		stamp := time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC)
		imp.CreatedAt = stamp

		_, err := svc.LogImpressions(context.Background(), []*entity.Impression{imp})

		require.NoError(t, err)
		assert.Equal(t, stamp, repo.impressions[0].CreatedAt)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		svc := newService(&stubInteractions{})

		_, err := svc.LogImpressions(context.Background(), nil)

		assert.ErrorIs(t, err, ErrEmptyBatch)
	})

	t.Run("rejects oversized batch", func(t *testing.T) {
		svc := newService(&stubInteractions{})
		batch := make([]*entity.Impression, MaxImpressionBatch+1)
		for i := range batch {
			batch[i] = validImpression()
		}

		_, err := svc.LogImpressions(context.Background(), batch)

		assert.ErrorIs(t, err, ErrBatchTooLarge)
	})

	t.Run("rejects whole batch on one invalid entry", func(t *testing.T) {
		repo := &stubInteractions{}
		svc := newService(repo)
		bad := validImpression()
		bad.TitleID = 0

		_, err := svc.LogImpressions(context.Background(), []*entity.Impression{validImpression(), bad})

		var vErr *entity.ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Empty(t, repo.impressions)
	})

	t.Run("store error propagates", func(t *testing.T) {
		svc := newService(&stubInteractions{err: errors.New("db down")})

		_, err := svc.LogImpressions(context.Background(), []*entity.Impression{validImpression()})

		assert.Error(t, err)
	})
}

func TestLogAction(t *testing.T) {
	valid := func() *entity.Action {
		return &entity.Action{
			ProfileID: 1,
			TitleID:   42,
			Action:    entity.ActionOutbound,
			SessionID: "sess-1",
			Provider:  "netflix",
		}
	}

	t.Run("accepts valid action", func(t *testing.T) {
		repo := &stubInteractions{}
		svc := newService(repo)

		require.NoError(t, svc.LogAction(context.Background(), valid()))
		require.Len(t, repo.actions, 1)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), repo.actions[0].CreatedAt)
	})

	t.Run("rejects unknown action type", func(t *testing.T) {
		repo := &stubInteractions{}
		svc := newService(repo)
		a := valid()
		a.Action = "binge"

		err := svc.LogAction(context.Background(), a)

		var vErr *entity.ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Empty(t, repo.actions)
	})

	t.Run("rejects missing session", func(t *testing.T) {
		svc := newService(&stubInteractions{})
		a := valid()
		a.SessionID = ""

		assert.Error(t, svc.LogAction(context.Background(), a))
	})

	t.Run("store error propagates", func(t *testing.T) {
		svc := newService(&stubInteractions{err: errors.New("db down")})

		assert.Error(t, svc.LogAction(context.Background(), valid()))
	})
}
