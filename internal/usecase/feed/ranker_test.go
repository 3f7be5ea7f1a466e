package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

func newRankContext(f *testFixture) *rankContext {
	return &rankContext{
		exclusions: NewExclusions(),
		titles:     f.titles.titles,
		vectors:    make(map[int64][]float32),
		vectorSeen: make(map[int64]bool),
	}
}

func TestHeuristicScoreDeterministic(t *testing.T) {
	features := []float64{0.7, 80, 8.2, 6.5, 120, 1, 1, 0, 3, 512}

	first := heuristicScore(features)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, heuristicScore(features))
	}
}

func TestHeuristicScoreWeights(t *testing.T) {
	base := make([]float64, len(featureNames))

	t.Run("cosine dominates", func(t *testing.T) {
		high := make([]float64, len(featureNames))
		high[featCosine] = 1.0
		assert.Greater(t, heuristicScore(high), heuristicScore(base))
	})

	t.Run("freshness penalizes", func(t *testing.T) {
		stale := make([]float64, len(featureNames))
		stale[featFreshnessDays] = unknownFreshnessDays
		assert.Less(t, heuristicScore(stale), heuristicScore(base))
	})

	t.Run("lang match helps", func(t *testing.T) {
		matched := make([]float64, len(featureNames))
		matched[featLangMatch] = 1.0
		assert.InDelta(t, heuristicLangMatchWeight, heuristicScore(matched)-heuristicScore(base), 1e-9)
	})
}

func TestRankAndSelectOrdersByScore(t *testing.T) {
	f := newFixture()
	// Popularity is the only differing feature, so the heuristic must order
	// by it.
	f.addTitle(1, entity.TitleKindMovie, func(t *entity.Title) { t.Popularity = 10 })
	f.addTitle(2, entity.TitleKindMovie, func(t *entity.Title) { t.Popularity = 90 })
	f.addTitle(3, entity.TitleKindMovie, func(t *entity.Title) { t.Popularity = 50 })
	f.addTitle(4, entity.TitleKindMovie, func(t *entity.Title) { t.Popularity = 70 })

	picked := f.svc.rankAndSelect(context.Background(), newRankContext(f), "test_row", []int64{1, 2, 3, 4}, 30)

	assert.Equal(t, []int64{2, 4, 3, 1}, picked)
}

func TestRankAndSelectStableTies(t *testing.T) {
	f := newFixture()
	// Identical features everywhere: candidate source order must survive.
	for id := int64(1); id <= 6; id++ {
		f.addTitle(id, entity.TitleKindMovie)
	}

	picked := f.svc.rankAndSelect(context.Background(), newRankContext(f), "test_row", []int64{5, 3, 1, 6, 2, 4}, 30)

	assert.Equal(t, []int64{5, 3, 1, 6, 2, 4}, picked)
}

func TestRankAndSelectDropsExcludedAndDuplicates(t *testing.T) {
	f := newFixture()
	for id := int64(1); id <= 6; id++ {
		f.addTitle(id, entity.TitleKindMovie)
	}
	rc := newRankContext(f)
	rc.exclusions.Add(2)

	picked := f.svc.rankAndSelect(context.Background(), rc, "test_row", []int64{1, 2, 3, 1, 4, 3, 5}, 30)

	assert.ElementsMatch(t, []int64{1, 3, 4, 5}, picked)
	assert.NotContains(t, picked, int64(2))
}

func TestRankAndSelectDropsUnknownTitles(t *testing.T) {
	f := newFixture()
	f.addTitle(1, entity.TitleKindMovie)
	f.addTitle(2, entity.TitleKindMovie)
	f.addTitle(3, entity.TitleKindMovie)
	f.addTitle(4, entity.TitleKindMovie)

	picked := f.svc.rankAndSelect(context.Background(), newRankContext(f), "test_row", []int64{1, 99, 2, 3, 4}, 30)

	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, picked)
}

func TestRankAndSelectSuppressesThinRows(t *testing.T) {
	f := newFixture()
	f.addTitle(1, entity.TitleKindMovie)
	f.addTitle(2, entity.TitleKindMovie)
	f.addTitle(3, entity.TitleKindMovie)

	// 3 eligible candidates is below the floor of 4.
	picked := f.svc.rankAndSelect(context.Background(), newRankContext(f), "test_row", []int64{1, 2, 3}, 30)

	assert.Nil(t, picked)
}

func TestRankAndSelectTruncatesToTarget(t *testing.T) {
	f := newFixture()
	ids := make([]int64, 0, 10)
	for id := int64(1); id <= 10; id++ {
		f.addTitle(id, entity.TitleKindMovie)
		ids = append(ids, id)
	}

	picked := f.svc.rankAndSelect(context.Background(), newRankContext(f), "test_row", ids, 5)

	assert.Len(t, picked, 5)
}

func TestRankAndSelectExclusionGrowthAcrossRows(t *testing.T) {
	f := newFixture()
	for id := int64(1); id <= 10; id++ {
		f.addTitle(id, entity.TitleKindMovie)
	}
	rc := newRankContext(f)

	first := f.svc.rankAndSelect(context.Background(), rc, "row_a", []int64{1, 2, 3, 4, 5, 6}, 30)
	require.NotEmpty(t, first)
	rc.exclusions.AddAll(first)

	// The second row shares candidates 1-6; none may repeat.
	second := f.svc.rankAndSelect(context.Background(), rc, "row_b", []int64{1, 2, 3, 4, 7, 8, 9, 10}, 30)
	require.NotEmpty(t, second)
	for _, id := range second {
		assert.NotContains(t, first, id)
	}
	assert.ElementsMatch(t, []int64{7, 8, 9, 10}, second)
}

func TestRankAndSelectModelFallback(t *testing.T) {
	f := newFixture()
	for id := int64(1); id <= 5; id++ {
		f.addTitle(id, entity.TitleKindMovie)
	}
	rc := newRankContext(f)
	rc.model = &failingModel{}

	picked := f.svc.rankAndSelect(context.Background(), rc, "test_row", []int64{1, 2, 3, 4, 5}, 30)

	// The heuristic path still produces a full row.
	assert.Len(t, picked, 5)
}

func TestRankAndSelectUsesModelScores(t *testing.T) {
	f := newFixture()
	for id := int64(1); id <= 4; id++ {
		f.addTitle(id, entity.TitleKindMovie)
	}
	rc := newRankContext(f)
	// The position feature increases along the candidate list, so a model
	// weighting only position reverses the source order.
	rc.model = &positionModel{}

	picked := f.svc.rankAndSelect(context.Background(), rc, "test_row", []int64{1, 2, 3, 4}, 30)

	assert.Equal(t, []int64{4, 3, 2, 1}, picked)
}

func TestRankAndSelectVectorFetchFailureDegrades(t *testing.T) {
	f := newFixture()
	for id := int64(1); id <= 4; id++ {
		f.addTitle(id, entity.TitleKindMovie)
	}
	f.embeddings.err = errors.New("vector store down")
	rc := newRankContext(f)
	rc.profileVec = []float32{1, 0}

	picked := f.svc.rankAndSelect(context.Background(), rc, "test_row", []int64{1, 2, 3, 4}, 30)

	// Cosine degrades to 0 for every candidate; the row still ranks.
	assert.Len(t, picked, 4)
}

type failingModel struct{}

func (m *failingModel) Predict([][]float64) ([]float64, error) {
	return nil, errors.New("model exploded")
}

func (m *failingModel) Schema() []string { return featureNames }

type positionModel struct{}

func (m *positionModel) Predict(features [][]float64) ([]float64, error) {
	scores := make([]float64, len(features))
	for i, row := range features {
		scores[i] = row[featPosition]
	}
	return scores, nil
}

func (m *positionModel) Schema() []string { return featureNames }
