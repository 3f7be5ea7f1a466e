package feed

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/observability/metrics"
)

// Heuristic scorer weights. The formula must stay bit-identical across calls:
// it is the designed degraded mode when no learned model is available and the
// offline job depends on its determinism.
const (
	heuristicCosineWeight     = 0.55
	heuristicRatingWeight     = 0.25
	heuristicPopularityWeight = 0.20
	heuristicLangMatchWeight  = 0.05
	heuristicFreshnessPenalty = 0.00002
)

// heuristicScore is the deterministic model-free scoring formula.
func heuristicScore(features []float64) float64 {
	s := heuristicCosineWeight * features[featCosine]
	s += heuristicRatingWeight * (features[featVoteAverage] / 10.0)
	s += heuristicPopularityWeight * (features[featPopularity] / 100.0)
	s += heuristicLangMatchWeight * features[featLangMatch]
	s -= heuristicFreshnessPenalty * features[featFreshnessDays]
	return s
}

// rankContext carries the per-response state shared across row rankings: the
// loaded model, the profile vector, the growing exclusion set, and the
// response-scoped embedding cache that batches vector lookups per row.
type rankContext struct {
	model      RankingModel
	profileVec []float32
	language   string
	exclusions *Exclusions
	titles     map[int64]*entity.Title
	vectors    map[int64][]float32
	vectorSeen map[int64]bool
}

// fillVectors batch-resolves embeddings for IDs not yet looked up in this
// response. A missing embedding is remembered as absent so it is not
// re-queried by later rows.
func (s *Service) fillVectors(ctx context.Context, rc *rankContext, ids []int64) {
	missing := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !rc.vectorSeen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return
	}
	found, err := s.Embeddings.BulkVectors(ctx, missing, s.Config.ModelName)
	if err != nil {
		// Missing embeddings degrade the cosine feature to 0 for this row.
		s.log().Warn("bulk vector fetch failed", slog.Int("ids", len(missing)), slog.Any("error", err))
		found = nil
	}
	for _, id := range missing {
		rc.vectorSeen[id] = true
		if vec, ok := found[id]; ok {
			rc.vectors[id] = vec
		}
	}
}

// RankAndSelect filters, scores, and truncates one row's candidates:
//  1. drop excluded and within-row duplicate IDs, preserving first-seen order
//  2. suppress the row entirely below the viability floor
//  3. batch-resolve embeddings and build the feature matrix
//  4. score with the loaded model, falling back to the deterministic
//     heuristic when no model is loaded or prediction fails
//  5. stable-sort descending and take the first targetSize
//
// The returned IDs are not yet merged into the exclusion set; the caller does
// that after accepting the row, keeping exclusion growth in row order.
func (s *Service) rankAndSelect(ctx context.Context, rc *rankContext, rowKey string, candidateIDs []int64, targetSize int) []int64 {
	if len(candidateIDs) == 0 {
		return nil
	}
	start := time.Now()

	uniq := make([]int64, 0, len(candidateIDs))
	seenLocal := make(map[int64]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if rc.exclusions.Has(id) {
			continue
		}
		if _, dup := seenLocal[id]; dup {
			continue
		}
		if _, known := rc.titles[id]; !known {
			continue
		}
		seenLocal[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) < s.Config.MinRowSize {
		return nil
	}

	s.fillVectors(ctx, rc, uniq)

	now := s.nowUTC()
	hash := rowHash(rowKey)
	features := make([][]float64, len(uniq))
	for pos, id := range uniq {
		t := rc.titles[id]
		cos := 0.0
		if rc.profileVec != nil {
			cos = Cosine(rc.profileVec, rc.vectors[id])
		}
		features[pos] = buildFeatures(t, cos, rc.language, pos, hash, now)
	}

	var scores []float64
	if rc.model != nil {
		predicted, err := rc.model.Predict(features)
		if err != nil || len(predicted) != len(uniq) {
			s.log().Warn("model prediction failed, using heuristic scorer",
				slog.String("row_key", rowKey),
				slog.Any("error", err))
		} else {
			scores = predicted
		}
	}
	if scores == nil {
		scores = make([]float64, len(uniq))
		for i, f := range features {
			scores[i] = heuristicScore(f)
		}
	}

	order := make([]int, len(uniq))
	for i := range order {
		order[i] = i
	}
	// Stable: ties keep the candidate source's order.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	k := targetSize
	if k > len(order) {
		k = len(order)
	}
	picked := make([]int64, 0, k)
	for _, idx := range order[:k] {
		picked = append(picked, uniq[idx])
	}

	metrics.RecordRowRank(time.Since(start))
	s.log().Debug("ranked row",
		slog.String("row_key", rowKey),
		slog.Int("candidates", len(candidateIDs)),
		slog.Int("eligible", len(uniq)),
		slog.Int("picked", len(picked)),
		slog.Duration("took", time.Since(start)))

	return picked
}
