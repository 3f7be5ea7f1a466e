package feed

import (
	"context"
	"fmt"
	"math"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/infra/cache"
)

// maxVectorActions bounds how many recent strong actions feed the profile
// vector.
const maxVectorActions = 80

// actionWeights grade action strength for profile-vector aggregation.
// Outbound (click-through to playback) is the strongest relevance signal.
var actionWeights = map[entity.ActionType]float64{
	entity.ActionOutbound:  4.0,
	entity.ActionAddToList: 3.0,
	entity.ActionLike:      2.0,
	entity.ActionClick:     1.0,
}

// Cosine returns the cosine similarity between two vectors: dot product over
// the product of L2 norms. Returns 0 when either vector is nil, empty, or has
// zero norm, so it never divides by zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// BuildProfileVector computes the weighted mean of the embedding vectors of
// the profile's most recent strong actions. Returns nil when the profile has
// no action with a resolvable vector; callers then score purely on
// non-embedding features. The result is cached with a short TTL.
func (s *Service) BuildProfileVector(ctx context.Context, profileID int64) ([]float32, error) {
	key := cache.ProfileVectorKey(profileID, s.Config.ModelName)
	var cached []float32
	if cache.GetJSON(ctx, s.Cache, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	actions, err := s.Interactions.RecentStrongActions(ctx, profileID, maxVectorActions)
	if err != nil {
		return nil, fmt.Errorf("recent strong actions: %w", err)
	}
	if len(actions) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(actions))
	for _, a := range actions {
		ids = append(ids, a.TitleID)
	}
	vectors, err := s.Embeddings.BulkVectors(ctx, ids, s.Config.ModelName)
	if err != nil {
		return nil, fmt.Errorf("bulk vectors: %w", err)
	}

	var sum []float64
	var weightSum float64
	for _, a := range actions {
		vec := vectors[a.TitleID]
		if len(vec) == 0 {
			continue
		}
		w := actionWeights[a.Action]
		if w == 0 {
			w = 1.0
		}
		if sum == nil {
			sum = make([]float64, len(vec))
		}
		if len(vec) != len(sum) {
			// Mixed dimensions mean a partially rolled-out model version;
			// skip the odd one out.
			continue
		}
		for i, v := range vec {
			sum[i] += float64(v) * w
		}
		weightSum += w
	}
	if sum == nil || weightSum == 0 {
		return nil, nil
	}

	result := make([]float32, len(sum))
	for i, v := range sum {
		result[i] = float32(v / weightSum)
	}
	cache.SetJSON(ctx, s.Cache, key, result, s.Config.ProfileVectorTTL)
	return result, nil
}
