package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/antoinerimano/Netflix/internal/infra/cache"
)

// RankingModel scores a feature matrix, one score per row. Implementations
// are loaded from opaque artifact blobs; the engine validates the declared
// schema against its own feature order before use and fails closed to the
// heuristic scorer on any mismatch.
type RankingModel interface {
	Predict(features [][]float64) ([]float64, error)
	Schema() []string
}

// linearModel is the artifact format currently produced by the offline
// training job: one weight per feature plus a bias, serialized as JSON.
type linearModel struct {
	weights []float64
	bias    float64
	schema  []string
}

type linearArtifact struct {
	Weights map[string]float64 `json:"weights"`
	Bias    float64            `json:"bias"`
}

func (m *linearModel) Predict(features [][]float64) ([]float64, error) {
	scores := make([]float64, len(features))
	for i, row := range features {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("feature row %d has %d columns, model expects %d", i, len(row), len(m.weights))
		}
		s := m.bias
		for j, v := range row {
			s += m.weights[j] * v
		}
		scores[i] = s
	}
	return scores, nil
}

func (m *linearModel) Schema() []string {
	return m.schema
}

// decodeLinearModel deserializes an artifact blob into a linearModel using
// the declared column order.
func decodeLinearModel(blob []byte, schema []string) (*linearModel, error) {
	var art linearArtifact
	if err := json.Unmarshal(blob, &art); err != nil {
		return nil, fmt.Errorf("decode model blob: %w", err)
	}
	weights := make([]float64, len(schema))
	for i, name := range schema {
		w, ok := art.Weights[name]
		if !ok {
			return nil, fmt.Errorf("model blob missing weight for feature %q", name)
		}
		weights[i] = w
	}
	return &linearModel{weights: weights, bias: art.Bias, schema: schema}, nil
}

// validateSchema checks that the artifact's declared feature schema is
// exactly the engine's feature order: same names, same indexes, nothing
// extra.
func validateSchema(declared map[string]int) ([]string, error) {
	if len(declared) != len(featureNames) {
		return nil, fmt.Errorf("schema has %d features, expected %d", len(declared), len(featureNames))
	}
	for i, name := range featureNames {
		idx, ok := declared[name]
		if !ok {
			return nil, fmt.Errorf("schema missing feature %q", name)
		}
		if idx != i {
			return nil, fmt.Errorf("schema places %q at column %d, expected %d", name, idx, i)
		}
	}
	return featureNames, nil
}

// cachedArtifact is the cache representation of a ranker lookup. Negative
// results are cached too, so an absent artifact does not hit the store on
// every request.
type cachedArtifact struct {
	Found  bool           `json:"found"`
	Blob   []byte         `json:"blob,omitempty"`
	Schema map[string]int `json:"schema,omitempty"`
}

// LoadRanker returns the current ranking model, or nil when no usable
// artifact exists. Every failure mode (store error, invalid artifact, schema
// mismatch, undecodable blob) degrades to nil: ranking then uses the
// deterministic heuristic, which is a designed mode, not an error path.
func (s *Service) LoadRanker(ctx context.Context) RankingModel {
	key := cache.RankerKey(s.Config.RankerName)

	var entry cachedArtifact
	if !cache.GetJSON(ctx, s.Cache, key, &entry) {
		entry = s.fetchArtifact(ctx)
		cache.SetJSON(ctx, s.Cache, key, entry, s.Config.RankerTTL)
	}
	if !entry.Found {
		return nil
	}

	schema, err := validateSchema(entry.Schema)
	if err != nil {
		s.log().Warn("ranker schema rejected, using heuristic scorer",
			slog.String("ranker", s.Config.RankerName),
			slog.Any("error", err))
		return nil
	}
	model, err := decodeLinearModel(entry.Blob, schema)
	if err != nil {
		s.log().Warn("ranker blob rejected, using heuristic scorer",
			slog.String("ranker", s.Config.RankerName),
			slog.Any("error", err))
		return nil
	}
	return model
}

func (s *Service) fetchArtifact(ctx context.Context) cachedArtifact {
	art, err := s.Artifacts.Latest(ctx, s.Config.RankerName)
	if err != nil {
		s.log().Warn("ranker artifact lookup failed",
			slog.String("ranker", s.Config.RankerName),
			slog.Any("error", err))
		return cachedArtifact{}
	}
	if art == nil {
		return cachedArtifact{}
	}
	if err := art.Validate(); err != nil {
		s.log().Warn("ranker artifact invalid",
			slog.String("ranker", s.Config.RankerName),
			slog.Any("error", err))
		return cachedArtifact{}
	}
	return cachedArtifact{Found: true, Blob: art.ModelBlob, Schema: art.FeatureSchema}
}
