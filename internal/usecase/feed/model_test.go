package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

// validArtifactSchema builds the exact schema the engine expects.
func validArtifactSchema() map[string]int {
	schema := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		schema[name] = i
	}
	return schema
}

// validArtifactBlob is a linear model with weight 1 on cosine and 0 elsewhere.
func validArtifactBlob() []byte {
	return []byte(`{"weights":{"cosine":1,"popularity":0,"vote_average":0,"log_vote_count":0,"freshness_days":0,"lang_match":0,"is_movie":0,"is_tv":0,"position":0,"row_hash":0},"bias":0.5}`)
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]int)
		wantErr bool
	}{
		{
			name:   "exact schema",
			mutate: func(map[string]int) {},
		},
		{
			name:    "missing feature",
			mutate:  func(s map[string]int) { delete(s, "cosine") },
			wantErr: true,
		},
		{
			name: "renamed feature",
			mutate: func(s map[string]int) {
				delete(s, "cosine")
				s["similarity"] = 0
			},
			wantErr: true,
		},
		{
			name: "swapped columns",
			mutate: func(s map[string]int) {
				s["cosine"], s["popularity"] = s["popularity"], s["cosine"]
			},
			wantErr: true,
		},
		{
			name:    "extra feature",
			mutate:  func(s map[string]int) { s["watch_minutes"] = 10 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := validArtifactSchema()
			tt.mutate(schema)

			got, err := validateSchema(schema)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, featureNames, got)
		})
	}
}

func TestDecodeLinearModel(t *testing.T) {
	t.Run("valid blob predicts", func(t *testing.T) {
		model, err := decodeLinearModel(validArtifactBlob(), featureNames)
		require.NoError(t, err)

		features := make([]float64, len(featureNames))
		features[featCosine] = 0.8

		scores, err := model.Predict([][]float64{features})
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.InDelta(t, 1.3, scores[0], 1e-9) // 0.8*1 + bias 0.5
	})

	t.Run("missing weight", func(t *testing.T) {
		_, err := decodeLinearModel([]byte(`{"weights":{"cosine":1},"bias":0}`), featureNames)
		assert.Error(t, err)
	})

	t.Run("garbage blob", func(t *testing.T) {
		_, err := decodeLinearModel([]byte(`not json`), featureNames)
		assert.Error(t, err)
	})

	t.Run("column count mismatch at predict", func(t *testing.T) {
		model, err := decodeLinearModel(validArtifactBlob(), featureNames)
		require.NoError(t, err)

		_, err = model.Predict([][]float64{{1, 2, 3}})
		assert.Error(t, err)
	})
}

func TestLoadRanker(t *testing.T) {
	t.Run("valid artifact loads", func(t *testing.T) {
		f := newFixture()
		f.artifacts.artifact = &entity.RankerArtifact{
			Name:          entity.DefaultRankerName,
			ModelBlob:     validArtifactBlob(),
			FeatureSchema: validArtifactSchema(),
			TrainedAt:     time.Now(),
		}

		model := f.svc.LoadRanker(context.Background())

		require.NotNil(t, model)
		assert.Equal(t, featureNames, model.Schema())
	})

	t.Run("no artifact means heuristic", func(t *testing.T) {
		f := newFixture()

		assert.Nil(t, f.svc.LoadRanker(context.Background()))
	})

	t.Run("schema mismatch fails closed", func(t *testing.T) {
		f := newFixture()
		schema := validArtifactSchema()
		delete(schema, "row_hash")
		schema["extra"] = 9
		f.artifacts.artifact = &entity.RankerArtifact{
			Name:          entity.DefaultRankerName,
			ModelBlob:     validArtifactBlob(),
			FeatureSchema: schema,
			TrainedAt:     time.Now(),
		}

		assert.Nil(t, f.svc.LoadRanker(context.Background()))
	})

	t.Run("undecodable blob fails closed", func(t *testing.T) {
		f := newFixture()
		f.artifacts.artifact = &entity.RankerArtifact{
			Name:          entity.DefaultRankerName,
			ModelBlob:     []byte(`broken`),
			FeatureSchema: validArtifactSchema(),
			TrainedAt:     time.Now(),
		}

		assert.Nil(t, f.svc.LoadRanker(context.Background()))
	})

	t.Run("store error fails closed", func(t *testing.T) {
		f := newFixture()
		f.artifacts.err = errors.New("db down")

		assert.Nil(t, f.svc.LoadRanker(context.Background()))
	})

	t.Run("absence is cached", func(t *testing.T) {
		f := newFixture()

		require.Nil(t, f.svc.LoadRanker(context.Background()))

		// An artifact appearing within the TTL is not picked up.
		f.artifacts.artifact = &entity.RankerArtifact{
			Name:          entity.DefaultRankerName,
			ModelBlob:     validArtifactBlob(),
			FeatureSchema: validArtifactSchema(),
			TrainedAt:     time.Now(),
		}
		assert.Nil(t, f.svc.LoadRanker(context.Background()))
	})

	t.Run("artifact is cached across store failures", func(t *testing.T) {
		f := newFixture()
		f.artifacts.artifact = &entity.RankerArtifact{
			Name:          entity.DefaultRankerName,
			ModelBlob:     validArtifactBlob(),
			FeatureSchema: validArtifactSchema(),
			TrainedAt:     time.Now(),
		}
		require.NotNil(t, f.svc.LoadRanker(context.Background()))

		f.artifacts.err = errors.New("db down")
		assert.NotNil(t, f.svc.LoadRanker(context.Background()))
	})
}
