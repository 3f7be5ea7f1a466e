package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

func TestFreshnessDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		releaseDate  string
		firstAirDate string
		want         float64
	}{
		{
			name:        "release date known",
			releaseDate: "2025-05-22",
			want:        10,
		},
		{
			name:         "falls back to first air date",
			firstAirDate: "2025-04-02",
			want:         60,
		},
		{
			name:         "release date wins over first air date",
			releaseDate:  "2025-05-22",
			firstAirDate: "2020-01-01",
			want:         10,
		},
		{
			name: "no date at all",
			want: unknownFreshnessDays,
		},
		{
			name:        "malformed date",
			releaseDate: "not-a-date",
			want:        unknownFreshnessDays,
		},
		{
			name:        "same day",
			releaseDate: "2025-06-01",
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := &entity.Title{ReleaseDate: tt.releaseDate, FirstAirDate: tt.firstAirDate}
			assert.Equal(t, tt.want, freshnessDays(title, now))
		})
	}
}

func TestRowHash(t *testing.T) {
	t.Run("deterministic across calls", func(t *testing.T) {
		assert.Equal(t, rowHash("trending"), rowHash("trending"))
	})

	t.Run("stays within bucket range", func(t *testing.T) {
		for _, key := range []string{"for_you", "trending", "because:42", "genre:drama", "kw:time travel"} {
			h := rowHash(key)
			assert.GreaterOrEqual(t, h, 0.0, "key %q", key)
			assert.Less(t, h, float64(rowHashBuckets), "key %q", key)
		}
	})

	t.Run("different keys spread", func(t *testing.T) {
		assert.NotEqual(t, rowHash("for_you"), rowHash("trending"))
	})
}

func TestBuildFeatures(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	title := &entity.Title{
		Kind:             entity.TitleKindMovie,
		OriginalLanguage: "ko",
		ReleaseDate:      "2025-05-02",
		VoteAverage:      8.1,
		VoteCount:        999,
		Popularity:       123.4,
	}

	got := buildFeatures(title, 0.73, "ko", 5, 42, now)

	require.Len(t, got, len(featureNames))
	assert.Equal(t, 0.73, got[featCosine])
	assert.Equal(t, 123.4, got[featPopularity])
	assert.Equal(t, 8.1, got[featVoteAverage])
	assert.InDelta(t, 6.9077, got[featLogVoteCount], 0.001)
	assert.Equal(t, 30.0, got[featFreshnessDays])
	assert.Equal(t, 1.0, got[featLangMatch])
	assert.Equal(t, 1.0, got[featIsMovie])
	assert.Equal(t, 0.0, got[featIsTV])
	assert.Equal(t, 5.0, got[featPosition])
	assert.Equal(t, 42.0, got[featRowHash])
}

func TestBuildFeaturesLangMismatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		titleLang     string
		preferredLang string
		want          float64
	}{
		{
			name:          "match",
			titleLang:     "ja",
			preferredLang: "ja",
			want:          1.0,
		},
		{
			name:          "mismatch",
			titleLang:     "en",
			preferredLang: "ja",
			want:          0.0,
		},
		{
			name:      "no preference never matches",
			titleLang: "en",
			want:      0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := &entity.Title{Kind: entity.TitleKindTV, OriginalLanguage: tt.titleLang}
			got := buildFeatures(title, 0, tt.preferredLang, 0, 0, now)
			assert.Equal(t, tt.want, got[featLangMatch])
		})
	}
}

func TestFeatureSchemaAgreement(t *testing.T) {
	// The column index constants must line up with featureNames; a drift here
	// silently corrupts every model prediction.
	assert.Equal(t, "cosine", featureNames[featCosine])
	assert.Equal(t, "popularity", featureNames[featPopularity])
	assert.Equal(t, "vote_average", featureNames[featVoteAverage])
	assert.Equal(t, "log_vote_count", featureNames[featLogVoteCount])
	assert.Equal(t, "freshness_days", featureNames[featFreshnessDays])
	assert.Equal(t, "lang_match", featureNames[featLangMatch])
	assert.Equal(t, "is_movie", featureNames[featIsMovie])
	assert.Equal(t, "is_tv", featureNames[featIsTV])
	assert.Equal(t, "position", featureNames[featPosition])
	assert.Equal(t, "row_hash", featureNames[featRowHash])
}
