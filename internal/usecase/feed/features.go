package feed

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

// featureNames is the canonical feature column order. A loaded model artifact
// must declare exactly this schema or the ranker fails closed to the
// heuristic scorer.
var featureNames = []string{
	"cosine",
	"popularity",
	"vote_average",
	"log_vote_count",
	"freshness_days",
	"lang_match",
	"is_movie",
	"is_tv",
	"position",
	"row_hash",
}

// Feature column indexes, kept in sync with featureNames.
const (
	featCosine = iota
	featPopularity
	featVoteAverage
	featLogVoteCount
	featFreshnessDays
	featLangMatch
	featIsMovie
	featIsTV
	featPosition
	featRowHash
)

// unknownFreshnessDays is the freshness assigned when a title has no known
// release or first-air date: maximally stale, never an error.
const unknownFreshnessDays = 9999

// rowHashBuckets is the modulo range for the row-key hash feature. The bucket
// lets the model learn row-type-specific biases without one-hot explosion.
const rowHashBuckets = 997

// rowHash maps a row key to a stable bucket in [0, rowHashBuckets). FNV-1a is
// used because it is deterministic across runs and processes, which model
// compatibility requires; the exact function is otherwise not significant.
func rowHash(rowKey string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(rowKey))
	return float64(h.Sum32() % rowHashBuckets)
}

// parseCatalogDate parses the catalog's "yyyy-mm-dd" date strings.
// Returns the zero time for empty or malformed input.
func parseCatalogDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// freshnessDays returns the age of a title in days relative to now, preferring
// the release date and falling back to the first-air date.
func freshnessDays(t *entity.Title, now time.Time) float64 {
	d := parseCatalogDate(t.ReleaseDate)
	if d.IsZero() {
		d = parseCatalogDate(t.FirstAirDate)
	}
	if d.IsZero() {
		return unknownFreshnessDays
	}
	return math.Floor(now.Sub(d).Hours() / 24)
}

// buildFeatures assembles one candidate's feature vector in featureNames
// order.
func buildFeatures(t *entity.Title, cosine float64, preferredLang string, position int, hash float64, now time.Time) []float64 {
	langMatch := 0.0
	if preferredLang != "" && t.OriginalLanguage == preferredLang {
		langMatch = 1.0
	}
	isMovie := 0.0
	isTV := 0.0
	switch t.Kind {
	case entity.TitleKindMovie:
		isMovie = 1.0
	case entity.TitleKindTV:
		isTV = 1.0
	}

	return []float64{
		cosine,
		t.Popularity,
		t.VoteAverage,
		math.Log1p(float64(t.VoteCount)),
		freshnessDays(t, now),
		langMatch,
		isMovie,
		isTV,
		float64(position),
		hash,
	}
}
