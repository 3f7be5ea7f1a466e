package feed

import "time"

// Config bounds the planning loop and fixes the cache TTLs per domain.
// Defaults mirror production tuning; tests shrink the budget to exercise
// degradation paths.
type Config struct {
	// PlanBudget is the wall-clock budget for assembling candidate rows.
	// Checked between sources, not preemptive: a slow source overruns the
	// budget by its own latency.
	PlanBudget time.Duration

	// MaxPlannedRows caps how many rows one response may contain.
	MaxPlannedRows int

	// RowTargetSize is the per-row selection size after ranking.
	RowTargetSize int

	// MinRowSize is the viability floor: rows with fewer eligible candidates
	// are omitted entirely rather than shown half-empty.
	MinRowSize int

	// ModelName selects which embedding model version's vectors and
	// similarity edges the engine reads.
	ModelName string

	// RankerName selects which model artifact the ranker loads.
	RankerName string

	// TrendingWindow is the rolling window for trending computation.
	TrendingWindow time.Duration

	// ImpressionExcludeWindow bounds how far back impressions seed the
	// exclusion set.
	ImpressionExcludeWindow time.Duration

	// ImpressionExcludeLimit caps how many impression IDs seed exclusion.
	ImpressionExcludeLimit int

	// Cache TTLs.
	GlobalCandidatesTTL time.Duration
	HeavyCandidatesTTL  time.Duration
	TrendingTTL         time.Duration
	RankerTTL           time.Duration
	ProfileVectorTTL    time.Duration
	AffinityTTL         time.Duration
	SummaryTTL          time.Duration
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		PlanBudget:              2500 * time.Millisecond,
		MaxPlannedRows:          14,
		RowTargetSize:           30,
		MinRowSize:              4,
		ModelName:               "all-MiniLM-L6-v2",
		RankerName:              "ranker_v1",
		TrendingWindow:          72 * time.Hour,
		ImpressionExcludeWindow: 7 * 24 * time.Hour,
		ImpressionExcludeLimit:  4000,
		GlobalCandidatesTTL:     15 * time.Minute,
		HeavyCandidatesTTL:      6 * time.Hour,
		TrendingTTL:             2 * time.Minute,
		RankerTTL:               10 * time.Minute,
		ProfileVectorTTL:        5 * time.Minute,
		AffinityTTL:             30 * time.Minute,
		SummaryTTL:              24 * time.Hour,
	}
}

// Candidate list sizes per source category. Larger pools give the ranker room
// to work after exclusion; heavier lists carry longer TTLs.
const (
	globalCandidateLimit  = 1200
	forYouCandidateLimit  = 800
	becauseCandidateLimit = 700
	hiddenGemLimit        = 1400
	freshCandidateLimit   = 900
	trendingLimit         = 1200
	affinityIDLimit       = 900
	affinityValueLimit    = 4000

	recentActionsLimit  = 200
	actionExcludeLimit  = 4000
	genreSeedWindow     = 80
	castKeywordWindow   = 120
	hiddenGemMinRating  = 7.2
	hiddenGemMinVotes   = 250
)
