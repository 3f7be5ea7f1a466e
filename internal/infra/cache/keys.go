package cache

import "fmt"

// Typed cache-key builders, one per cache domain. Building keys through these
// functions makes cross-domain collisions impossible by construction instead
// of a naming convention.

// summaryVersion is bumped whenever the ItemSummary projection changes shape,
// invalidating every per-title summary entry at once.
const summaryVersion = "v1"

// GlobalCandidatesKey keys a globally-shared candidate ID list (popular,
// top_rated, hidden_gems, genre:<g>, ...). Never profile-specific.
func GlobalCandidatesKey(source string) string {
	return "reco:global:" + source
}

// TrendingKey keys the rolling-window trending ID list.
func TrendingKey(windowHours int) string {
	return fmt.Sprintf("reco:trend:%dh", windowHours)
}

// ProfileVectorKey keys a profile's aggregate embedding vector.
func ProfileVectorKey(profileID int64, modelName string) string {
	return fmt.Sprintf("reco:profvec:%s:%d", modelName, profileID)
}

// RankerKey keys the deserialized ranking-model artifact.
func RankerKey(name string) string {
	return "reco:ranker:" + name
}

// TitleSummaryKey keys one serialized ItemSummary.
func TitleSummaryKey(titleID int64) string {
	return fmt.Sprintf("reco:titlehome:%s:%d", summaryVersion, titleID)
}

// ProfileAffinityKey keys a profile's briefly-cached top attribute values for
// one dimension (the chosen values are profile-specific; the per-value ID
// lists are global).
func ProfileAffinityKey(profileID int64, dimension string) string {
	return fmt.Sprintf("reco:affinity:%s:%d", dimension, profileID)
}
