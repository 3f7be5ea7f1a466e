package entity

import "time"

// Algorithm version tags distinguish the two snapshot flavors that coexist
// per profile. Callers never overwrite one with the other implicitly.
const (
	// AlgoVersionLive tags snapshots produced by the periodic offline job.
	AlgoVersionLive = "home_v1"
	// AlgoVersionSeed tags the long-lived snapshot built once at profile
	// creation from non-personalized sources.
	AlgoVersionSeed = "home_v1_seed"
)

// Serve modes reported to the client alongside the payload.
const (
	ServeModeSnapshot      = "snapshot"
	ServeModeSeedSnapshot  = "seed_snapshot"
	ServeModeNoSnapshotYet = "no_snapshot_yet"
)

// ItemSummary is the small projection of a title that gets serialized into
// feed payloads. It is never the full catalog record.
type ItemSummary struct {
	ID          int64     `json:"id"`
	Kind        TitleKind `json:"type"`
	Title       string    `json:"title"`
	Image       string    `json:"landscape_image"`
	Year        int       `json:"release_year"`
	Rating      string    `json:"rating"`
	Description string    `json:"description"`
	ClipURL     string    `json:"trailer_clip_url"`
}

// HomeRow is one labeled, ranked, deduplicated row of the home feed.
type HomeRow struct {
	RowKey string        `json:"row_type"`
	Title  string        `json:"title"`
	Items  []ItemSummary `json:"items"`
}

// HomePayload is the serialized shape of a full home feed response.
type HomePayload struct {
	Rows []HomeRow `json:"rows"`
}

// HomeSnapshot is the persisted, precomputed feed payload for one profile.
// One live snapshot and one seed snapshot coexist per profile, distinguished
// by AlgoVersion.
type HomeSnapshot struct {
	ProfileID   int64
	AlgoVersion string
	Payload     HomePayload
	BuiltAt     time.Time
	ExpiresAt   time.Time
	LastError   string
}

// IsServable reports whether the snapshot may be returned to a caller:
// the payload must be non-empty and, when checkExpiry is set, the expiry
// must be in the future relative to now.
func (s *HomeSnapshot) IsServable(now time.Time, checkExpiry bool) bool {
	if s == nil || len(s.Payload.Rows) == 0 {
		return false
	}
	if checkExpiry && !s.ExpiresAt.After(now) {
		return false
	}
	return true
}
