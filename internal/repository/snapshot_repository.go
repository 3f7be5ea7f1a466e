package repository

import (
	"context"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

// SnapshotRepository persists precomputed home payloads. Upserts use
// replace-if-exists semantics keyed on (profile, algo version), so the offline
// job's per-profile writes are idempotent and independent.
type SnapshotRepository interface {
	// Latest returns the most recently built snapshot for the profile and
	// algorithm version, or (nil, nil) when none exists.
	Latest(ctx context.Context, profileID int64, algoVersion string) (*entity.HomeSnapshot, error)

	// Upsert creates or replaces the snapshot for (profile, algo version).
	Upsert(ctx context.Context, snapshot *entity.HomeSnapshot) error
}
