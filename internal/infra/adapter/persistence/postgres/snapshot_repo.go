package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// SnapshotRepo implements the SnapshotRepository interface for PostgreSQL.
// Payloads are stored as JSONB.
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo creates a new PostgreSQL-based SnapshotRepository.
func NewSnapshotRepo(db *sql.DB) repository.SnapshotRepository {
	return &SnapshotRepo{db: db}
}

// Latest returns the snapshot for (profile, algo version), or (nil, nil) when
// none exists.
func (repo *SnapshotRepo) Latest(ctx context.Context, profileID int64, algoVersion string) (*entity.HomeSnapshot, error) {
	const query = `
SELECT payload, built_at, expires_at, last_error
FROM reco_home_snapshots
WHERE profile_id = $1 AND algo_version = $2`

	snap := &entity.HomeSnapshot{
		ProfileID:   profileID,
		AlgoVersion: algoVersion,
	}
	var payload []byte
	err := repo.db.QueryRowContext(ctx, query, profileID, algoVersion).Scan(
		&payload,
		&snap.BuiltAt,
		&snap.ExpiresAt,
		&snap.LastError,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &snap.Payload); err != nil {
			return nil, fmt.Errorf("Latest: decode payload: %w", err)
		}
	}
	return snap, nil
}

// Upsert creates or replaces the snapshot for (profile, algo version).
func (repo *SnapshotRepo) Upsert(ctx context.Context, snapshot *entity.HomeSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("Upsert: snapshot is nil")
	}

	payload, err := json.Marshal(snapshot.Payload)
	if err != nil {
		return fmt.Errorf("Upsert: encode payload: %w", err)
	}

	const query = `
INSERT INTO reco_home_snapshots (profile_id, algo_version, payload, built_at, expires_at, last_error)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (profile_id, algo_version)
DO UPDATE SET
	payload = EXCLUDED.payload,
	built_at = EXCLUDED.built_at,
	expires_at = EXCLUDED.expires_at,
	last_error = EXCLUDED.last_error`

	_, err = repo.db.ExecContext(ctx, query,
		snapshot.ProfileID,
		snapshot.AlgoVersion,
		payload,
		snapshot.BuiltAt,
		snapshot.ExpiresAt,
		snapshot.LastError,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
