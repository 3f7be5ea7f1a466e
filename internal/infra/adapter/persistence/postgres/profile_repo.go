package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// ProfileRepo implements the ProfileRepository interface for PostgreSQL.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo creates a new PostgreSQL-based ProfileRepository.
func NewProfileRepo(db *sql.DB) repository.ProfileRepository {
	return &ProfileRepo{db: db}
}

// Get returns the profile, or (nil, nil) when it does not exist.
func (repo *ProfileRepo) Get(ctx context.Context, id int64) (*entity.Profile, error) {
	const query = `
SELECT id, user_id, name, language_preference
FROM profiles
WHERE id = $1`

	p := &entity.Profile{}
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.LanguagePreference,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return p, nil
}

// ListIDs returns profile IDs ascending, bounded by limit.
func (repo *ProfileRepo) ListIDs(ctx context.Context, limit int) ([]int64, error) {
	const query = `
SELECT id FROM profiles
ORDER BY id
LIMIT $1`

	ids, err := repo.queryIDs(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListIDs: %w", err)
	}
	return ids, nil
}

// ActiveIDsSince returns IDs of profiles with at least one action since the
// cutoff, ascending, bounded by limit.
func (repo *ProfileRepo) ActiveIDsSince(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	const query = `
SELECT DISTINCT profile_id FROM title_actions
WHERE created_at >= $1
ORDER BY profile_id
LIMIT $2`

	ids, err := repo.queryIDs(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("ActiveIDsSince: %w", err)
	}
	return ids, nil
}

func (repo *ProfileRepo) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
