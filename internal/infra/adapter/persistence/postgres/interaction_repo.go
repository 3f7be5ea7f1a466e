package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// InteractionRepo implements the InteractionRepository interface for
// PostgreSQL.
type InteractionRepo struct {
	db *sql.DB
}

// NewInteractionRepo creates a new PostgreSQL-based InteractionRepository.
func NewInteractionRepo(db *sql.DB) repository.InteractionRepository {
	return &InteractionRepo{db: db}
}

// RecentActionTitleIDs returns the title IDs of the profile's most recent
// actions, newest first, duplicates preserved.
func (repo *InteractionRepo) RecentActionTitleIDs(ctx context.Context, profileID int64, limit int) ([]int64, error) {
	const query = `
SELECT title_id FROM title_actions
WHERE profile_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	ids, err := repo.queryIDs(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentActionTitleIDs: %w", err)
	}
	return ids, nil
}

// RecentStrongActions returns the profile's most recent strong actions,
// newest first.
func (repo *InteractionRepo) RecentStrongActions(ctx context.Context, profileID int64, limit int) ([]repository.ActionRef, error) {
	const query = `
SELECT title_id, action FROM title_actions
WHERE profile_id = $1 AND action IN ('outbound', 'add_to_list', 'like', 'click')
ORDER BY created_at DESC, id DESC
LIMIT $2`

	rows, err := repo.db.QueryContext(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentStrongActions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	refs := make([]repository.ActionRef, 0, limit)
	for rows.Next() {
		var ref repository.ActionRef
		var action string
		if err := rows.Scan(&ref.TitleID, &action); err != nil {
			return nil, fmt.Errorf("RecentStrongActions: Scan: %w", err)
		}
		ref.Action = entity.ActionType(action)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RecentStrongActions: %w", err)
	}
	return refs, nil
}

// ActionTitleIDs returns distinct acted-on title IDs for exclusion seeding,
// most recently acted first.
func (repo *InteractionRepo) ActionTitleIDs(ctx context.Context, profileID int64, limit int) ([]int64, error) {
	const query = `
SELECT title_id FROM title_actions
WHERE profile_id = $1
GROUP BY title_id
ORDER BY MAX(created_at) DESC
LIMIT $2`

	ids, err := repo.queryIDs(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("ActionTitleIDs: %w", err)
	}
	return ids, nil
}

// ImpressionTitleIDsSince returns distinct title IDs shown to the profile
// since the cutoff, most recently shown first.
func (repo *InteractionRepo) ImpressionTitleIDsSince(ctx context.Context, profileID int64, since time.Time, limit int) ([]int64, error) {
	const query = `
SELECT title_id FROM title_impressions
WHERE profile_id = $1 AND created_at >= $2
GROUP BY title_id
ORDER BY MAX(created_at) DESC
LIMIT $3`

	ids, err := repo.queryIDs(ctx, query, profileID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("ImpressionTitleIDsSince: %w", err)
	}
	return ids, nil
}

// TrendingTitleIDs ranks titles by outbound-action count over the window
// starting at since.
func (repo *InteractionRepo) TrendingTitleIDs(ctx context.Context, since time.Time, limit int) ([]int64, error) {
	const query = `
SELECT title_id FROM title_actions
WHERE action = 'outbound' AND created_at >= $1
GROUP BY title_id
ORDER BY COUNT(*) DESC, title_id
LIMIT $2`

	ids, err := repo.queryIDs(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("TrendingTitleIDs: %w", err)
	}
	return ids, nil
}

// InsertImpressions bulk-inserts impressions in one statement. Duplicates on
// (profile, title, session, row_type) are silently ignored so retried batches
// stay idempotent. Returns the number of rows actually inserted.
func (repo *InteractionRepo) InsertImpressions(ctx context.Context, impressions []*entity.Impression) (int64, error) {
	if len(impressions) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`
INSERT INTO title_impressions (profile_id, title_id, session_id, row_type, position, device, country, created_at)
VALUES `)

	args := make([]any, 0, len(impressions)*8)
	for i, imp := range impressions {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args,
			imp.ProfileID,
			imp.TitleID,
			imp.SessionID,
			imp.RowType,
			imp.Position,
			imp.Device,
			imp.Country,
			imp.CreatedAt,
		)
	}
	sb.WriteString(`
ON CONFLICT (profile_id, title_id, session_id, row_type) DO NOTHING`)

	result, err := repo.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("InsertImpressions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("InsertImpressions: RowsAffected: %w", err)
	}
	return count, nil
}

// InsertAction persists one action event.
func (repo *InteractionRepo) InsertAction(ctx context.Context, action *entity.Action) error {
	const query = `
INSERT INTO title_actions (profile_id, title_id, action, session_id, provider, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	err := repo.db.QueryRowContext(ctx, query,
		action.ProfileID,
		action.TitleID,
		string(action.Action),
		action.SessionID,
		action.Provider,
		action.CreatedAt,
	).Scan(&action.ID)
	if err != nil {
		return fmt.Errorf("InsertAction: %w", err)
	}
	return nil
}

func (repo *InteractionRepo) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
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
