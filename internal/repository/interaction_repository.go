package repository

import (
	"context"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

// ActionRef is a lightweight projection of an action used for profile-vector
// construction: the title acted on and the action strength class.
type ActionRef struct {
	TitleID int64
	Action  entity.ActionType
}

// InteractionRepository persists and queries interaction events (impressions
// and actions). Reads are shaped for the planner's needs: reverse
// chronological, bounded, ID-only where possible.
type InteractionRepository interface {
	// RecentActionTitleIDs returns the title IDs of the profile's most recent
	// actions, newest first. Duplicates are preserved (a title acted on twice
	// appears twice).
	RecentActionTitleIDs(ctx context.Context, profileID int64, limit int) ([]int64, error)

	// RecentStrongActions returns the profile's most recent actions restricted
	// to the strong types (outbound, add_to_list, like, click), newest first.
	RecentStrongActions(ctx context.Context, profileID int64, limit int) ([]ActionRef, error)

	// ActionTitleIDs returns title IDs from all of the profile's actions,
	// bounded by limit, for exclusion seeding.
	ActionTitleIDs(ctx context.Context, profileID int64, limit int) ([]int64, error)

	// ImpressionTitleIDsSince returns title IDs the profile was shown since
	// the given time, newest first, bounded by limit.
	ImpressionTitleIDsSince(ctx context.Context, profileID int64, since time.Time, limit int) ([]int64, error)

	// TrendingTitleIDs returns title IDs ranked by outbound-action count over
	// the window starting at since.
	TrendingTitleIDs(ctx context.Context, since time.Time, limit int) ([]int64, error)

	// InsertImpressions bulk-inserts impressions, silently ignoring duplicates
	// within the same profile/title/session/row. Returns the accepted count.
	InsertImpressions(ctx context.Context, impressions []*entity.Impression) (int64, error)

	// InsertAction persists one action event.
	InsertAction(ctx context.Context, action *entity.Action) error
}
