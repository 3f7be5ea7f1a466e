package repository

import (
	"context"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

// ProfileRepository provides read access to viewing profiles. Profile
// management itself lives outside this module.
type ProfileRepository interface {
	// Get returns the profile, or (nil, nil) when it does not exist.
	Get(ctx context.Context, id int64) (*entity.Profile, error)

	// ListIDs returns profile IDs in ascending order, bounded by limit.
	ListIDs(ctx context.Context, limit int) ([]int64, error)

	// ActiveIDsSince returns IDs of profiles with at least one action since
	// the cutoff, ascending, bounded by limit.
	ActiveIDsSince(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
}
