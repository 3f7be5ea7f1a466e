// Package repository defines the persistence interfaces the recommendation
// engine depends on. Implementations live under internal/infra/adapter.
package repository

import (
	"context"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

// TitleRepository provides read access to the catalog. Every ID-list query is
// a candidate source for the planner; lists are ordered by the source's own
// relevance criterion and are globally cacheable (not profile-specific).
type TitleRepository interface {
	// PopularIDs returns title IDs ordered by popularity desc, vote average desc.
	PopularIDs(ctx context.Context, limit int) ([]int64, error)

	// TopRatedIDs returns title IDs ordered by vote average desc, vote count desc.
	TopRatedIDs(ctx context.Context, limit int) ([]int64, error)

	// RecentIDsByKind returns title IDs of the given kind ordered by release
	// (or first-air) date desc, skipping titles with no known date.
	RecentIDsByKind(ctx context.Context, kind entity.TitleKind, limit int) ([]int64, error)

	// PopularIDsByKind returns title IDs of the given kind ordered by
	// popularity desc, vote average desc.
	PopularIDsByKind(ctx context.Context, kind entity.TitleKind, limit int) ([]int64, error)

	// IDsByLanguage returns title IDs in the given original language ordered
	// by popularity desc, vote average desc.
	IDsByLanguage(ctx context.Context, lang string, limit int) ([]int64, error)

	// HiddenGemIDs returns well-rated titles with moderate vote counts,
	// ordered by popularity asc (to surface under-exposed items) then vote
	// average desc.
	HiddenGemIDs(ctx context.Context, minVoteAverage float64, minVoteCount int64, limit int) ([]int64, error)

	// FilterIDsByLanguage keeps only the given IDs whose original language
	// matches lang, reordered by popularity desc, vote average desc.
	FilterIDsByLanguage(ctx context.Context, ids []int64, lang string, limit int) ([]int64, error)

	// RankFieldsByIDs returns the titles for the given IDs with the fields the
	// ranker needs populated. Missing IDs are silently absent from the map.
	RankFieldsByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Title, error)

	// DisplayByIDs returns the titles for the given IDs with the display
	// projection fields populated.
	DisplayByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Title, error)

	// FeatureSourceByIDs returns the titles for the given IDs with the
	// taxonomy fields (primary genre, cast, keywords) populated.
	FeatureSourceByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Title, error)
}
