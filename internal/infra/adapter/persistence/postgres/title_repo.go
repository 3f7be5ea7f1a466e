// Package postgres implements the repository interfaces on PostgreSQL using
// database/sql with the pgx stdlib driver. Embedding columns use pgvector.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// TitleRepo implements the TitleRepository interface for PostgreSQL.
type TitleRepo struct {
	db *sql.DB
}

// NewTitleRepo creates a new PostgreSQL-based TitleRepository.
func NewTitleRepo(db *sql.DB) repository.TitleRepository {
	return &TitleRepo{db: db}
}

// PopularIDs returns title IDs ordered by popularity desc, vote average desc.
func (repo *TitleRepo) PopularIDs(ctx context.Context, limit int) ([]int64, error) {
	const query = `
SELECT id FROM titles
ORDER BY popularity DESC, vote_average DESC
LIMIT $1`

	ids, err := repo.queryIDs(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("PopularIDs: %w", err)
	}
	return ids, nil
}

// TopRatedIDs returns title IDs ordered by vote average desc, vote count desc.
func (repo *TitleRepo) TopRatedIDs(ctx context.Context, limit int) ([]int64, error) {
	const query = `
SELECT id FROM titles
ORDER BY vote_average DESC, vote_count DESC
LIMIT $1`

	ids, err := repo.queryIDs(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("TopRatedIDs: %w", err)
	}
	return ids, nil
}

// RecentIDsByKind returns title IDs of one kind ordered by release (or
// first-air) date desc. Titles without any known date are skipped.
func (repo *TitleRepo) RecentIDsByKind(ctx context.Context, kind entity.TitleKind, limit int) ([]int64, error) {
	const query = `
SELECT id FROM titles
WHERE kind = $1 AND COALESCE(release_date, first_air_date) IS NOT NULL
ORDER BY COALESCE(release_date, first_air_date) DESC
LIMIT $2`

	ids, err := repo.queryIDs(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("RecentIDsByKind: %w", err)
	}
	return ids, nil
}

// PopularIDsByKind returns title IDs of one kind ordered by popularity desc,
// vote average desc.
func (repo *TitleRepo) PopularIDsByKind(ctx context.Context, kind entity.TitleKind, limit int) ([]int64, error) {
	const query = `
SELECT id FROM titles
WHERE kind = $1
ORDER BY popularity DESC, vote_average DESC
LIMIT $2`

	ids, err := repo.queryIDs(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("PopularIDsByKind: %w", err)
	}
	return ids, nil
}

// IDsByLanguage returns title IDs in the given original language ordered by
// popularity desc, vote average desc.
func (repo *TitleRepo) IDsByLanguage(ctx context.Context, lang string, limit int) ([]int64, error) {
	const query = `
SELECT id FROM titles
WHERE original_language = $1
ORDER BY popularity DESC, vote_average DESC
LIMIT $2`

	ids, err := repo.queryIDs(ctx, query, lang, limit)
	if err != nil {
		return nil, fmt.Errorf("IDsByLanguage: %w", err)
	}
	return ids, nil
}

// HiddenGemIDs returns well-rated titles ordered by popularity asc so the
// least exposed ones surface first.
func (repo *TitleRepo) HiddenGemIDs(ctx context.Context, minVoteAverage float64, minVoteCount int64, limit int) ([]int64, error) {
	const query = `
SELECT id FROM titles
WHERE vote_average >= $1 AND vote_count >= $2
ORDER BY popularity ASC, vote_average DESC
LIMIT $3`

	ids, err := repo.queryIDs(ctx, query, minVoteAverage, minVoteCount, limit)
	if err != nil {
		return nil, fmt.Errorf("HiddenGemIDs: %w", err)
	}
	return ids, nil
}

// FilterIDsByLanguage keeps only the given IDs in the given language,
// reordered by popularity desc, vote average desc.
func (repo *TitleRepo) FilterIDsByLanguage(ctx context.Context, ids []int64, lang string, limit int) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const query = `
SELECT id FROM titles
WHERE id = ANY($1) AND original_language = $2
ORDER BY popularity DESC, vote_average DESC
LIMIT $3`

	out, err := repo.queryIDs(ctx, query, ids, lang, limit)
	if err != nil {
		return nil, fmt.Errorf("FilterIDsByLanguage: %w", err)
	}
	return out, nil
}

// RankFieldsByIDs returns the titles with only the ranker's feature source
// fields populated.
func (repo *TitleRepo) RankFieldsByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Title, error) {
	if len(ids) == 0 {
		return map[int64]*entity.Title{}, nil
	}

	const query = `
SELECT id, kind, original_language, release_date, first_air_date, vote_average, vote_count, popularity
FROM titles
WHERE id = ANY($1)`

	rows, err := repo.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("RankFieldsByIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]*entity.Title, len(ids))
	for rows.Next() {
		t := &entity.Title{}
		var kind string
		var releaseDate, firstAirDate sql.NullTime
		err := rows.Scan(
			&t.ID,
			&kind,
			&t.OriginalLanguage,
			&releaseDate,
			&firstAirDate,
			&t.VoteAverage,
			&t.VoteCount,
			&t.Popularity,
		)
		if err != nil {
			return nil, fmt.Errorf("RankFieldsByIDs: Scan: %w", err)
		}
		t.Kind = entity.TitleKind(kind)
		t.ReleaseDate = formatDate(releaseDate)
		t.FirstAirDate = formatDate(firstAirDate)
		out[t.ID] = t
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RankFieldsByIDs: %w", err)
	}

	return out, nil
}

// DisplayByIDs returns the titles with the display projection fields
// populated.
func (repo *TitleRepo) DisplayByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Title, error) {
	if len(ids) == 0 {
		return map[int64]*entity.Title{}, nil
	}

	const query = `
SELECT id, kind, name, original_name, release_year, rating, description, landscape_image, trailer_clip_url
FROM titles
WHERE id = ANY($1)`

	rows, err := repo.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("DisplayByIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]*entity.Title, len(ids))
	for rows.Next() {
		t := &entity.Title{}
		var kind string
		var releaseYear sql.NullInt64
		err := rows.Scan(
			&t.ID,
			&kind,
			&t.Name,
			&t.OriginalName,
			&releaseYear,
			&t.Rating,
			&t.Description,
			&t.LandscapeImage,
			&t.TrailerClipURL,
		)
		if err != nil {
			return nil, fmt.Errorf("DisplayByIDs: Scan: %w", err)
		}
		t.Kind = entity.TitleKind(kind)
		t.ReleaseYear = int(releaseYear.Int64)
		out[t.ID] = t
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("DisplayByIDs: %w", err)
	}

	return out, nil
}

// FeatureSourceByIDs returns the titles with the taxonomy fields populated:
// primary genre plus cast and keyword lists from the attribute index tables.
func (repo *TitleRepo) FeatureSourceByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Title, error) {
	if len(ids) == 0 {
		return map[int64]*entity.Title{}, nil
	}

	const query = `
SELECT id, kind, primary_genre
FROM titles
WHERE id = ANY($1)`

	rows, err := repo.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("FeatureSourceByIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]*entity.Title, len(ids))
	for rows.Next() {
		t := &entity.Title{}
		var kind string
		if err := rows.Scan(&t.ID, &kind, &t.PrimaryGenre); err != nil {
			return nil, fmt.Errorf("FeatureSourceByIDs: Scan: %w", err)
		}
		t.Kind = entity.TitleKind(kind)
		out[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FeatureSourceByIDs: %w", err)
	}

	if err := repo.attachValues(ctx, out, "title_actors", func(t *entity.Title, v string) {
		t.Cast = append(t.Cast, v)
	}); err != nil {
		return nil, fmt.Errorf("FeatureSourceByIDs: %w", err)
	}
	if err := repo.attachValues(ctx, out, "title_keywords", func(t *entity.Title, v string) {
		t.Keywords = append(t.Keywords, v)
	}); err != nil {
		return nil, fmt.Errorf("FeatureSourceByIDs: %w", err)
	}

	return out, nil
}

// attachValues folds one attribute table's (title_id, value) pairs into the
// already-loaded titles. The table name comes from a fixed internal set,
// never from input.
func (repo *TitleRepo) attachValues(ctx context.Context, titles map[int64]*entity.Title, table string, attach func(*entity.Title, string)) error {
	ids := make([]int64, 0, len(titles))
	for id := range titles {
		ids = append(ids, id)
	}

	query := fmt.Sprintf(`SELECT title_id, value FROM %s WHERE title_id = ANY($1) ORDER BY title_id, value`, table)

	rows, err := repo.db.QueryContext(ctx, query, ids)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var titleID int64
		var value string
		if err := rows.Scan(&titleID, &value); err != nil {
			return fmt.Errorf("Scan: %w", err)
		}
		if t, ok := titles[titleID]; ok {
			attach(t, value)
		}
	}
	return rows.Err()
}

// queryIDs runs a query whose result is a single int64 column.
func (repo *TitleRepo) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
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

// formatDate renders a nullable date column as the catalog's "yyyy-mm-dd"
// string, empty when NULL.
func formatDate(d sql.NullTime) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(time.DateOnly)
}
