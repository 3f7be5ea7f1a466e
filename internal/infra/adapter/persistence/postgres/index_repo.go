package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/antoinerimano/Netflix/internal/repository"
)

// NewAttributeIndexes wires every attribute dimension against its PostgreSQL
// table. Genre reads the denormalized column on titles; the other dimensions
// read (title_id, value) index tables.
func NewAttributeIndexes(db *sql.DB) repository.AttributeIndexes {
	return repository.AttributeIndexes{
		Genre:   &genreIndex{db: db},
		Company: &attributeIndex{db: db, table: "title_companies"},
		Network: &attributeIndex{db: db, table: "title_networks"},
		Country: &attributeIndex{db: db, table: "title_countries"},
		Actor:   &attributeIndex{db: db, table: "title_actors"},
		Keyword: &attributeIndex{db: db, table: "title_keywords"},
	}
}

// attributeIndex serves one (title_id, value) index table. The table name is
// fixed at construction, never caller-supplied.
type attributeIndex struct {
	db    *sql.DB
	table string
}

// ValuesForTitles returns the values attached to the given titles, one entry
// per (title, value) pair.
func (idx *attributeIndex) ValuesForTitles(ctx context.Context, titleIDs []int64, limit int) ([]string, error) {
	if len(titleIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT value FROM %s WHERE title_id = ANY($1) LIMIT $2`, idx.table)

	values, err := queryStrings(ctx, idx.db, query, titleIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("ValuesForTitles(%s): %w", idx.table, err)
	}
	return values, nil
}

// ResolveIDs returns distinct title IDs carrying the value, most popular
// first.
func (idx *attributeIndex) ResolveIDs(ctx context.Context, value string, limit int) ([]int64, error) {
	query := fmt.Sprintf(`
SELECT t.id
FROM titles t
JOIN %s a ON a.title_id = t.id
WHERE a.value = $1
ORDER BY t.popularity DESC, t.vote_average DESC
LIMIT $2`, idx.table)

	ids, err := queryIndexIDs(ctx, idx.db, query, value, limit)
	if err != nil {
		return nil, fmt.Errorf("ResolveIDs(%s): %w", idx.table, err)
	}
	return ids, nil
}

// genreIndex serves the genre dimension from the denormalized primary_genre
// column on titles.
type genreIndex struct {
	db *sql.DB
}

func (idx *genreIndex) ValuesForTitles(ctx context.Context, titleIDs []int64, limit int) ([]string, error) {
	if len(titleIDs) == 0 {
		return nil, nil
	}

	const query = `
SELECT LOWER(primary_genre) FROM titles
WHERE id = ANY($1) AND primary_genre <> ''
LIMIT $2`

	values, err := queryStrings(ctx, idx.db, query, titleIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("ValuesForTitles(genre): %w", err)
	}
	return values, nil
}

func (idx *genreIndex) ResolveIDs(ctx context.Context, value string, limit int) ([]int64, error) {
	const query = `
SELECT id FROM titles
WHERE LOWER(primary_genre) = $1
ORDER BY popularity DESC, vote_average DESC
LIMIT $2`

	ids, err := queryIndexIDs(ctx, idx.db, query, value, limit)
	if err != nil {
		return nil, fmt.Errorf("ResolveIDs(genre): %w", err)
	}
	return ids, nil
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func queryIndexIDs(ctx context.Context, db *sql.DB, query string, args ...any) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
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
