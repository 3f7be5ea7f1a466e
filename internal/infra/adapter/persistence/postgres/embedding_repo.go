package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/antoinerimano/Netflix/internal/repository"
)

// DefaultVectorTimeout bounds vector and similarity lookups; they sit on the
// serving path of the offline build and must not stall a whole sweep.
const DefaultVectorTimeout = 5 * time.Second

// EmbeddingRepo implements the EmbeddingRepository interface for PostgreSQL
// with pgvector columns and a precomputed similarity table.
type EmbeddingRepo struct {
	db *sql.DB
}

// NewEmbeddingRepo creates a new PostgreSQL-based EmbeddingRepository.
func NewEmbeddingRepo(db *sql.DB) repository.EmbeddingRepository {
	return &EmbeddingRepo{db: db}
}

// VectorFor returns the vector for one title under the given model, or
// (nil, nil) when no vector exists.
func (repo *EmbeddingRepo) VectorFor(ctx context.Context, titleID int64, modelName string) ([]float32, error) {
	const query = `
SELECT embedding FROM title_embeddings
WHERE title_id = $1 AND model = $2`

	var vector pgvector.Vector
	err := repo.db.QueryRowContext(ctx, query, titleID, modelName).Scan(&vector)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("VectorFor: %w", err)
	}
	return vector.Slice(), nil
}

// BulkVectors returns the vectors for the given titles in one query. Titles
// without a vector are absent from the map.
func (repo *EmbeddingRepo) BulkVectors(ctx context.Context, titleIDs []int64, modelName string) (map[int64][]float32, error) {
	if len(titleIDs) == 0 {
		return map[int64][]float32{}, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, DefaultVectorTimeout)
	defer cancel()

	const query = `
SELECT title_id, embedding FROM title_embeddings
WHERE title_id = ANY($1) AND model = $2`

	rows, err := repo.db.QueryContext(queryCtx, query, titleIDs, modelName)
	if err != nil {
		return nil, fmt.Errorf("BulkVectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64][]float32, len(titleIDs))
	for rows.Next() {
		var titleID int64
		var vector pgvector.Vector
		if err := rows.Scan(&titleID, &vector); err != nil {
			return nil, fmt.Errorf("BulkVectors: Scan: %w", err)
		}
		out[titleID] = vector.Slice()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("BulkVectors: %w", err)
	}
	return out, nil
}

// SimilarTo returns title IDs similar to any of the source titles from the
// precomputed similarity table, best score first. Source titles themselves
// are excluded.
func (repo *EmbeddingRepo) SimilarTo(ctx context.Context, sourceTitleIDs []int64, modelName string, limit int) ([]int64, error) {
	if len(sourceTitleIDs) == 0 {
		return nil, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, DefaultVectorTimeout)
	defer cancel()

	const query = `
SELECT target_title_id, MAX(score) AS best
FROM title_similars
WHERE source_title_id = ANY($1) AND model = $2 AND target_title_id <> ALL($1)
GROUP BY target_title_id
ORDER BY best DESC
LIMIT $3`

	rows, err := repo.db.QueryContext(queryCtx, query, sourceTitleIDs, modelName, limit)
	if err != nil {
		return nil, fmt.Errorf("SimilarTo: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("SimilarTo: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SimilarTo: %w", err)
	}
	return ids, nil
}
