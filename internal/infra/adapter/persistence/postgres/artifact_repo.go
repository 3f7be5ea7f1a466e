package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// ArtifactRepo implements the ArtifactRepository interface for PostgreSQL.
// The feature schema is stored as JSONB alongside the opaque model blob.
type ArtifactRepo struct {
	db *sql.DB
}

// NewArtifactRepo creates a new PostgreSQL-based ArtifactRepository.
func NewArtifactRepo(db *sql.DB) repository.ArtifactRepository {
	return &ArtifactRepo{db: db}
}

// Latest returns the most recently trained artifact with the given name, or
// (nil, nil) when none exists.
func (repo *ArtifactRepo) Latest(ctx context.Context, name string) (*entity.RankerArtifact, error) {
	const query = `
SELECT name, model_blob, feature_schema, trained_at, notes
FROM reco_model_artifacts
WHERE name = $1
ORDER BY trained_at DESC
LIMIT 1`

	art := &entity.RankerArtifact{}
	var schema []byte
	err := repo.db.QueryRowContext(ctx, query, name).Scan(
		&art.Name,
		&art.ModelBlob,
		&schema,
		&art.TrainedAt,
		&art.Notes,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}

	if err := json.Unmarshal(schema, &art.FeatureSchema); err != nil {
		return nil, fmt.Errorf("Latest: decode feature schema: %w", err)
	}
	return art, nil
}
