package repository

import (
	"context"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
)

// ArtifactRepository reads versioned ranking-model blobs written by the
// external training job.
type ArtifactRepository interface {
	// Latest returns the most recently trained artifact with the given name,
	// or (nil, nil) when none exists.
	Latest(ctx context.Context, name string) (*entity.RankerArtifact, error)
}
