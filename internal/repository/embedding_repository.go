package repository

import "context"

// EmbeddingRepository resolves title IDs to fixed-length vectors and reads the
// precomputed similarity table. Vectors and similarity edges are written by an
// external embedding job; this interface is read-only.
type EmbeddingRepository interface {
	// VectorFor returns the vector for one title under the given model, or
	// (nil, nil) when no vector exists.
	VectorFor(ctx context.Context, titleID int64, modelName string) ([]float32, error)

	// BulkVectors returns the vectors for the given titles in a single
	// batched lookup. Titles without a vector are absent from the map.
	BulkVectors(ctx context.Context, titleIDs []int64, modelName string) (map[int64][]float32, error)

	// SimilarTo returns target title IDs similar to any of the given source
	// titles, ordered by similarity score desc across all sources.
	SimilarTo(ctx context.Context, sourceTitleIDs []int64, modelName string, limit int) ([]int64, error)
}
