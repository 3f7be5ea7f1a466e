package entity

import "time"

// DefaultEmbeddingModel is the model version the engine reads vectors for.
// Vectors are produced by an external embedding job, one per title per model.
const DefaultEmbeddingModel = "all-MiniLM-L6-v2"

// TitleEmbedding holds the fixed-length vector for one title under one model
// version. The engine never writes embeddings; the external job owns them.
type TitleEmbedding struct {
	TitleID   int64
	ModelName string
	Dim       int
	Vector    []float32
	UpdatedAt time.Time
}

// Validate checks the embedding invariants before use.
// Returns a ValidationError describing the first violated field.
func (e *TitleEmbedding) Validate() error {
	if e.TitleID <= 0 {
		return &ValidationError{Field: "TitleID", Message: "must be positive"}
	}
	if e.ModelName == "" {
		return &ValidationError{Field: "ModelName", Message: "is required"}
	}
	if e.Dim <= 0 {
		return &ValidationError{Field: "Dim", Message: "must be positive"}
	}
	if len(e.Vector) != e.Dim {
		return &ValidationError{Field: "Vector", Message: "length must equal Dim"}
	}
	return nil
}

// SimilarTitle is one edge of the precomputed similarity table: a target title
// and its similarity score relative to some source title.
type SimilarTitle struct {
	TitleID int64
	Score   float64
}
