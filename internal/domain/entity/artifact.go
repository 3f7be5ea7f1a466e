package entity

import "time"

// DefaultRankerName is the artifact name the engine loads at serve time.
const DefaultRankerName = "ranker_v1"

// RankerArtifact is a versioned, swappable ranking-model blob produced by an
// external training job. The blob is opaque to the engine and deserialized
// through a pluggable model loader; FeatureSchema declares the exact column
// order the model expects (feature name -> column index).
type RankerArtifact struct {
	Name          string
	ModelBlob     []byte
	FeatureSchema map[string]int
	TrainedAt     time.Time
	Notes         string
}

// Validate checks the artifact invariants before a load is attempted.
func (a *RankerArtifact) Validate() error {
	if a.Name == "" {
		return &ValidationError{Field: "Name", Message: "is required"}
	}
	if len(a.ModelBlob) == 0 {
		return &ValidationError{Field: "ModelBlob", Message: "is required"}
	}
	if len(a.FeatureSchema) == 0 {
		return &ValidationError{Field: "FeatureSchema", Message: "is required"}
	}
	return nil
}
