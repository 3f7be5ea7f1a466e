package repository

import "context"

// AttributeIndex is one indexed attribute dimension of the catalog (genre,
// production company, network, country, actor, keyword). Each dimension
// exposes the same two capabilities with an explicit schema, so no runtime
// introspection of record shapes is ever needed.
type AttributeIndex interface {
	// ValuesForTitles returns the normalized attribute values attached to the
	// given titles, one entry per (title, value) pair, bounded by limit.
	// Frequency counting over the result picks a profile's affinity values.
	ValuesForTitles(ctx context.Context, titleIDs []int64, limit int) ([]string, error)

	// ResolveIDs returns distinct title IDs carrying the given normalized
	// attribute value, bounded by limit.
	ResolveIDs(ctx context.Context, value string, limit int) ([]int64, error)
}

// AttributeIndexes groups the fixed set of attribute dimensions the planner
// derives affinity rows from. Any field may be nil when the deployment lacks
// that index; the planner skips nil dimensions.
type AttributeIndexes struct {
	Genre   AttributeIndex
	Company AttributeIndex
	Network AttributeIndex
	Country AttributeIndex
	Actor   AttributeIndex
	Keyword AttributeIndex
}
