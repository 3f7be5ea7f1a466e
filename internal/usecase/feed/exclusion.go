package feed

import (
	"context"
	"fmt"
)

// Exclusions is the single growing set of title IDs that must not appear in
// the current response: titles the profile already acted on, titles shown
// recently, and titles already placed in an earlier row. It only grows during
// one planning pass, in the fixed sequential row order.
type Exclusions struct {
	ids map[int64]struct{}
}

// NewExclusions returns an empty exclusion set.
func NewExclusions() *Exclusions {
	return &Exclusions{ids: make(map[int64]struct{})}
}

// Has reports whether the title is excluded.
func (e *Exclusions) Has(id int64) bool {
	_, ok := e.ids[id]
	return ok
}

// Add marks one title as excluded.
func (e *Exclusions) Add(id int64) {
	e.ids[id] = struct{}{}
}

// AddAll marks every given title as excluded.
func (e *Exclusions) AddAll(ids []int64) {
	for _, id := range ids {
		e.ids[id] = struct{}{}
	}
}

// Len returns the number of excluded titles.
func (e *Exclusions) Len() int {
	return len(e.ids)
}

// loadExclusions seeds the exclusion set from the profile's history before
// planning starts: all actions (bounded) plus impressions within the recent
// window, capped to bound memory and latency.
func (s *Service) loadExclusions(ctx context.Context, profileID int64) (*Exclusions, error) {
	excl := NewExclusions()

	actionIDs, err := s.Interactions.ActionTitleIDs(ctx, profileID, actionExcludeLimit)
	if err != nil {
		return nil, fmt.Errorf("action title ids: %w", err)
	}
	excl.AddAll(actionIDs)

	since := s.nowUTC().Add(-s.Config.ImpressionExcludeWindow)
	impressionIDs, err := s.Interactions.ImpressionTitleIDsSince(ctx, profileID, since, s.Config.ImpressionExcludeLimit)
	if err != nil {
		return nil, fmt.Errorf("impression title ids: %w", err)
	}
	excl.AddAll(impressionIDs)

	return excl, nil
}
