package entity

import "time"

// ActionType enumerates the explicit user actions the engine accepts.
// "outbound" (click-through to playback) is the primary relevance label.
type ActionType string

const (
	ActionClick         ActionType = "click"
	ActionOutbound      ActionType = "outbound"
	ActionLike          ActionType = "like"
	ActionDislike       ActionType = "dislike"
	ActionAddToList     ActionType = "add_to_list"
	ActionNotInterested ActionType = "not_interested"
	ActionSearchClick   ActionType = "search_click"
)

// IsValid reports whether the action type is part of the fixed enum.
func (a ActionType) IsValid() bool {
	switch a {
	case ActionClick, ActionOutbound, ActionLike, ActionDislike,
		ActionAddToList, ActionNotInterested, ActionSearchClick:
		return true
	}
	return false
}

// Action is an explicit interaction event. Actions drive profile-vector
// construction, trending computation, and exclusion.
type Action struct {
	ID        int64
	ProfileID int64
	TitleID   int64
	Action    ActionType
	SessionID string
	Provider  string
	CreatedAt time.Time
}

// Validate checks the action invariants before persistence.
func (a *Action) Validate() error {
	if a.ProfileID <= 0 {
		return &ValidationError{Field: "ProfileID", Message: "must be positive"}
	}
	if a.TitleID <= 0 {
		return &ValidationError{Field: "TitleID", Message: "must be positive"}
	}
	if !a.Action.IsValid() {
		return &ValidationError{Field: "Action", Message: "unknown action type"}
	}
	if a.SessionID == "" {
		return &ValidationError{Field: "SessionID", Message: "is required"}
	}
	return nil
}

// Impression records that a title was shown to a profile in a given row and
// position. Impressions drive exclusion and serve as negatives when training
// the ranker; they never feed the profile vector.
type Impression struct {
	ID        int64
	ProfileID int64
	TitleID   int64
	SessionID string
	RowType   string
	Position  int
	Device    string
	Country   string
	CreatedAt time.Time
}

// Validate checks the impression invariants before persistence.
func (i *Impression) Validate() error {
	if i.ProfileID <= 0 {
		return &ValidationError{Field: "ProfileID", Message: "must be positive"}
	}
	if i.TitleID <= 0 {
		return &ValidationError{Field: "TitleID", Message: "must be positive"}
	}
	if i.SessionID == "" {
		return &ValidationError{Field: "SessionID", Message: "is required"}
	}
	if i.Position < 0 {
		return &ValidationError{Field: "Position", Message: "must not be negative"}
	}
	return nil
}
