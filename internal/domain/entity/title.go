// Package entity defines the core domain entities and validation logic for the
// recommendation engine. It contains the fundamental business objects such as
// Title, Profile, and the interaction events that drive feed personalization.
package entity

// TitleKind distinguishes movies from series in the unified catalog.
type TitleKind string

const (
	TitleKindMovie TitleKind = "movie"
	TitleKindTV    TitleKind = "tv"
)

// IsValid reports whether the title kind is one of the supported values.
func (k TitleKind) IsValid() bool {
	return k == TitleKindMovie || k == TitleKindTV
}

// Title represents a catalog item (movie or series). The catalog is owned by
// external ingestion pipelines; the engine only reads it.
//
// ReleaseDate and FirstAirDate carry "yyyy-mm-dd" strings as stored by the
// catalog; either may be empty when the date is unknown.
type Title struct {
	ID               int64
	Kind             TitleKind
	Name             string
	OriginalName     string
	OriginalLanguage string
	ReleaseDate      string
	FirstAirDate     string
	ReleaseYear      int
	Description      string
	Rating           string
	VoteAverage      float64
	VoteCount        int64
	Popularity       float64
	PrimaryGenre     string
	LandscapeImage   string
	TrailerClipURL   string
	Cast             []string
	Keywords         []string
}

// DisplayName returns the best available human-readable name for the title.
func (t *Title) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.OriginalName != "" {
		return t.OriginalName
	}
	return "this"
}

// Profile represents one viewing profile of a user account. Account and
// subscription management live outside this module.
type Profile struct {
	ID                 int64
	UserID             int64
	Name               string
	LanguagePreference string
}
