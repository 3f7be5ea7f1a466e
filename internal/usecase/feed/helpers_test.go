package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/infra/cache"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// errForced is the error stubs return when a test forces a failure.
var errForced = errors.New("forced failure")

// In-memory stubs for every repository the engine depends on. Each stub
// carries an err field to force failures per test.

type stubTitles struct {
	titles        map[int64]*entity.Title
	popular       []int64
	topRated      []int64
	recentByKind  map[entity.TitleKind][]int64
	popularByKind map[entity.TitleKind][]int64
	byLang        map[string][]int64
	hiddenGems    []int64
	err           error
}

func (s *stubTitles) PopularIDs(_ context.Context, limit int) ([]int64, error) {
	return capIDs(s.popular, limit), s.err
}

func (s *stubTitles) TopRatedIDs(_ context.Context, limit int) ([]int64, error) {
	return capIDs(s.topRated, limit), s.err
}

func (s *stubTitles) RecentIDsByKind(_ context.Context, kind entity.TitleKind, limit int) ([]int64, error) {
	return capIDs(s.recentByKind[kind], limit), s.err
}

func (s *stubTitles) PopularIDsByKind(_ context.Context, kind entity.TitleKind, limit int) ([]int64, error) {
	return capIDs(s.popularByKind[kind], limit), s.err
}

func (s *stubTitles) IDsByLanguage(_ context.Context, lang string, limit int) ([]int64, error) {
	return capIDs(s.byLang[lang], limit), s.err
}

func (s *stubTitles) HiddenGemIDs(_ context.Context, _ float64, _ int64, limit int) ([]int64, error) {
	return capIDs(s.hiddenGems, limit), s.err
}

func (s *stubTitles) FilterIDsByLanguage(_ context.Context, ids []int64, lang string, limit int) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []int64
	for _, id := range ids {
		if t, ok := s.titles[id]; ok && t.OriginalLanguage == lang {
			out = append(out, id)
		}
	}
	return capIDs(out, limit), nil
}

func (s *stubTitles) RankFieldsByIDs(_ context.Context, ids []int64) (map[int64]*entity.Title, error) {
	return s.subset(ids), s.err
}

func (s *stubTitles) DisplayByIDs(_ context.Context, ids []int64) (map[int64]*entity.Title, error) {
	return s.subset(ids), s.err
}

func (s *stubTitles) FeatureSourceByIDs(_ context.Context, ids []int64) (map[int64]*entity.Title, error) {
	return s.subset(ids), s.err
}

func (s *stubTitles) subset(ids []int64) map[int64]*entity.Title {
	out := make(map[int64]*entity.Title, len(ids))
	for _, id := range ids {
		if t, ok := s.titles[id]; ok {
			out[id] = t
		}
	}
	return out
}

type stubEmbeddings struct {
	vectors map[int64][]float32
	similar map[int64][]int64
	err     error
}

func (s *stubEmbeddings) VectorFor(_ context.Context, titleID int64, _ string) ([]float32, error) {
	return s.vectors[titleID], s.err
}

func (s *stubEmbeddings) BulkVectors(_ context.Context, titleIDs []int64, _ string) (map[int64][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[int64][]float32, len(titleIDs))
	for _, id := range titleIDs {
		if vec, ok := s.vectors[id]; ok {
			out[id] = vec
		}
	}
	return out, nil
}

func (s *stubEmbeddings) SimilarTo(_ context.Context, sourceTitleIDs []int64, _ string, limit int) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	seen := make(map[int64]struct{})
	var out []int64
	for _, src := range sourceTitleIDs {
		for _, id := range s.similar[src] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return capIDs(out, limit), nil
}

type stubInteractions struct {
	recentActionIDs []int64
	strongActions   []repository.ActionRef
	actionIDs       []int64
	impressionIDs   []int64
	trending        []int64

	insertedImpressions []*entity.Impression
	insertedActions     []*entity.Action
	err                 error
}

func (s *stubInteractions) RecentActionTitleIDs(_ context.Context, _ int64, limit int) ([]int64, error) {
	return capIDs(s.recentActionIDs, limit), s.err
}

func (s *stubInteractions) RecentStrongActions(_ context.Context, _ int64, limit int) ([]repository.ActionRef, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.strongActions) > limit {
		return s.strongActions[:limit], nil
	}
	return s.strongActions, nil
}

func (s *stubInteractions) ActionTitleIDs(_ context.Context, _ int64, limit int) ([]int64, error) {
	return capIDs(s.actionIDs, limit), s.err
}

func (s *stubInteractions) ImpressionTitleIDsSince(_ context.Context, _ int64, _ time.Time, limit int) ([]int64, error) {
	return capIDs(s.impressionIDs, limit), s.err
}

func (s *stubInteractions) TrendingTitleIDs(_ context.Context, _ time.Time, limit int) ([]int64, error) {
	return capIDs(s.trending, limit), s.err
}

func (s *stubInteractions) InsertImpressions(_ context.Context, impressions []*entity.Impression) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.insertedImpressions = append(s.insertedImpressions, impressions...)
	return int64(len(impressions)), nil
}

func (s *stubInteractions) InsertAction(_ context.Context, action *entity.Action) error {
	if s.err != nil {
		return s.err
	}
	s.insertedActions = append(s.insertedActions, action)
	return nil
}

type snapshotKey struct {
	profileID   int64
	algoVersion string
}

type stubSnapshots struct {
	snapshots map[snapshotKey]*entity.HomeSnapshot
	err       error
}

func newStubSnapshots() *stubSnapshots {
	return &stubSnapshots{snapshots: make(map[snapshotKey]*entity.HomeSnapshot)}
}

func (s *stubSnapshots) Latest(_ context.Context, profileID int64, algoVersion string) (*entity.HomeSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshots[snapshotKey{profileID, algoVersion}], nil
}

func (s *stubSnapshots) Upsert(_ context.Context, snapshot *entity.HomeSnapshot) error {
	if s.err != nil {
		return s.err
	}
	cp := *snapshot
	s.snapshots[snapshotKey{snapshot.ProfileID, snapshot.AlgoVersion}] = &cp
	return nil
}

type stubArtifacts struct {
	artifact *entity.RankerArtifact
	err      error
}

func (s *stubArtifacts) Latest(_ context.Context, _ string) (*entity.RankerArtifact, error) {
	return s.artifact, s.err
}

type stubProfiles struct {
	profiles map[int64]*entity.Profile
	err      error
}

func (s *stubProfiles) Get(_ context.Context, id int64) (*entity.Profile, error) {
	return s.profiles[id], s.err
}

func (s *stubProfiles) ListIDs(_ context.Context, limit int) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []int64
	for id := range s.profiles {
		out = append(out, id)
	}
	return capIDs(out, limit), nil
}

func (s *stubProfiles) ActiveIDsSince(ctx context.Context, _ time.Time, limit int) ([]int64, error) {
	return s.ListIDs(ctx, limit)
}

type stubIndex struct {
	valuesByTitle map[int64][]string
	idsByValue    map[string][]int64
	err           error
}

func (s *stubIndex) ValuesForTitles(_ context.Context, titleIDs []int64, limit int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, id := range titleIDs {
		out = append(out, s.valuesByTitle[id]...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubIndex) ResolveIDs(_ context.Context, value string, limit int) ([]int64, error) {
	return capIDs(s.idsByValue[value], limit), s.err
}

func capIDs(ids []int64, limit int) []int64 {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

// testFixture wires a Service over fresh stubs and a fixed clock.
type testFixture struct {
	svc          *Service
	titles       *stubTitles
	embeddings   *stubEmbeddings
	interactions *stubInteractions
	snapshots    *stubSnapshots
	artifacts    *stubArtifacts
	profiles     *stubProfiles
	now          time.Time
}

func newFixture() *testFixture {
	f := &testFixture{
		titles: &stubTitles{
			titles:        make(map[int64]*entity.Title),
			recentByKind:  make(map[entity.TitleKind][]int64),
			popularByKind: make(map[entity.TitleKind][]int64),
			byLang:        make(map[string][]int64),
		},
		embeddings:   &stubEmbeddings{vectors: make(map[int64][]float32), similar: make(map[int64][]int64)},
		interactions: &stubInteractions{},
		snapshots:    newStubSnapshots(),
		artifacts:    &stubArtifacts{},
		profiles:     &stubProfiles{profiles: make(map[int64]*entity.Profile)},
		now:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = &Service{
		Titles:       f.titles,
		Embeddings:   f.embeddings,
		Interactions: f.interactions,
		Snapshots:    f.snapshots,
		Artifacts:    f.artifacts,
		Profiles:     f.profiles,
		Cache:        cache.NewMemory(),
		Config:       DefaultConfig(),
		Now:          func() time.Time { return f.now },
	}
	return f
}

// addTitle registers a plainly-scorable catalog title and returns its ID.
func (f *testFixture) addTitle(id int64, kind entity.TitleKind, opts ...func(*entity.Title)) int64 {
	t := &entity.Title{
		ID:          id,
		Kind:        kind,
		Name:        fmt.Sprintf("Title %d", id),
		ReleaseDate: "2024-01-15",
		VoteAverage: 7.0,
		VoteCount:   500,
		Popularity:  50,
	}
	for _, opt := range opts {
		opt(t)
	}
	f.titles.titles[id] = t
	return id
}

func (f *testFixture) addProfile(id int64, lang string) *entity.Profile {
	p := &entity.Profile{ID: id, UserID: id, Name: fmt.Sprintf("profile-%d", id), LanguagePreference: lang}
	f.profiles.profiles[id] = p
	return p
}
