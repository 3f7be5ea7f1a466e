// Package feed composes personalized home feeds: it plans candidate rows from
// many sources under a wall-clock budget, scores them with a swappable ranking
// model (or a deterministic heuristic when none is loaded), enforces
// cross-row deduplication, and serves precomputed snapshots through a
// fallback chain.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/infra/cache"
	"github.com/antoinerimano/Netflix/internal/observability/metrics"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// seedSnapshotTTL is the nominal freshness of a seed snapshot. Serving
// ignores seed expiry (a stale seed beats an empty screen); the TTL only
// drives rebuild scheduling.
const seedSnapshotTTL = 6 * time.Hour

// Service is the feed composition engine. All dependencies are exported
// fields so tests can swap any of them.
type Service struct {
	Titles       repository.TitleRepository
	Embeddings   repository.EmbeddingRepository
	Interactions repository.InteractionRepository
	Snapshots    repository.SnapshotRepository
	Artifacts    repository.ArtifactRepository
	Profiles     repository.ProfileRepository
	Indexes      repository.AttributeIndexes
	Cache        cache.Cache
	Logger       *slog.Logger
	Config       Config

	// Now is the injectable clock. Nil means time.Now.
	Now func() time.Time
}

func (s *Service) nowUTC() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// selectedRow is a ranked row before display resolution.
type selectedRow struct {
	key   string
	label string
	ids   []int64
}

// BuildHomePayload composes the full personalized payload for one profile:
// plan rows under the budget, rank each sequentially while growing the
// exclusion set, then resolve display summaries. Returns the payload and the
// planning outcome; an error means the build is unusable and the caller
// should record the failure instead of persisting an empty success.
func (s *Service) BuildHomePayload(ctx context.Context, profile *entity.Profile) (*entity.HomePayload, PlanOutcome, error) {
	start := time.Now()

	model := s.LoadRanker(ctx)

	profileVec, err := s.BuildProfileVector(ctx, profile.ID)
	if err != nil {
		// Without a profile vector the cosine feature degrades to 0; the
		// build itself proceeds.
		s.log().Warn("profile vector build failed",
			slog.Int64("profile_id", profile.ID),
			slog.Any("error", err))
		profileVec = nil
	}

	recentIDs, err := s.Interactions.RecentActionTitleIDs(ctx, profile.ID, recentActionsLimit)
	if err != nil {
		return nil, "", fmt.Errorf("recent actions: %w", err)
	}

	exclusions, err := s.loadExclusions(ctx, profile.ID)
	if err != nil {
		return nil, "", fmt.Errorf("load exclusions: %w", err)
	}

	p := newPlanner(s.nowUTC, s.Config.PlanBudget, s.Config.MaxPlannedRows)
	s.planRows(ctx, profile, recentIDs, p)
	outcome := p.finish()

	titles, err := s.Titles.RankFieldsByIDs(ctx, plannedCandidateIDs(p.rows))
	if err != nil {
		return nil, outcome, fmt.Errorf("rank fields: %w", err)
	}

	rc := &rankContext{
		model:      model,
		profileVec: profileVec,
		language:   profile.LanguagePreference,
		exclusions: exclusions,
		titles:     titles,
		vectors:    make(map[int64][]float32),
		vectorSeen: make(map[int64]bool),
	}

	selected := make([]selectedRow, 0, len(p.rows))
	for _, row := range p.rows {
		picked := s.rankAndSelect(ctx, rc, row.Key, row.CandidateIDs, row.Target)
		if len(picked) == 0 {
			continue
		}
		// Everything placed in this row is off-limits for later rows.
		exclusions.AddAll(picked)
		selected = append(selected, selectedRow{key: row.Key, label: row.Label, ids: picked})
	}

	payload, err := s.assemblePayload(ctx, selected)
	if err != nil {
		return nil, outcome, err
	}

	metrics.RecordFeedPlan(string(outcome), time.Since(start), len(payload.Rows))
	s.log().Info("home payload built",
		slog.Int64("profile_id", profile.ID),
		slog.String("outcome", string(outcome)),
		slog.Int("rows", len(payload.Rows)),
		slog.Duration("took", time.Since(start)))
	return payload, outcome, nil
}

// BuildSeedPayload composes the non-personalized payload used as the
// long-lived fallback: popular, language, top-rated, and trending rows taken
// in source order without model ranking. Rows still deduplicate against each
// other. A single failing source drops only its row.
func (s *Service) BuildSeedPayload(ctx context.Context, profile *entity.Profile) (*entity.HomePayload, error) {
	type seedSource struct {
		key   string
		label string
		fetch func(context.Context) ([]int64, error)
	}

	sources := []seedSource{
		{"popular", "Popular right now", func(ctx context.Context) ([]int64, error) {
			return cache.GetOrBuildIDs(ctx, s.Cache, cache.GlobalCandidatesKey("popular"), s.Config.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
				return s.Titles.PopularIDs(ctx, globalCandidateLimit)
			})
		}},
	}
	if lang := profile.LanguagePreference; lang != "" {
		sources = append(sources, seedSource{"in_lang", "In " + strings.ToUpper(lang), func(ctx context.Context) ([]int64, error) {
			return cache.GetOrBuildIDs(ctx, s.Cache, cache.GlobalCandidatesKey("in_lang:"+lang), s.Config.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
				return s.Titles.IDsByLanguage(ctx, lang, globalCandidateLimit)
			})
		}})
	}
	sources = append(sources,
		seedSource{"top_rated", "Top rated", func(ctx context.Context) ([]int64, error) {
			return cache.GetOrBuildIDs(ctx, s.Cache, cache.GlobalCandidatesKey("top_rated"), s.Config.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
				return s.Titles.TopRatedIDs(ctx, globalCandidateLimit)
			})
		}},
		seedSource{"trending", "Trending", s.trendingIDs},
	)

	seen := NewExclusions()
	selected := make([]selectedRow, 0, len(sources))
	for _, src := range sources {
		ids, err := src.fetch(ctx)
		if err != nil {
			s.log().Warn("seed source failed, dropping row",
				slog.String("row_key", src.key),
				slog.Any("error", err))
			continue
		}
		take := make([]int64, 0, s.Config.RowTargetSize)
		for _, id := range ids {
			if seen.Has(id) {
				continue
			}
			seen.Add(id)
			take = append(take, id)
			if len(take) >= s.Config.RowTargetSize {
				break
			}
		}
		if len(take) < s.Config.MinRowSize {
			continue
		}
		selected = append(selected, selectedRow{key: src.key, label: src.label, ids: take})
	}

	return s.assemblePayload(ctx, selected)
}

// UpsertSeedSnapshot builds and persists the seed snapshot for one profile.
// Intended to run once at profile creation and on demand thereafter.
func (s *Service) UpsertSeedSnapshot(ctx context.Context, profileID int64) error {
	start := time.Now()

	profile, err := s.Profiles.Get(ctx, profileID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	payload, err := s.BuildSeedPayload(ctx, profile)
	if err != nil {
		metrics.RecordSnapshotBuild(entity.AlgoVersionSeed, false, time.Since(start))
		return fmt.Errorf("build seed payload: %w", err)
	}

	now := s.nowUTC()
	err = s.Snapshots.Upsert(ctx, &entity.HomeSnapshot{
		ProfileID:   profileID,
		AlgoVersion: entity.AlgoVersionSeed,
		Payload:     *payload,
		BuiltAt:     now,
		ExpiresAt:   now.Add(seedSnapshotTTL),
	})
	metrics.RecordSnapshotBuild(entity.AlgoVersionSeed, err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("upsert seed snapshot: %w", err)
	}
	return nil
}

// Serve returns the best available payload for the profile through the
// fallback chain: unexpired live snapshot, then seed snapshot regardless of
// expiry, then an explicit empty payload. Serving never composes a feed
// inline.
func (s *Service) Serve(ctx context.Context, profileID int64) (*entity.HomePayload, string, error) {
	if profileID <= 0 {
		return nil, "", ErrInvalidProfileID
	}
	profile, err := s.Profiles.Get(ctx, profileID)
	if err != nil {
		return nil, "", fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, "", ErrProfileNotFound
	}

	now := s.nowUTC()

	live, err := s.Snapshots.Latest(ctx, profileID, entity.AlgoVersionLive)
	if err != nil {
		return nil, "", fmt.Errorf("live snapshot: %w", err)
	}
	if live.IsServable(now, true) {
		metrics.RecordFeedServe(entity.ServeModeSnapshot)
		return &live.Payload, entity.ServeModeSnapshot, nil
	}

	seed, err := s.Snapshots.Latest(ctx, profileID, entity.AlgoVersionSeed)
	if err != nil {
		return nil, "", fmt.Errorf("seed snapshot: %w", err)
	}
	if seed.IsServable(now, false) {
		metrics.RecordFeedServe(entity.ServeModeSeedSnapshot)
		return &seed.Payload, entity.ServeModeSeedSnapshot, nil
	}

	metrics.RecordFeedServe(entity.ServeModeNoSnapshotYet)
	return &entity.HomePayload{Rows: []entity.HomeRow{}}, entity.ServeModeNoSnapshotYet, nil
}

// assemblePayload resolves display summaries for the selected rows and drops
// rows that fall below the viability floor after resolution.
func (s *Service) assemblePayload(ctx context.Context, rows []selectedRow) (*entity.HomePayload, error) {
	all := make([]int64, 0, len(rows)*s.Config.RowTargetSize)
	for _, row := range rows {
		all = append(all, row.ids...)
	}
	summaries, err := s.summariesByIDs(ctx, all)
	if err != nil {
		return nil, err
	}

	payload := &entity.HomePayload{Rows: make([]entity.HomeRow, 0, len(rows))}
	for _, row := range rows {
		items := make([]entity.ItemSummary, 0, len(row.ids))
		for _, id := range row.ids {
			if sm, ok := summaries[id]; ok {
				items = append(items, sm)
			}
		}
		if len(items) < s.Config.MinRowSize {
			continue
		}
		payload.Rows = append(payload.Rows, entity.HomeRow{RowKey: row.key, Title: row.label, Items: items})
	}
	return payload, nil
}

// summariesByIDs resolves ItemSummary projections, serving from the per-title
// summary cache and batch-loading only the misses.
func (s *Service) summariesByIDs(ctx context.Context, ids []int64) (map[int64]entity.ItemSummary, error) {
	out := make(map[int64]entity.ItemSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.TitleSummaryKey(id))
	}
	hits := s.Cache.GetMany(ctx, keys)

	missing := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		raw, ok := hits[cache.TitleSummaryKey(id)]
		if ok {
			var sm entity.ItemSummary
			if err := json.Unmarshal(raw, &sm); err == nil {
				out[id] = sm
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	titles, err := s.Titles.DisplayByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("display fields: %w", err)
	}
	store := make(map[string][]byte, len(titles))
	for id, t := range titles {
		sm := summaryOf(t)
		out[id] = sm
		if raw, err := json.Marshal(sm); err == nil {
			store[cache.TitleSummaryKey(id)] = raw
		}
	}
	if len(store) > 0 {
		s.Cache.SetMany(ctx, store, s.Config.SummaryTTL)
	}
	return out, nil
}

// plannedCandidateIDs flattens the plan into the unique candidate ID set, in
// first-appearance order.
func plannedCandidateIDs(rows []rowPlan) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, row := range rows {
		for _, id := range row.CandidateIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func summaryOf(t *entity.Title) entity.ItemSummary {
	return entity.ItemSummary{
		ID:          t.ID,
		Kind:        t.Kind,
		Title:       t.DisplayName(),
		Image:       t.LandscapeImage,
		Year:        t.ReleaseYear,
		Rating:      t.Rating,
		Description: t.Description,
		ClipURL:     t.TrailerClipURL,
	}
}
