package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/infra/cache"
	"github.com/antoinerimano/Netflix/internal/repository"
)

// PlanOutcome is the terminal state of one planning pass.
type PlanOutcome string

const (
	// PlanDone means every source was evaluated within the limits.
	PlanDone PlanOutcome = "done"
	// PlanBudgetExceeded means the wall-clock budget ran out; only rows
	// planned before the cutoff proceed to ranking.
	PlanBudgetExceeded PlanOutcome = "budget_exceeded"
	// PlanRowCapReached means the maximum row count was hit.
	PlanRowCapReached PlanOutcome = "row_cap_reached"
)

// rowPlan is one candidate row before ranking: an ordered ID list under a
// stable key and display label.
type rowPlan struct {
	Key          string
	Label        string
	CandidateIDs []int64
	Target       int
}

// planner accumulates candidate rows under a wall-clock deadline and a row
// cap. Both limits are checked before each source runs, so a stopped plan
// never pays for another source query; a single slow source can still overrun
// the budget by its own latency.
type planner struct {
	deadline time.Time
	maxRows  int
	rows     []rowPlan
	outcome  PlanOutcome
	now      func() time.Time
}

func newPlanner(now func() time.Time, budget time.Duration, maxRows int) *planner {
	return &planner{
		deadline: now().Add(budget),
		maxRows:  maxRows,
		now:      now,
	}
}

// admit reports whether another source may run, recording the stop reason
// otherwise. Once stopped, a planner stays stopped.
func (p *planner) admit() bool {
	if p.outcome != "" {
		return false
	}
	if !p.now().Before(p.deadline) {
		p.outcome = PlanBudgetExceeded
		return false
	}
	if len(p.rows) >= p.maxRows {
		p.outcome = PlanRowCapReached
		return false
	}
	return true
}

func (p *planner) add(key, label string, ids []int64, target int) {
	p.rows = append(p.rows, rowPlan{Key: key, Label: label, CandidateIDs: ids, Target: target})
}

// finish resolves the terminal outcome.
func (p *planner) finish() PlanOutcome {
	if p.outcome == "" {
		p.outcome = PlanDone
	}
	return p.outcome
}

// addRow runs one candidate source behind the planner's limits. A source
// failure drops only that row: the error is logged and planning continues.
func (s *Service) addRow(ctx context.Context, p *planner, key, label string, fetch func(context.Context) ([]int64, error)) {
	if !p.admit() {
		return
	}
	ids, err := fetch(ctx)
	if err != nil {
		s.log().Warn("candidate source failed, dropping row",
			slog.String("row_key", key),
			slog.Any("error", err))
		return
	}
	if len(ids) == 0 {
		return
	}
	p.add(key, label, ids, s.Config.RowTargetSize)
}

// addCachedRow is addRow over a globally-shared, cache-aside ID list.
func (s *Service) addCachedRow(ctx context.Context, p *planner, key, label, source string, ttl time.Duration, build func(context.Context) ([]int64, error)) {
	s.addRow(ctx, p, key, label, func(ctx context.Context) ([]int64, error) {
		return cache.GetOrBuildIDs(ctx, s.Cache, cache.GlobalCandidatesKey(source), ttl, build)
	})
}

// planRows assembles the candidate rows for one profile in fixed priority
// order: cold-start rows when there is no history, personalized rows when
// there is, then the always-present supplemental rows.
func (s *Service) planRows(ctx context.Context, profile *entity.Profile, recentActionIDs []int64, p *planner) {
	if len(recentActionIDs) == 0 {
		s.planColdStartRows(ctx, profile, p)
	} else {
		s.planPersonalizedRows(ctx, profile, recentActionIDs, p)
	}
	s.planSupplementalRows(ctx, profile, p)
}

func (s *Service) planColdStartRows(ctx context.Context, profile *entity.Profile, p *planner) {
	cfg := s.Config

	s.addCachedRow(ctx, p, "popular", "Popular right now", "popular", cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
		return s.Titles.PopularIDs(ctx, globalCandidateLimit)
	})
	s.addCachedRow(ctx, p, "top_rated", "Top rated", "top_rated", cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
		return s.Titles.TopRatedIDs(ctx, globalCandidateLimit)
	})
	s.addCachedRow(ctx, p, "new_movies", "New movies", "new_movies", cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
		return s.Titles.RecentIDsByKind(ctx, entity.TitleKindMovie, globalCandidateLimit)
	})
	s.addCachedRow(ctx, p, "tv_hits", "TV hits", "tv_hits", cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
		return s.Titles.PopularIDsByKind(ctx, entity.TitleKindTV, globalCandidateLimit)
	})

	if lang := profile.LanguagePreference; lang != "" {
		s.addCachedRow(ctx, p, "in_lang", "In "+strings.ToUpper(lang), "in_lang:"+lang, cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
			return s.Titles.IDsByLanguage(ctx, lang, globalCandidateLimit)
		})
	}
}

func (s *Service) planPersonalizedRows(ctx context.Context, profile *entity.Profile, recentActionIDs []int64, p *planner) {
	// Aggregate similarity row over the freshest interactions.
	forYouSeeds := recentActionIDs
	if len(forYouSeeds) > 6 {
		forYouSeeds = forYouSeeds[:6]
	}
	s.addRow(ctx, p, "for_you", "For you", func(ctx context.Context) ([]int64, error) {
		return s.Embeddings.SimilarTo(ctx, forYouSeeds, s.Config.ModelName, forYouCandidateLimit)
	})

	// One "Because you watched X" row per distinct recent item, up to 2.
	becauseSeeds := distinctHead(recentActionIDs, 2)
	if len(becauseSeeds) > 0 {
		names := s.seedNames(ctx, becauseSeeds)
		for _, seedID := range becauseSeeds {
			seedID := seedID
			name := names[seedID]
			if name == "" {
				name = "this"
			}
			s.addRow(ctx, p, fmt.Sprintf("because:%d", seedID), "Because you watched "+name, func(ctx context.Context) ([]int64, error) {
				return s.Embeddings.SimilarTo(ctx, []int64{seedID}, s.Config.ModelName, becauseCandidateLimit)
			})
		}
	}

	genreSeeds := head(recentActionIDs, genreSeedWindow)
	for _, g := range s.topAffinityValues(ctx, profile.ID, "genre", s.Indexes.Genre, genreSeeds, 2) {
		g := g
		s.addCachedRow(ctx, p, "genre:"+g, "More "+displayTitle(g), "genre:"+g, s.Config.HeavyCandidatesTTL, func(ctx context.Context) ([]int64, error) {
			return s.Indexes.Genre.ResolveIDs(ctx, g, globalCandidateLimit)
		})
	}

	for _, v := range s.topAffinityValues(ctx, profile.ID, "studio", s.Indexes.Company, genreSeeds, 1) {
		s.addAffinityRow(ctx, p, "studio:"+v, "From "+displayTitle(v), "studio", s.Indexes.Company, v)
	}
	for _, v := range s.topAffinityValues(ctx, profile.ID, "network", s.Indexes.Network, genreSeeds, 1) {
		s.addAffinityRow(ctx, p, "network:"+v, "On "+displayTitle(v), "network", s.Indexes.Network, v)
	}
	for _, v := range s.topAffinityValues(ctx, profile.ID, "country", s.Indexes.Country, genreSeeds, 1) {
		s.addAffinityRow(ctx, p, "country:"+v, "Made in "+strings.ToUpper(v), "country", s.Indexes.Country, v)
	}

	castSeeds := head(recentActionIDs, castKeywordWindow)
	for _, actor := range s.topAffinityValues(ctx, profile.ID, "actor", s.Indexes.Actor, castSeeds, 2) {
		s.addAffinityRow(ctx, p, "actor:"+actor, "Starring "+displayTitle(actor), "actor", s.Indexes.Actor, actor)
	}
	for _, kw := range s.topAffinityValues(ctx, profile.ID, "keyword", s.Indexes.Keyword, castSeeds, 2) {
		s.addAffinityRow(ctx, p, "kw:"+kw, fmt.Sprintf("Based on %q", kw), "keyword", s.Indexes.Keyword, kw)
	}
}

func (s *Service) planSupplementalRows(ctx context.Context, profile *entity.Profile, p *planner) {
	cfg := s.Config

	s.addCachedRow(ctx, p, "hidden_gems", "Hidden gems", "hidden_gems", cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
		return s.Titles.HiddenGemIDs(ctx, hiddenGemMinRating, hiddenGemMinVotes, hiddenGemLimit)
	})

	s.addRow(ctx, p, "fresh_for_you", "New for you", func(ctx context.Context) ([]int64, error) {
		movies, err := cache.GetOrBuildIDs(ctx, s.Cache, cache.GlobalCandidatesKey("fresh_movies"), cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
			return s.Titles.RecentIDsByKind(ctx, entity.TitleKindMovie, freshCandidateLimit)
		})
		if err != nil {
			return nil, err
		}
		tv, err := cache.GetOrBuildIDs(ctx, s.Cache, cache.GlobalCandidatesKey("fresh_tv"), cfg.GlobalCandidatesTTL, func(ctx context.Context) ([]int64, error) {
			return s.Titles.RecentIDsByKind(ctx, entity.TitleKindTV, freshCandidateLimit)
		})
		if err != nil {
			return nil, err
		}
		return append(append(make([]int64, 0, len(movies)+len(tv)), movies...), tv...), nil
	})

	trendIDs, err := s.trendingIDs(ctx)
	if err != nil {
		s.log().Warn("trending source failed, dropping trending rows", slog.Any("error", err))
		return
	}

	if lang := profile.LanguagePreference; lang != "" {
		s.addRow(ctx, p, "lang_trending", "Trending in "+strings.ToUpper(lang), func(ctx context.Context) ([]int64, error) {
			return s.Titles.FilterIDsByLanguage(ctx, trendIDs, lang, globalCandidateLimit)
		})
	}

	s.addRow(ctx, p, "trending", "Trending", func(context.Context) ([]int64, error) {
		return trendIDs, nil
	})
}

// trendingIDs returns the rolling-window trending list, cache-aside with a
// short TTL because engagement moves fast.
func (s *Service) trendingIDs(ctx context.Context) ([]int64, error) {
	hours := int(s.Config.TrendingWindow / time.Hour)
	return cache.GetOrBuildIDs(ctx, s.Cache, cache.TrendingKey(hours), s.Config.TrendingTTL, func(ctx context.Context) ([]int64, error) {
		since := s.nowUTC().Add(-s.Config.TrendingWindow)
		return s.Interactions.TrendingTitleIDs(ctx, since, trendingLimit)
	})
}

// addAffinityRow plans one attribute-affinity row. The per-value ID list is
// attribute-keyed, not profile-keyed, so it is cached globally with the heavy
// TTL.
func (s *Service) addAffinityRow(ctx context.Context, p *planner, key, label, dimension string, idx repository.AttributeIndex, value string) {
	s.addCachedRow(ctx, p, key, label, dimension+":"+value, s.Config.HeavyCandidatesTTL, func(ctx context.Context) ([]int64, error) {
		return idx.ResolveIDs(ctx, value, affinityIDLimit)
	})
}

// topAffinityValues picks the profile's most frequent attribute values in one
// dimension, counted over the given seed titles. The chosen values are
// profile-specific and cached briefly per profile; ties break on value order
// for determinism. Returns nil when the dimension index is not configured.
func (s *Service) topAffinityValues(ctx context.Context, profileID int64, dimension string, idx repository.AttributeIndex, seedIDs []int64, topN int) []string {
	if idx == nil || len(seedIDs) == 0 {
		return nil
	}

	key := cache.ProfileAffinityKey(profileID, dimension)
	var cached []string
	if cache.GetJSON(ctx, s.Cache, key, &cached) {
		return head(cached, topN)
	}

	values, err := idx.ValuesForTitles(ctx, seedIDs, affinityValueLimit)
	if err != nil {
		s.log().Warn("affinity value lookup failed",
			slog.String("dimension", dimension),
			slog.Any("error", err))
		return nil
	}

	counts := make(map[string]int, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		counts[v]++
	}
	ranked := make([]string, 0, len(counts))
	for v := range counts {
		ranked = append(ranked, v)
	}
	sort.Slice(ranked, func(a, b int) bool {
		if counts[ranked[a]] != counts[ranked[b]] {
			return counts[ranked[a]] > counts[ranked[b]]
		}
		return ranked[a] < ranked[b]
	})

	top := head(ranked, topN)
	cache.SetJSON(ctx, s.Cache, key, top, s.Config.AffinityTTL)
	return top
}

// seedNames resolves display names for the "Because you watched" seeds.
func (s *Service) seedNames(ctx context.Context, ids []int64) map[int64]string {
	titles, err := s.Titles.DisplayByIDs(ctx, ids)
	if err != nil {
		s.log().Warn("seed name lookup failed", slog.Any("error", err))
		return map[int64]string{}
	}
	names := make(map[int64]string, len(titles))
	for id, t := range titles {
		names[id] = t.DisplayName()
	}
	return names
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// distinctHead returns the first n distinct values in order of appearance.
func distinctHead(ids []int64, n int) []int64 {
	out := make([]int64, 0, n)
	seen := make(map[int64]struct{}, n)
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) >= n {
			break
		}
	}
	return out
}

// displayTitle upper-cases the first letter of each word for row labels.
func displayTitle(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
