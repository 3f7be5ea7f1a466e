// Package snapshot implements the offline precompute job: it sweeps profiles
// and builds each one's live home snapshot so that serving never composes a
// feed inline. Per-profile failures are captured into the snapshot record
// itself with a short retry expiry instead of aborting the sweep.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/antoinerimano/Netflix/internal/domain/entity"
	"github.com/antoinerimano/Netflix/internal/observability/metrics"
	"github.com/antoinerimano/Netflix/internal/repository"
	"github.com/antoinerimano/Netflix/internal/usecase/feed"
)

// failureGraceTTL is the expiry put on a failed profile's snapshot. Short on
// purpose: the next sweep retries the profile soon instead of waiting out the
// full rebuild interval.
const failureGraceTTL = 10 * time.Minute

// Options configures one sweep.
type Options struct {
	// Hours is the rebuild interval; it becomes the snapshot expiry window.
	Hours int

	// Limit caps how many profiles one sweep touches.
	Limit int

	// ProfileID, when set, rebuilds only that profile (ad-hoc runs).
	ProfileID int64

	// OnlyActiveDays, when positive, restricts the sweep to profiles with at
	// least one action in the last N days.
	OnlyActiveDays int

	// Concurrency is the number of parallel per-profile builders.
	Concurrency int

	// PerSecond throttles profile builds across all workers. Zero means
	// unthrottled.
	PerSecond float64
}

func (o Options) withDefaults() Options {
	if o.Hours <= 0 {
		o.Hours = 6
	}
	if o.Limit <= 0 {
		o.Limit = 5000
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	return o
}

// Report summarizes one sweep.
type Report struct {
	Profiles int
	OK       int
	Failed   int
	Took     time.Duration
}

// Status classifies the sweep for metrics and logs.
func (r Report) Status() string {
	switch {
	case r.Profiles == 0 || r.Failed == 0:
		return "success"
	case r.OK > 0:
		return "partial"
	default:
		return "failure"
	}
}

// Builder runs the offline snapshot job.
type Builder struct {
	Feed     *feed.Service
	Profiles repository.ProfileRepository
	Logger   *slog.Logger

	// Now is the injectable clock. Nil means time.Now.
	Now func() time.Time
}

func (b *Builder) nowUTC() time.Time {
	if b.Now != nil {
		return b.Now().UTC()
	}
	return time.Now().UTC()
}

func (b *Builder) log() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Run sweeps the selected profiles and rebuilds each live snapshot. A
// per-profile failure is recorded in that profile's snapshot and counted, not
// returned; Run errors only when the profile list itself cannot be fetched or
// the context is canceled.
func (b *Builder) Run(ctx context.Context, opts Options) (Report, error) {
	opts = opts.withDefaults()
	start := time.Now()

	ids, err := b.selectProfiles(ctx, opts)
	if err != nil {
		metrics.RecordSnapshotJobRun("failure", time.Since(start))
		return Report{}, fmt.Errorf("select profiles: %w", err)
	}

	var ok, failed atomic.Int64

	var limiter *rate.Limiter
	if opts.PerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.PerSecond), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}
			if b.buildOne(gctx, id, opts.Hours) {
				ok.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordSnapshotJobRun("failure", time.Since(start))
		return Report{}, err
	}

	report := Report{
		Profiles: len(ids),
		OK:       int(ok.Load()),
		Failed:   int(failed.Load()),
		Took:     time.Since(start),
	}
	metrics.RecordSnapshotJobRun(report.Status(), report.Took)
	b.log().Info("snapshot sweep finished",
		slog.Int("profiles", report.Profiles),
		slog.Int("ok", report.OK),
		slog.Int("failed", report.Failed),
		slog.Duration("took", report.Took))
	return report, nil
}

func (b *Builder) selectProfiles(ctx context.Context, opts Options) ([]int64, error) {
	if opts.ProfileID > 0 {
		return []int64{opts.ProfileID}, nil
	}
	if opts.OnlyActiveDays > 0 {
		cutoff := b.nowUTC().AddDate(0, 0, -opts.OnlyActiveDays)
		return b.Profiles.ActiveIDsSince(ctx, cutoff, opts.Limit)
	}
	return b.Profiles.ListIDs(ctx, opts.Limit)
}

// buildOne rebuilds one profile's live snapshot and reports success. On
// failure it persists an empty payload carrying the error and a short expiry,
// so serving falls through to the seed snapshot and the next sweep retries
// soon. The sweep also backfills the seed snapshot for profiles that never
// got one.
func (b *Builder) buildOne(ctx context.Context, profileID int64, hours int) bool {
	start := time.Now()
	now := b.nowUTC()

	profile, err := b.Profiles.Get(ctx, profileID)
	if err == nil && profile == nil {
		err = feed.ErrProfileNotFound
	}
	if err == nil {
		b.ensureSeed(ctx, profileID)
	}

	var payload *entity.HomePayload
	if err == nil {
		payload, _, err = b.Feed.BuildHomePayload(ctx, profile)
	}

	snap := &entity.HomeSnapshot{
		ProfileID:   profileID,
		AlgoVersion: entity.AlgoVersionLive,
		BuiltAt:     now,
	}
	if err != nil {
		snap.LastError = err.Error()
		snap.ExpiresAt = now.Add(failureGraceTTL)
		b.log().Error("snapshot build failed",
			slog.Int64("profile_id", profileID),
			slog.Any("error", err))
	} else {
		snap.Payload = *payload
		snap.ExpiresAt = now.Add(time.Duration(hours) * time.Hour)
	}

	if upsertErr := b.Feed.Snapshots.Upsert(ctx, snap); upsertErr != nil {
		b.log().Error("snapshot upsert failed",
			slog.Int64("profile_id", profileID),
			slog.Any("error", upsertErr))
		err = upsertErr
	}

	metrics.RecordSnapshotBuild(entity.AlgoVersionLive, err == nil, time.Since(start))
	return err == nil
}

// ensureSeed builds the profile's seed snapshot when none exists yet. Serving
// falls through to the seed whenever the live snapshot is missing or expired,
// so a profile created between sweeps gets its fallback backfilled here. A
// seed failure is logged but never fails the profile: the live snapshot is
// what the sweep is accountable for.
func (b *Builder) ensureSeed(ctx context.Context, profileID int64) {
	seed, err := b.Feed.Snapshots.Latest(ctx, profileID, entity.AlgoVersionSeed)
	if err != nil {
		b.log().Error("seed snapshot lookup failed",
			slog.Int64("profile_id", profileID),
			slog.Any("error", err))
		return
	}
	if seed != nil {
		return
	}
	if err := b.Feed.UpsertSeedSnapshot(ctx, profileID); err != nil {
		b.log().Error("seed snapshot build failed",
			slog.Int64("profile_id", profileID),
			slog.Any("error", err))
	}
}
