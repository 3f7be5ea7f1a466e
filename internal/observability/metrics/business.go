package metrics

import "time"

// RecordFeedServe records one home feed response. Mode is the serve mode
// reported to the client ("snapshot", "seed_snapshot", "no_snapshot_yet").
func RecordFeedServe(mode string) {
	FeedServesTotal.WithLabelValues(mode).Inc()
}

// RecordFeedPlan records a completed planning pass: its terminal outcome,
// total duration, and how many rows made it into the payload.
func RecordFeedPlan(outcome string, duration time.Duration, rowsBuilt int) {
	FeedPlanOutcomesTotal.WithLabelValues(outcome).Inc()
	FeedPlanDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	FeedRowsBuilt.Observe(float64(rowsBuilt))
}

// RecordRowRank records the time spent scoring and selecting one row.
func RecordRowRank(duration time.Duration) {
	FeedRowRankDuration.Observe(duration.Seconds())
}

// RecordSnapshotBuild records one per-profile snapshot build.
// Status should be either "success" or "failure".
func RecordSnapshotBuild(algoVersion string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	SnapshotBuildsTotal.WithLabelValues(algoVersion, status).Inc()
	SnapshotBuildDuration.Observe(duration.Seconds())
}

// RecordSnapshotJobRun records one full offline job sweep.
// Status should be "success", "partial", or "failure".
func RecordSnapshotJobRun(status string, duration time.Duration) {
	SnapshotJobRunsTotal.WithLabelValues(status).Inc()
	SnapshotJobDuration.Observe(duration.Seconds())
}

// RecordImpressionsLogged records a batch of accepted impression events.
func RecordImpressionsLogged(count int64) {
	if count > 0 {
		ImpressionsLoggedTotal.Add(float64(count))
	}
}

// RecordActionLogged records one accepted action event by type.
func RecordActionLogged(action string) {
	ActionsLoggedTotal.WithLabelValues(action).Inc()
}
