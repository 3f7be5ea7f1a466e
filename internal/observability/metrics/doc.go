// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Feed composition metrics (serves, planning, ranking, snapshots)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "github.com/antoinerimano/Netflix/internal/observability/metrics"
//
//	func buildSnapshot(profileID int64) {
//	    start := time.Now()
//	    // ... compose and persist the payload ...
//	    metrics.RecordSnapshotBuild(entity.AlgoVersionLive, true, time.Since(start))
//	}
package metrics
