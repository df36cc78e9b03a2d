// Package metrics provides Prometheus instrumentation for storyhub.
//
// All metrics are prefixed with "storyhub_" and registered on the default
// registry through promauto. Mount promhttp.Handler() to expose them.
//
// Categories:
//   - HTTP: request totals, durations and in-flight gauge
//   - Database: query totals and durations by operation
//   - Access control: login attempts and guard denials by reason
//   - Engagement: favorite toggles and recorded album visits
//   - Content: row counts refreshed periodically by a [Collector]
package metrics
