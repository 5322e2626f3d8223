// Package metrics provides real-time metrics collection for the failover
// router.
//
// It uses a channel-based event pipeline to asynchronously collect, per
// origin:
//   - Attempt counts and success counts
//   - Failure counts broken down by reason (bad_status, timeout,
//     transport_error)
//   - Attempt latencies with percentile calculations (P50, P95, P99)
//
// plus request totals and the number of requests that exhausted every
// origin. Events are sent via a buffered channel with non-blocking
// semantics so the request path is never stalled by metrics bookkeeping.
// The collector runs in a dedicated goroutine and drains remaining events
// on shutdown.
package metrics
