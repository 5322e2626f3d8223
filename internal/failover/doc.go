// Package failover implements the per-request failover loop. The
// controller draws origins from a request-scoped pool one at a time,
// dispatches a bounded attempt to each, and stops at the first 200
// response. Failed attempts fall through to the next origin immediately,
// with no backoff, until the pool is exhausted.
package failover
