// Package origin defines the candidate upstream origins a request can fail
// over to. It provides the per-request Pool, which yields untried origins
// one at a time, and the selection policies that decide draw order:
//
//   - Sequential: origins are tried in configuration order
//   - Random: origins are tried in uniformly random order, without replacement
//
// A pool belongs to exactly one inbound request. An origin drawn from a pool
// is never drawn from it again, so a request makes at most one attempt per
// origin.
package origin
