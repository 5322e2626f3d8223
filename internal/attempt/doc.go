// Package attempt performs one bounded-time outbound request to a single
// origin and classifies the result. Each attempt gets its own timeout
// window; timers are released on every exit path so a cancelled attempt
// never leaves a dangling timer or connection.
//
// Only an exact 200 status counts as success. Every other status, including
// other 2xx codes and redirects, is classified as a bad status and triggers
// failover to the next origin. This mirrors the routing behavior the
// service is replacing and is intentionally narrow.
package attempt
