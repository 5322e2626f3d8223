// Package handler implements the HTTP boundary of the failover router.
// It buffers the inbound request body so every attempt can replay it,
// builds a fresh origin pool per request, runs the failover loop, and
// either copies the winning origin's response out verbatim or answers
// 503 Service unavailable when every origin has failed.
package handler
