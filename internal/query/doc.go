// Package query provides cached, deduplicated reads against the moneta
// backend. Results stay fresh for a TTL, explicit invalidation marks them
// stale immediately, and concurrent fetches for the same key collapse
// into one request.
package query
