// Package app wires the kosh application together and owns its lifecycle.
//
// # Overview
//
// Run loads configuration and preferences, builds the moneta client, the
// query cache, and the snapshot store, starts the background poller, and
// hands everything to the UI. It blocks until the UI exits or the context
// is cancelled.
//
// # Polling
//
// The poller refreshes the sync snapshot through the query cache, so an
// invalidation (after a link, disconnect, or manual sync) is picked up on
// the next poll rather than waiting out the cache TTL. While the backend
// is unreachable the poll interval backs off exponentially, capped at 30
// seconds, and recovers to the base cadence on the first success.
//
// # Mutations
//
// The three mutating operations the UI can trigger are built here as
// closures so the cache-invalidation contract lives in one place:
//
//   - linking invalidates sync status and history before the attempt
//     resolves (wired as the link flow's onLinked hook)
//   - disconnecting invalidates the same keys immediately
//   - a manual sync trigger invalidates them after a 2-second delay,
//     giving the backend's asynchronous job time to make initial progress
package app
