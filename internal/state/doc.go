// Package state provides thread-safe state sharing between the background
// poller and the UI.
//
// # Overview
//
// The Store is the coordination point where polling updates meet UI
// rendering: the poller writes fresh connection status and sync history
// into it, and the UI reads immutable snapshots out of it on every tick.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock. Update acquires the write lock;
// Snapshot acquires the read lock and returns defensive copies, so the UI
// can read frequently without blocking the poller and neither side ever
// observes a torn update. The lock is held only during copy operations,
// never during network I/O or rendering.
//
// # Update Semantics
//
// A successful Update replaces the snapshot wholesale and resets the
// consecutive-failure counter. A failed Update keeps the previous data —
// stale data beats no data in a dashboard — records the error, and
// increments the counter; Snapshot.IsOffline reports true after two
// consecutive failures so the UI can surface connectivity loss without
// flickering on a single transient error.
package state
