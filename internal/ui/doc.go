// Package ui provides the terminal user interface for kosh.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. The Model struct is the single state
// container; Update handles key input, window resizes, the polling tick,
// and data messages produced by commands; View renders the header, the
// command bar, and the active view.
//
// # Views
//
// Five views are available, switched with single keys or Tab:
//
//   - Accounts: bank accounts and cards with balances
//   - Transactions: scrollable categorized transaction list
//   - Wealth: holdings with invested/current/gain and backend XIRR
//   - Goals: savings goals with progress bars
//   - Sync: email-sync connection state, actions, and history
//
// # Data Flow
//
// All reads go through query.Queries, so a render tick that lands inside
// the cache TTL costs nothing. The sync snapshot additionally flows
// through state.Store, which the background poller keeps current. The
// three mutations (connect, disconnect, sync now) are injected as
// closures by the app layer; each resolves to a message that refreshes
// the sync snapshot immediately instead of waiting for the next poll.
//
// # Account Linking
//
// Pressing "c" on the Sync view creates a fresh link.Flow and runs it in
// a command. While the attempt is in flight the view shows a spinner and
// the flow's current state; the terminal result lands as a linkDoneMsg
// and becomes a one-line notice. Attempts never stack.
//
// # External Dependencies
//
//   - query.Queries: cached reads against the moneta backend
//   - state.Store: sync snapshot maintained by the poller
//   - link.Flow: browser-based account linking
//   - prefs: persisted theme and last active view
package ui
