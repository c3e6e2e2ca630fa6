package query

import (
	"context"
	"time"

	"github.com/anayd/kosh/internal/moneta"
)

// The TUI only ever renders the most recent page of transactions.
const transactionPageSize = 100

// Queries binds the cache to the moneta API with one typed accessor per
// backend query the UI renders.
type Queries struct {
	api   moneta.Service
	cache *Cache
}

// New builds Queries over the given API with the given cache TTL.
func New(api moneta.Service, ttl time.Duration) *Queries {
	return &Queries{api: api, cache: NewCache(ttl)}
}

// SyncStatus returns the email-sync connection status.
func (q *Queries) SyncStatus(ctx context.Context) (*moneta.ConnectionStatus, error) {
	return GetAs(ctx, q.cache, KeySyncStatus, q.api.FetchSyncStatus)
}

// SyncHistory returns recent sync jobs.
func (q *Queries) SyncHistory(ctx context.Context) ([]moneta.SyncEntry, error) {
	return GetAs(ctx, q.cache, KeySyncHistory, q.api.FetchSyncHistory)
}

// Accounts returns all tracked accounts.
func (q *Queries) Accounts(ctx context.Context) ([]moneta.Account, error) {
	return GetAs(ctx, q.cache, KeyAccounts, q.api.FetchAccounts)
}

// Transactions returns the most recent page of transactions.
func (q *Queries) Transactions(ctx context.Context) (moneta.TransactionListResponse, error) {
	return GetAs(ctx, q.cache, KeyTransactions, func(ctx context.Context) (moneta.TransactionListResponse, error) {
		return q.api.FetchTransactions(ctx, moneta.TransactionQuery{Limit: transactionPageSize})
	})
}

// Holdings returns investment holdings with the backend summary.
func (q *Queries) Holdings(ctx context.Context) (moneta.HoldingsResponse, error) {
	return GetAs(ctx, q.cache, KeyHoldings, q.api.FetchHoldings)
}

// Goals returns savings goals.
func (q *Queries) Goals(ctx context.Context) ([]moneta.Goal, error) {
	return GetAs(ctx, q.cache, KeyGoals, q.api.FetchGoals)
}

// InvalidateSync marks the connection status and sync history stale so the
// next access refetches. Called after a successful link or disconnect.
func (q *Queries) InvalidateSync() {
	q.cache.Invalidate(KeySyncStatus, KeySyncHistory)
}

// InvalidateSyncAfter schedules the same invalidation after delay. Called
// after triggering a manual sync, since the backend job runs asynchronously.
func (q *Queries) InvalidateSyncAfter(delay time.Duration) {
	q.cache.InvalidateAfter(delay, KeySyncStatus, KeySyncHistory)
}

// InvalidateAll marks every known key stale. Bound to the manual refresh key.
func (q *Queries) InvalidateAll() {
	q.cache.Invalidate(KeySyncStatus, KeySyncHistory, KeyAccounts, KeyTransactions, KeyHoldings, KeyGoals)
}
