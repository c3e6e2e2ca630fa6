package app

import (
	"context"
	"log"
	"time"

	"github.com/anayd/kosh/internal/query"
	"github.com/anayd/kosh/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, backing off while the backend is unreachable. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, queries *query.Queries, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			err := refresh(ctx, store, queries)

			wait := interval
			if err != nil {
				wait = calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, queries *query.Queries) error {
	status, err := queries.SyncStatus(ctx)
	if err != nil {
		store.Update(nil, nil, err)
		log.Printf("sync status poll failed: %v", err)
		return err
	}
	history, err := queries.SyncHistory(ctx)
	if err != nil {
		store.Update(nil, nil, err)
		log.Printf("sync history poll failed: %v", err)
		return err
	}
	store.Update(status, history, nil)
	return nil
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
