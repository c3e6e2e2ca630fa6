package app

import (
	"context"
	"fmt"
	"time"

	"github.com/anayd/kosh/internal/config"
	"github.com/anayd/kosh/internal/link"
	"github.com/anayd/kosh/internal/moneta"
	"github.com/anayd/kosh/internal/prefs"
	"github.com/anayd/kosh/internal/query"
	"github.com/anayd/kosh/internal/state"
	"github.com/anayd/kosh/internal/ui"
)

// Options configure the kosh application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/kosh/prefs.toml
	PollEvery  int    // seconds; zero uses default
}

// The backend's manual sync job runs asynchronously; waiting a moment
// before invalidating lets the refetched history show the job in progress.
const manualSyncInvalidateDelay = 2 * time.Second

// The link flow consumes the same client the queries do.
var _ link.API = (*moneta.Client)(nil)

// Run boots the kosh TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load kosh config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := moneta.NewClient(cfg.APIBase)
	if err != nil {
		return fmt.Errorf("init moneta client: %w", err)
	}

	queries := query.New(client, cfg.CacheTTL())
	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background poller
	StartPoller(ctx, store, queries, interval)

	// Do initial refresh to populate store before UI starts
	_ = refresh(ctx, store, queries)

	uiOpts := ui.Options{
		Context:     ctx,
		Queries:     queries,
		Store:       store,
		Config:      &cfg,
		PollTick:    interval,
		ThemeName:   userPrefs.Theme,
		StartView:   userPrefs.View,
		PrefsPath:   opts.PrefsPath,
		NewLinkFlow: newLinkFlow(client, queries),
		Disconnect:  disconnect(client, queries),
		ManualSync:  manualSync(client, queries),
	}
	return ui.Run(uiOpts)
}

// newLinkFlow builds a fresh single-use link attempt. A successful link
// invalidates the sync queries before the attempt resolves.
func newLinkFlow(client *moneta.Client, queries *query.Queries) func() *link.Flow {
	return func() *link.Flow {
		return link.NewFlow(client, link.NewBrowserOpener(), queries.InvalidateSync)
	}
}

// disconnect removes the integration and invalidates dependent queries.
func disconnect(client *moneta.Client, queries *query.Queries) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Disconnect(ctx); err != nil {
			return err
		}
		queries.InvalidateSync()
		return nil
	}
}

// manualSync queues a backend sync job and schedules delayed invalidation.
func manualSync(client *moneta.Client, queries *query.Queries) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.TriggerManualSync(ctx); err != nil {
			return err
		}
		queries.InvalidateSyncAfter(manualSyncInvalidateDelay)
		return nil
	}
}
