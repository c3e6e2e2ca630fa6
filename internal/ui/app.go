// Package ui provides the Bubble Tea-based TUI for kosh.
package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anayd/kosh/internal/config"
	"github.com/anayd/kosh/internal/link"
	"github.com/anayd/kosh/internal/moneta"
	"github.com/anayd/kosh/internal/prefs"
	"github.com/anayd/kosh/internal/query"
	"github.com/anayd/kosh/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewAccounts View = iota
	ViewTransactions
	ViewWealth
	ViewGoals
	ViewSync
)

// viewForName maps a prefs view name to a View.
func viewForName(name string) View {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "transactions":
		return ViewTransactions
	case "wealth":
		return ViewWealth
	case "goals":
		return ViewGoals
	case "sync":
		return ViewSync
	default:
		return ViewAccounts
	}
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Queries   *query.Queries
	Store     *state.Store
	Config    *config.Config
	PollTick  time.Duration
	ThemeName string
	StartView string
	PrefsPath string

	// Mutations, built by the app layer so the cache-invalidation
	// contract stays out of the render loop.
	NewLinkFlow func() *link.Flow
	Disconnect  func(context.Context) error
	ManualSync  func(context.Context) error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	queries     *query.Queries
	store       *state.Store
	config      *config.Config
	prefsPath   string
	pollTick    time.Duration
	newLinkFlow func() *link.Flow
	disconnect  func(context.Context) error
	manualSync  func(context.Context) error

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	notice      string

	// Data state
	snapshot     state.Snapshot
	accounts     []moneta.Account
	transactions moneta.TransactionListResponse
	holdings     moneta.HoldingsResponse
	goals        []moneta.Goal
	dataErr      error
	lastUpdated  time.Time

	// Per-view selection
	selectedRow map[View]int

	// Transactions scrolling
	txViewport viewport.Model

	// Link attempt state
	linking  bool
	linkFlow *link.Flow

	// Activity indicator for running syncs and link attempts
	spinner spinner.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:         ctx,
		queries:     opts.Queries,
		store:       opts.Store,
		config:      opts.Config,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		newLinkFlow: opts.NewLinkFlow,
		disconnect:  opts.Disconnect,
		manualSync:  opts.ManualSync,
		theme:       GetTheme(themeName),
		currentView: viewForName(opts.StartView),
		selectedRow: make(map[View]int),
		spinner:     sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		m.spinner.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.queries != nil {
		cmds = append(cmds, m.fetchViewDataCmd(m.currentView))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.txViewport = viewport.New(msg.Width, contentHeight(msg.Height))
		} else {
			m.txViewport.Width = msg.Width
			m.txViewport.Height = contentHeight(msg.Height)
		}
		m.ready = true
		m.updateTxViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case accountsMsg:
		m.accounts = msg
		m.dataErr = nil
		return m, nil

	case transactionsMsg:
		m.transactions = moneta.TransactionListResponse(msg)
		m.dataErr = nil
		m.updateTxViewport()
		return m, nil

	case holdingsMsg:
		m.holdings = moneta.HoldingsResponse(msg)
		m.dataErr = nil
		return m, nil

	case goalsMsg:
		m.goals = msg
		m.dataErr = nil
		return m, nil

	case dataErrMsg:
		m.dataErr = msg.err
		return m, nil

	case linkDoneMsg:
		m.linking = false
		m.linkFlow = nil
		if msg.err != nil {
			m.notice = linkErrorNotice(msg.err)
		} else {
			m.notice = "account linked"
		}
		return m, m.refreshSyncCmd()

	case actionDoneMsg:
		if msg.err != nil {
			m.notice = msg.label + " failed: " + msg.err.Error()
			return m, nil
		}
		m.notice = msg.label
		return m, m.refreshSyncCmd()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleTick processes the polling tick: pick up the latest snapshot and
// refresh the active view's data through the query cache.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.queries != nil {
		cmds = append(cmds, m.fetchViewDataCmd(m.currentView))
	}
	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAccounts:
		return m.renderAccounts()
	case ViewTransactions:
		return m.renderTransactions()
	case ViewWealth:
		return m.renderWealth()
	case ViewGoals:
		return m.renderGoals()
	case ViewSync:
		return m.renderSync()
	default:
		return ""
	}
}

func contentHeight(total int) int {
	// Header, command bar, and a footer margin.
	h := total - 4
	if h < 1 {
		return 1
	}
	return h
}

// linkErrorNotice turns a terminal link error into a short status line.
func linkErrorNotice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, link.ErrUserCancelled):
		return "link cancelled"
	case errors.Is(err, link.ErrTimeout):
		return "link timed out after 5 minutes"
	case errors.Is(err, link.ErrAuthURLUnavailable):
		return "backend could not provide an authorization link"
	default:
		return "link failed: " + err.Error()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type accountsMsg []moneta.Account

type transactionsMsg moneta.TransactionListResponse

type holdingsMsg moneta.HoldingsResponse

type goalsMsg []moneta.Goal

type dataErrMsg struct{ err error }

type linkDoneMsg struct{ err error }

type actionDoneMsg struct {
	label string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// fetchViewDataCmd loads the data backing a view through the query cache,
// so repeated ticks are free while the cached result stays fresh.
func (m Model) fetchViewDataCmd(view View) tea.Cmd {
	ctx, queries := m.ctx, m.queries
	switch view {
	case ViewAccounts:
		return func() tea.Msg {
			accounts, err := queries.Accounts(ctx)
			if err != nil {
				return dataErrMsg{err}
			}
			return accountsMsg(accounts)
		}
	case ViewTransactions:
		return func() tea.Msg {
			resp, err := queries.Transactions(ctx)
			if err != nil {
				return dataErrMsg{err}
			}
			return transactionsMsg(resp)
		}
	case ViewWealth:
		return func() tea.Msg {
			resp, err := queries.Holdings(ctx)
			if err != nil {
				return dataErrMsg{err}
			}
			return holdingsMsg(resp)
		}
	case ViewGoals:
		return func() tea.Msg {
			goals, err := queries.Goals(ctx)
			if err != nil {
				return dataErrMsg{err}
			}
			return goalsMsg(goals)
		}
	case ViewSync:
		// The poller keeps the sync snapshot current.
		return nil
	}
	return nil
}

// refreshSyncCmd refetches the sync snapshot immediately instead of
// waiting for the next poll, so mutations feel responsive.
func (m Model) refreshSyncCmd() tea.Cmd {
	ctx, queries, store := m.ctx, m.queries, m.store
	if queries == nil || store == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := queries.SyncStatus(ctx)
		if err != nil {
			store.Update(nil, nil, err)
			return snapshotMsg(store.Snapshot())
		}
		history, err := queries.SyncHistory(ctx)
		if err != nil {
			store.Update(nil, nil, err)
			return snapshotMsg(store.Snapshot())
		}
		store.Update(status, history, nil)
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
