package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anayd/kosh/internal/prefs"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes the help overlay.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "e":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		// Cycle theme and remember it.
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case "a":
		return m.switchView(ViewAccounts)
	case "t":
		return m.switchView(ViewTransactions)
	case "w":
		return m.switchView(ViewWealth)
	case "g":
		return m.switchView(ViewGoals)
	case "s":
		return m.switchView(ViewSync)

	case "tab":
		return m.switchView(nextView(m.currentView))
	case "shift+tab":
		return m.switchView(prevView(m.currentView))

	case "r":
		// Force-refresh everything currently cached.
		if m.queries != nil {
			m.queries.InvalidateAll()
		}
		return m, tea.Batch(m.fetchViewDataCmd(m.currentView), m.refreshSyncCmd())

	case "esc":
		return m.switchView(ViewAccounts)
	}

	// View-specific keys
	switch m.currentView {
	case ViewTransactions:
		return m.handleTransactionsKey(msg)
	case ViewSync:
		return m.handleSyncKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

// switchView changes the active view and kicks off its data fetch.
func (m Model) switchView(view View) (tea.Model, tea.Cmd) {
	m.currentView = view
	m.notice = ""
	m.savePrefs()
	return m, m.fetchViewDataCmd(view)
}

func nextView(v View) View {
	if v == ViewSync {
		return ViewAccounts
	}
	return v + 1
}

func prevView(v View) View {
	if v == ViewAccounts {
		return ViewSync
	}
	return v - 1
}

// handleListKey moves the selection in row-based views.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.rowCount(m.currentView)
	if count == 0 {
		return m, nil
	}

	row := m.selectedRow[m.currentView]
	switch msg.String() {
	case "j", "down":
		if row < count-1 {
			row++
		}
	case "k", "up":
		if row > 0 {
			row--
		}
	case "home":
		row = 0
	case "G", "end":
		row = count - 1
	}
	m.selectedRow[m.currentView] = row

	return m, nil
}

// handleTransactionsKey scrolls the transactions viewport.
func (m Model) handleTransactionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.txViewport.ScrollDown(1)
	case "k", "up":
		m.txViewport.ScrollUp(1)
	case "ctrl+d":
		m.txViewport.HalfPageDown()
	case "ctrl+u":
		m.txViewport.HalfPageUp()
	case "home":
		m.txViewport.GotoTop()
	case "G", "end":
		m.txViewport.GotoBottom()
	}
	return m, nil
}

// handleSyncKey drives the email-sync integration actions.
func (m Model) handleSyncKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		return m.startLink()

	case "d":
		if m.disconnect == nil || !m.snapshot.Status.Connected {
			return m, nil
		}
		ctx, disconnect := m.ctx, m.disconnect
		m.notice = "disconnecting..."
		return m, func() tea.Msg {
			return actionDoneMsg{label: "disconnected", err: disconnect(ctx)}
		}

	case "m":
		if m.manualSync == nil || !m.snapshot.Status.Connected {
			return m, nil
		}
		ctx, manualSync := m.ctx, m.manualSync
		m.notice = "requesting sync..."
		return m, func() tea.Msg {
			return actionDoneMsg{label: "sync requested", err: manualSync(ctx)}
		}
	}
	return m, nil
}

// startLink begins a fresh link attempt. Attempts are single-use and never
// stack; a second press while one is running is ignored.
func (m Model) startLink() (tea.Model, tea.Cmd) {
	if m.newLinkFlow == nil || m.linking {
		return m, nil
	}
	flow := m.newLinkFlow()
	m.linking = true
	m.linkFlow = flow
	m.notice = "opening browser for authorization..."

	ctx := m.ctx
	return m, func() tea.Msg {
		return linkDoneMsg{err: flow.Run(ctx)}
	}
}

// savePrefs persists theme and active view; failures are cosmetic.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{
		Theme: m.theme.Name,
		View:  viewName(m.currentView),
	})
}

func viewName(v View) string {
	switch v {
	case ViewTransactions:
		return "transactions"
	case ViewWealth:
		return "wealth"
	case ViewGoals:
		return "goals"
	case ViewSync:
		return "sync"
	default:
		return "accounts"
	}
}

func (m Model) rowCount(view View) int {
	switch view {
	case ViewAccounts:
		return len(m.accounts)
	case ViewWealth:
		return len(m.holdings.Holdings)
	case ViewGoals:
		return len(m.goals)
	}
	return 0
}
