package ui

import (
	"fmt"
	"strings"

	"github.com/anayd/kosh/internal/link"
	"github.com/anayd/kosh/internal/moneta"
)

// renderSync renders the email-sync integration view: connection state,
// available actions, a live line for any running link attempt, and the
// sync history table.
func (m Model) renderSync() string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.AccentText.Bold(true).Render("Email Sync"))
	b.WriteString("\n\n")

	status := m.snapshot.Status
	switch {
	case !m.snapshot.HasStatus:
		b.WriteString(styles.MutedText.Render("Waiting for backend..."))
		b.WriteString("\n")
	case status.Connected:
		b.WriteString(styles.SuccessText.Render("Linked"))
		if status.Email != "" {
			b.WriteString(styles.Text.Render("  " + status.Email))
		}
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Last sync: "))
		b.WriteString(styles.Text.Render(formatRelativeTime(status.ParsedLastSync())))
		b.WriteString(styles.MutedText.Render("   Records synced: "))
		b.WriteString(styles.Text.Render(fmt.Sprintf("%d", status.TotalSynced)))
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("[m] sync now  [d] disconnect"))
	default:
		b.WriteString(styles.MutedText.Render("Not linked. Connect your email account to import transactions."))
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("[c] connect account"))
	}
	b.WriteString("\n")

	if m.linking && m.linkFlow != nil {
		b.WriteString("\n")
		b.WriteString(styles.InfoText.Render(m.spinner.View() + linkStateLabel(m.linkFlow.State())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderSyncHistory(styles))

	return b.String()
}

// linkStateLabel turns a link flow state into a human status line.
func linkStateLabel(s link.State) string {
	switch s {
	case link.StateAwaitingAuthURL:
		return "requesting authorization link..."
	case link.StatePopupOpen, link.StatePolling, link.StateProviderNavigation:
		return "waiting for authorization in browser..."
	case link.StateCodeReceived, link.StateExchangingCallback:
		return "completing link..."
	case link.StateLinked:
		return "linked"
	default:
		return "linking..."
	}
}

func (m Model) renderSyncHistory(styles Styles) string {
	history := m.snapshot.History
	if len(history) == 0 {
		return styles.MutedText.Render("No sync history.")
	}

	timeW, statusW, recW, trigW, durW := 17, 9, 9, 9, 7

	var b strings.Builder
	header := padRight("Started", timeW) + padRight("Status", statusW) +
		padLeft("Records", recW) + "  " + padRight("Trigger", trigW) + padLeft("Took", durW)
	b.WriteString(styles.AccentText.Bold(true).Render(header))
	b.WriteString("\n")

	for _, entry := range history {
		started := "-"
		if t := entry.ParsedStartTime(); !t.IsZero() {
			started = t.Format("Jan 02 15:04")
		}

		row := padRight(started, timeW) +
			padRight(entry.Status, statusW) +
			padLeft(fmt.Sprintf("%d", entry.RecordsProcessed), recW) + "  " +
			padRight(entry.TriggerSource, trigW) +
			padLeft(humanizeDuration(entry.Duration()), durW)

		switch entry.Status {
		case moneta.SyncRunning:
			b.WriteString(styles.InfoText.Render(row))
		case moneta.SyncFailed:
			b.WriteString(styles.DangerText.Bold(false).Render(row))
		default:
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")

		if entry.Status == moneta.SyncFailed && entry.ErrorMessage != "" {
			b.WriteString(styles.FaintText.Render("  └ " + truncate(entry.ErrorMessage, maxNoticeWidth(m.width)-4)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
