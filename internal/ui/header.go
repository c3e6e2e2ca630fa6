package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar across the top.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	var parts []string
	parts = append(parts, styles.Logo.Render("kosh"))

	switch {
	case !m.snapshot.HasStatus && m.snapshot.LastError != nil:
		parts = append(parts, styles.DangerText.Render("MONETA UNREACHABLE"))
		parts = append(parts, styles.WarningText.Render("Retrying..."))
	case !m.snapshot.HasStatus:
		parts = append(parts, styles.WarningText.Render("Connecting to moneta..."))
	default:
		if m.snapshot.Status.Connected {
			label := "● LINKED"
			if m.snapshot.Status.Email != "" {
				label += " " + m.snapshot.Status.Email
			}
			parts = append(parts, styles.SuccessText.Render(label))
		} else {
			parts = append(parts, styles.MutedText.Render("● NOT LINKED"))
		}

		if m.snapshot.SyncRunning() {
			parts = append(parts, styles.InfoText.Render(m.spinner.View()+"syncing"))
		}

		parts = append(parts,
			styles.MutedText.Render("Synced:")+" "+
				styles.Text.Render(fmt.Sprintf("%d", m.snapshot.Status.TotalSynced)),
		)
	}

	if m.snapshot.IsOffline() {
		parts = append(parts, styles.DangerText.Render("OFFLINE"))
	}

	if !m.lastUpdated.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+m.lastUpdated.Format("15:04:05")))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderCommandBar renders the view tabs, key hints, and the transient
// notice line.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	tabs := []struct {
		key   string
		label string
		view  View
	}{
		{"a", "Accounts", ViewAccounts},
		{"t", "Transactions", ViewTransactions},
		{"w", "Wealth", ViewWealth},
		{"g", "Goals", ViewGoals},
		{"s", "Sync", ViewSync},
	}

	var b strings.Builder
	for i, tab := range tabs {
		if i > 0 {
			b.WriteString(styles.FaintText.Render(" │ "))
		}
		label := fmt.Sprintf("[%s] %s", tab.key, tab.label)
		if tab.view == m.currentView {
			b.WriteString(styles.AccentText.Bold(true).Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
	}

	b.WriteString(styles.FaintText.Render("  ·  "))
	b.WriteString(styles.FaintText.Render("[r] refresh  [h] help  [e] quit"))

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render(m.notice))
	} else if m.dataErr != nil {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(truncate(m.dataErr.Error(), maxNoticeWidth(m.width))))
	} else {
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(m.width).Render(b.String())
}

func maxNoticeWidth(width int) int {
	if width <= 0 {
		return 80
	}
	return width
}
