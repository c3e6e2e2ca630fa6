package ui

import (
	"strings"
)

// renderAccounts renders the account list with balances.
func (m Model) renderAccounts() string {
	styles := m.theme.Styles()

	if len(m.accounts) == 0 {
		return styles.MutedText.Render("No accounts yet. Link your email on the Sync view to import statements.")
	}

	nameW, typeW, instW, balW := accountColumnWidths(m.width)

	var b strings.Builder
	header := padRight("Account", nameW) + padRight("Type", typeW) +
		padRight("Institution", instW) + padLeft("Balance", balW)
	b.WriteString(styles.AccentText.Bold(true).Render(header))
	b.WriteString("\n")

	selected := m.selectedRow[ViewAccounts]
	for i, acct := range m.accounts {
		currency := acct.Currency
		if currency == "" {
			currency = m.currency()
		}

		row := padRight(acct.Name, nameW) +
			padRight(acct.Type, typeW) +
			padRight(acct.Institution, instW) +
			padLeft(formatMoney(acct.Balance, currency), balW)

		switch {
		case i == selected:
			b.WriteString(styles.Selected.Render(row))
		case acct.Balance.IsNegative():
			b.WriteString(styles.DangerText.Bold(false).Render(row))
		default:
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}

	if selected >= 0 && selected < len(m.accounts) {
		acct := m.accounts[selected]
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("updated " + formatRelativeTime(acct.ParsedUpdatedAt())))
	}

	return b.String()
}

func accountColumnWidths(total int) (name, typ, inst, bal int) {
	if total < 60 {
		total = 60
	}
	bal = 16
	typ = 12
	inst = 18
	name = total - bal - typ - inst - 2
	if name < 12 {
		name = 12
	}
	return name, typ, inst, bal
}

// currency returns the display currency from config.
func (m Model) currency() string {
	if m.config != nil && m.config.Currency != "" {
		return m.config.Currency
	}
	return "INR"
}
