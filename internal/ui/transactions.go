package ui

import (
	"fmt"
	"strings"
)

// renderTransactions renders the scrollable transaction list.
func (m Model) renderTransactions() string {
	styles := m.theme.Styles()

	if len(m.transactions.Transactions) == 0 {
		return styles.MutedText.Render("No transactions.")
	}

	dateW, descW, catW, amtW := transactionColumnWidths(m.width)

	header := padRight("Date", dateW) + padRight("Description", descW) +
		padRight("Category", catW) + padLeft("Amount", amtW)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(header))
	b.WriteString("\n")
	b.WriteString(m.txViewport.View())
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(fmt.Sprintf(
		"%d of %d transactions", len(m.transactions.Transactions), m.transactions.Total)))

	return b.String()
}

// updateTxViewport rebuilds the viewport content from the current
// transaction list. Called whenever the list or window size changes.
func (m *Model) updateTxViewport() {
	if !m.ready {
		return
	}

	styles := m.theme.Styles()
	dateW, descW, catW, amtW := transactionColumnWidths(m.width)

	var b strings.Builder
	for i, tx := range m.transactions.Transactions {
		if i > 0 {
			b.WriteString("\n")
		}

		row := padRight(tx.Date, dateW) +
			padRight(tx.Description, descW) +
			padRight(tx.Category, catW) +
			padLeft(formatMoney(tx.Amount, m.currency()), amtW)

		if tx.Amount.IsNegative() {
			b.WriteString(styles.Text.Render(row))
		} else {
			b.WriteString(styles.SuccessText.Bold(false).Render(row))
		}
	}

	m.txViewport.SetContent(b.String())
}

func transactionColumnWidths(total int) (date, desc, cat, amt int) {
	if total < 60 {
		total = 60
	}
	date = 12
	cat = 16
	amt = 14
	desc = total - date - cat - amt - 2
	if desc < 16 {
		desc = 16
	}
	return date, desc, cat, amt
}
