package ui

import (
	"fmt"
	"strings"
)

// renderWealth renders holdings with backend-computed returns and the
// portfolio summary.
func (m Model) renderWealth() string {
	styles := m.theme.Styles()

	if len(m.holdings.Holdings) == 0 {
		return styles.MutedText.Render("No holdings tracked.")
	}

	nameW, kindW, numW, xirrW := wealthColumnWidths(m.width)
	currency := m.currency()

	var b strings.Builder
	header := padRight("Holding", nameW) + padRight("Kind", kindW) +
		padLeft("Invested", numW) + padLeft("Value", numW) +
		padLeft("Gain", numW) + padLeft("XIRR", xirrW)
	b.WriteString(styles.AccentText.Bold(true).Render(header))
	b.WriteString("\n")

	selected := m.selectedRow[ViewWealth]
	for i, h := range m.holdings.Holdings {
		gain := h.Gain()
		xirr := h.XIRR
		if xirr == "" {
			xirr = "-"
		}

		row := padRight(h.Name, nameW) +
			padRight(h.Kind, kindW) +
			padLeft(formatMoney(h.Invested, currency), numW) +
			padLeft(formatMoney(h.CurrentValue, currency), numW) +
			padLeft(formatSignedMoney(gain, currency), numW) +
			padLeft(xirr, xirrW)

		switch {
		case i == selected:
			b.WriteString(styles.Selected.Render(row))
		case gain.IsNegative():
			b.WriteString(styles.DangerText.Bold(false).Render(row))
		default:
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}

	summary := m.holdings.Summary
	totalGain := summary.TotalValue.Sub(summary.TotalInvested)
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Portfolio  "))
	b.WriteString(styles.Text.Render(fmt.Sprintf(
		"invested %s  value %s  gain %s",
		formatMoney(summary.TotalInvested, currency),
		formatMoney(summary.TotalValue, currency),
		formatSignedMoney(totalGain, currency),
	)))
	if summary.XIRR != "" {
		b.WriteString(styles.InfoText.Render("  XIRR " + summary.XIRR))
	}

	if selected >= 0 && selected < len(m.holdings.Holdings) {
		if h := m.holdings.Holdings[selected]; h.SIPAmount.IsPositive() {
			b.WriteString("\n")
			sip := "SIP " + formatMoney(h.SIPAmount, currency)
			if h.SIPDate > 0 {
				sip += fmt.Sprintf(" on day %d", h.SIPDate)
			}
			b.WriteString(styles.FaintText.Render(sip))
		}
	}

	return b.String()
}

func wealthColumnWidths(total int) (name, kind, num, xirr int) {
	if total < 80 {
		total = 80
	}
	kind = 10
	num = 14
	xirr = 8
	name = total - kind - 3*num - xirr - 2
	if name < 14 {
		name = 14
	}
	return name, kind, num, xirr
}
