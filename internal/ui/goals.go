package ui

import (
	"fmt"
	"strings"
)

const goalBarWidth = 24

// renderGoals renders savings goals with progress bars.
func (m Model) renderGoals() string {
	styles := m.theme.Styles()

	if len(m.goals) == 0 {
		return styles.MutedText.Render("No goals defined.")
	}

	currency := m.currency()
	selected := m.selectedRow[ViewGoals]

	var b strings.Builder
	for i, goal := range m.goals {
		if i > 0 {
			b.WriteString("\n")
		}

		name := goal.Name
		if i == selected {
			b.WriteString(styles.Selected.Render(" " + name + " "))
		} else {
			b.WriteString(styles.Text.Bold(true).Render(name))
		}
		b.WriteString("\n")

		progress := goal.Progress()
		b.WriteString(renderProgressBar(progress, goalBarWidth, styles))
		b.WriteString("  ")
		b.WriteString(styles.Text.Render(fmt.Sprintf(
			"%s / %s",
			formatMoney(goal.SavedAmount, currency),
			formatMoney(goal.TargetAmount, currency),
		)))
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("  (%d%%)", int(progress*100))))

		if target := goal.ParsedTargetDate(); !target.IsZero() {
			b.WriteString("\n")
			b.WriteString(styles.FaintText.Render("target " + target.Format("Jan 2006")))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderProgressBar draws a fixed-width bar filled proportionally to
// progress in [0, 1].
func renderProgressBar(progress float64, width int, styles Styles) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if progress >= 1 {
		return styles.SuccessText.Render(bar)
	}
	return styles.AccentText.Render(bar)
}
