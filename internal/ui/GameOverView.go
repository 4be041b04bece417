package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mshel/snakebot/internal/journal"
)

// Styles for the decision history table
var (
	historyHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("236")).
				Padding(0, 1).
				Align(lipgloss.Center)

	historyRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	historyBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("8"))

	fallbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

const (
	rankWidth     = 5
	timeWidth     = 21
	turnWidth     = 7
	actionWidth   = 8
	fallbackWidth = 10
	reasonWidth   = 40
)

// RenderHistory draws a page of journal entries, newest first. offset is the
// position of entries[0] in the whole journal.
func RenderHistory(entries []journal.Entry, total, offset int) string {
	var tableContent strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		historyHeaderStyle.Width(rankWidth).Render("#"),
		historyHeaderStyle.Width(timeWidth).Render("Time"),
		historyHeaderStyle.Width(turnWidth).Render("Turn"),
		historyHeaderStyle.Width(actionWidth).Render("Action"),
		historyHeaderStyle.Width(fallbackWidth).Render("Fallback"),
		historyHeaderStyle.Width(reasonWidth).Render("Reason"),
	)
	tableContent.WriteString(header + "\n")

	for i, entry := range entries {
		fallback := historyRowStyle.Width(fallbackWidth).Render("no")
		if entry.Fallback {
			fallback = fallbackStyle.Copy().Padding(0, 1).Width(fallbackWidth).Render("yes")
		}

		row := lipgloss.JoinHorizontal(lipgloss.Top,
			historyRowStyle.Width(rankWidth).Render(strconv.Itoa(offset+i+1)),
			historyRowStyle.Width(timeWidth).Render(entry.CreatedAt.Local().Format("2006-01-02 15:04:05")),
			historyRowStyle.Width(turnWidth).Render(strconv.Itoa(entry.Turn)),
			historyRowStyle.Width(actionWidth).Render(entry.Action),
			fallback,
			historyRowStyle.Width(reasonWidth).Render(truncate(entry.Reason, reasonWidth-2)),
		)
		tableContent.WriteString(historyBorderStyle.Render(row) + "\n")
	}

	title := lipgloss.NewStyle().Bold(true).Padding(1, 0).Render("DECISION HISTORY")
	summary := lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("Showing %d of %d decisions", len(entries), total))
	if len(entries) == 0 {
		summary = lipgloss.NewStyle().Faint(true).Render("No decisions recorded.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		tableContent.String(),
		summary,
	)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
