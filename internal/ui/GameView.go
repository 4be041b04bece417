package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mshel/snakebot/internal/game"
)

var (
	voidColor     = "233"
	selfColor     = "42"
	opponentColor = "203"
	foodColor     = "220"
	targetColor   = "45"

	mapViewStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	statusPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("8")).
				Padding(1, 2)

	voidStyle     = lipgloss.NewStyle().Background(lipgloss.Color(voidColor)).Foreground(lipgloss.Color("238"))
	selfStyle     = lipgloss.NewStyle().Background(lipgloss.Color(voidColor)).Foreground(lipgloss.Color(selfColor))
	opponentStyle = lipgloss.NewStyle().Background(lipgloss.Color(voidColor)).Foreground(lipgloss.Color(opponentColor))
	foodStyle     = lipgloss.NewStyle().Background(lipgloss.Color(voidColor)).Foreground(lipgloss.Color(foodColor)).Bold(true)
	targetStyle   = lipgloss.NewStyle().Background(lipgloss.Color(targetColor)).Foreground(lipgloss.Color("0")).Bold(true)

	headRunes = map[game.Action]string{
		game.Up:    "▲",
		game.Down:  "▼",
		game.Left:  "◀",
		game.Right: "▶",
	}
)

const (
	voidRune   = "·"
	bodyRune   = "■"
	foodRune   = "●"
	targetRune = "◎"
	deadRune   = "✕"

	// maxRenderCells bounds the boards drawn cell by cell.
	maxRenderCells = 10_000
)

// RenderBoard draws the snapshot grid next to a status panel. chosen marks the
// cell the controlled snake is about to enter; pass "" to leave it out.
func RenderBoard(snapshot *game.WorldSnapshot, chosen game.Action) string {
	var mapContent string
	if tooLargeToDraw(snapshot.Grid) {
		mapContent = renderOversized(snapshot.Grid)
	} else {
		mapContent = renderMap(snapshot, chosen)
	}
	statusContent := renderStatusPanel(snapshot, chosen)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		mapViewStyle.Render(mapContent),
		statusPanelStyle.Render(statusContent),
	)
}

func renderMap(snapshot *game.WorldSnapshot, chosen game.Action) string {
	cells := make(map[game.Position]string)

	paint := func(snake game.SnakeState, style lipgloss.Style) {
		for _, segment := range snake.Body {
			cells[segment] = style.Render(bodyRune)
		}
		if len(snake.Body) == 0 {
			return
		}
		head := headRunes[snake.Direction]
		if head == "" || !snake.Alive {
			head = deadRune
		}
		cells[snake.Head] = style.Bold(true).Render(head)
	}
	paint(snapshot.Opponent, opponentStyle)
	paint(snapshot.Self, selfStyle)

	if _, taken := cells[snapshot.Food]; !taken {
		cells[snapshot.Food] = foodStyle.Render(foodRune)
	}
	if chosen.Valid() {
		if target := snapshot.Self.Head.Step(chosen); snapshot.Grid.Contains(target) {
			cells[target] = targetStyle.Render(targetRune)
		}
	}

	var sb strings.Builder
	empty := voidStyle.Render(voidRune)
	for row := 0; row < snapshot.Grid.Rows; row++ {
		for col := 0; col < snapshot.Grid.Cols; col++ {
			if cell, ok := cells[game.Position{Row: row, Col: col}]; ok {
				sb.WriteString(cell)
			} else {
				sb.WriteString(empty)
			}
		}
		if row < snapshot.Grid.Rows-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func tooLargeToDraw(grid game.GridSize) bool {
	return grid.Cols > 0 && grid.Rows > maxRenderCells/grid.Cols
}

func renderOversized(grid game.GridSize) string {
	return lipgloss.NewStyle().Padding(1, 2).Render(
		fmt.Sprintf("grid too large to draw\n%dx%d exceeds %d cells", grid.Rows, grid.Cols, maxRenderCells))
}

// renderStatusPanel draws the turn, both snakes and the chosen move.
func renderStatusPanel(snapshot *game.WorldSnapshot, chosen game.Action) string {
	var statusContent strings.Builder

	statusContent.WriteString(lipgloss.NewStyle().Bold(true).Render("--- Turn ---") + "\n")
	statusContent.WriteString(fmt.Sprintf("Turn: %d\n", snapshot.Turn))
	statusContent.WriteString(fmt.Sprintf("Grid: %dx%d\n", snapshot.Grid.Rows, snapshot.Grid.Cols))
	statusContent.WriteString(fmt.Sprintf("Food: %s\n", snapshot.Food))

	writeSnake := func(title string, snake game.SnakeState, style lipgloss.Style) {
		statusContent.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("--- "+title+" ---") + "\n")
		statusContent.WriteString(fmt.Sprintf("%s%s\n", style.Render("● "), snakeStatus(snake)))
		statusContent.WriteString(fmt.Sprintf("Score: %d\n", snake.Score))
		statusContent.WriteString(fmt.Sprintf("Length: %d\n", len(snake.Body)))
	}
	writeSnake("Me", snapshot.Self, selfStyle)
	writeSnake("Enemy", snapshot.Opponent, opponentStyle)

	if chosen != "" {
		statusContent.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("--- Decision ---") + "\n")
		statusContent.WriteString(fmt.Sprintf("Action: %s %s\n", headRunes[chosen], chosen))
		if chosen.Valid() {
			target := snapshot.Self.Head.Step(chosen)
			statusContent.WriteString(fmt.Sprintf("Target: %s\n", target))
			statusContent.WriteString(fmt.Sprintf("Food distance: %d", game.GetManhattanDistance(target, snapshot.Food)))
		}
	}
	return statusContent.String()
}

func snakeStatus(snake game.SnakeState) string {
	if !snake.Alive {
		return "dead"
	}
	return fmt.Sprintf("heading %s from %s", snake.Direction, snake.Head)
}
