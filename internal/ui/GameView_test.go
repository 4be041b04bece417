package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mshel/snakebot/internal/game"
)

func testSnapshot() *game.WorldSnapshot {
	return &game.WorldSnapshot{
		Grid: game.GridSize{Rows: 6, Cols: 8},
		Turn: 4,
		Self: game.SnakeState{
			Head:      game.Position{Row: 2, Col: 2},
			Body:      []game.Position{{Row: 2, Col: 2}, {Row: 2, Col: 1}},
			Direction: game.Right,
			Score:     10,
			Alive:     true,
		},
		Opponent: game.SnakeState{
			Head:      game.Position{Row: 4, Col: 6},
			Body:      []game.Position{{Row: 4, Col: 6}, {Row: 5, Col: 6}},
			Direction: game.Up,
			Alive:     true,
		},
		Food: game.Position{Row: 0, Col: 7},
	}
}

func TestRenderMap(t *testing.T) {
	out := renderMap(testSnapshot(), game.Right)
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 6)
	assert.Contains(t, lines[2], "■▶◎")
	assert.Contains(t, lines[4], "▲")
	assert.Contains(t, lines[0], "●")
	assert.Equal(t, 2, strings.Count(out, bodyRune))
}

func TestRenderMap_WithoutDecision(t *testing.T) {
	out := renderMap(testSnapshot(), "")
	assert.NotContains(t, out, targetRune)
}

func TestRenderMap_OffGridTargetIsSkipped(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Self.Head = game.Position{Row: 0, Col: 0}
	snapshot.Self.Body = []game.Position{{Row: 0, Col: 0}}
	assert.NotContains(t, renderMap(snapshot, game.Up), targetRune)
}

func TestRenderMap_DeadSnake(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Opponent.Alive = false
	out := renderMap(snapshot, "")
	assert.Contains(t, out, deadRune)
	assert.NotContains(t, out, "▲")
}

func TestRenderBoard_StatusPanel(t *testing.T) {
	out := RenderBoard(testSnapshot(), game.Right)
	assert.Contains(t, out, "Turn: 4")
	assert.Contains(t, out, "Grid: 6x8")
	assert.Contains(t, out, "Action: ▶ right")
	assert.Contains(t, out, "Target: [2,3]")
	assert.Contains(t, out, "Food distance: 6")
}

func TestRenderBoard_OversizedGrid(t *testing.T) {
	input := `{"grid_size":{"rows":1000000000,"cols":1000000000},"turn":1,
"my_snake":{"head":[0,0],"body":[[0,0]],"direction":"right","score":0,"alive":true},
"enemy_snake":{"head":[5,5],"body":[[5,5]],"direction":"up","score":0,"alive":true},
"food":[999999999,999999999]}`
	snapshot, err := game.DecodeSnapshot([]byte(input))
	require.NoError(t, err)

	out := RenderBoard(snapshot, game.Down)
	assert.Contains(t, out, "grid too large to draw")
	assert.Contains(t, out, "Grid: 1000000000x1000000000")
	assert.Contains(t, out, "Action: ▼ down")
	assert.NotContains(t, out, voidRune)
}

func TestTooLargeToDraw(t *testing.T) {
	assert.False(t, tooLargeToDraw(game.GridSize{Rows: 100, Cols: 100}))
	assert.True(t, tooLargeToDraw(game.GridSize{Rows: 101, Cols: 100}))
	assert.True(t, tooLargeToDraw(game.GridSize{Rows: 1, Cols: maxRenderCells + 1}))
	assert.False(t, tooLargeToDraw(game.GridSize{Rows: 5, Cols: 0}))
}
