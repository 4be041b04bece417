package game

import (
	"encoding/json"
	"fmt"
)

// Position is a [row, col] cell. It is not required to be on the grid.
type Position struct {
	Row int
	Col int
}

func (p Position) Step(a Action) Position {
	dRow, dCol := a.Delta()
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	return fmt.Sprintf("[%d,%d]", p.Row, p.Col)
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Row, p.Col})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: position: %v", ErrMalformedOrUnexpected, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: position needs 2 coordinates, got %d", ErrMalformedOrUnexpected, len(pair))
	}
	p.Row, p.Col = pair[0], pair[1]
	return nil
}

// GridSize bounds valid coordinates to [0, Rows) x [0, Cols).
type GridSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (g GridSize) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < g.Rows && p.Col >= 0 && p.Col < g.Cols
}

// SnakeState is one snake as of the snapshot. Body is head first.
type SnakeState struct {
	Head      Position   `json:"head"`
	Body      []Position `json:"body"`
	Direction Action     `json:"direction"`
	Score     int        `json:"score"`
	Alive     bool       `json:"alive"`
}

// WorldSnapshot is the full, read-only game state for one decision.
type WorldSnapshot struct {
	Grid     GridSize   `json:"grid_size"`
	Turn     int        `json:"turn"`
	Self     SnakeState `json:"my_snake"`
	Opponent SnakeState `json:"enemy_snake"`
	Food     Position   `json:"food"`
}

// Occupied reports whether p is a body segment of either snake.
func (s *WorldSnapshot) Occupied(p Position) bool {
	for _, segment := range s.Self.Body {
		if segment == p {
			return true
		}
	}
	for _, segment := range s.Opponent.Body {
		if segment == p {
			return true
		}
	}
	return false
}
