package game

import "fmt"

// Action is one of the four cardinal moves.
type Action string

const (
	Up    Action = "up"
	Down  Action = "down"
	Left  Action = "left"
	Right Action = "right"
)

// Actions lists the moves in their fixed enumeration order.
var Actions = [4]Action{Up, Down, Left, Right}

var deltas = map[Action][2]int{
	Up:    {-1, 0},
	Down:  {1, 0},
	Left:  {0, -1},
	Right: {0, 1},
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := deltas[a]; !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrMalformedOrUnexpected, s)
	}
	return a, nil
}

// Valid reports whether a is one of the four moves.
func (a Action) Valid() bool {
	_, ok := deltas[a]
	return ok
}

// Opposite returns the direct reversal of a.
func (a Action) Opposite() Action {
	switch a {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return ""
}

// Delta returns the (row, col) unit step of a.
func (a Action) Delta() (int, int) {
	d := deltas[a]
	return d[0], d[1]
}

// ActionForDelta maps a unit step back to its move.
func ActionForDelta(dRow, dCol int) (Action, bool) {
	for _, a := range Actions {
		if d := deltas[a]; d[0] == dRow && d[1] == dCol {
			return a, true
		}
	}
	return "", false
}

// GetManhattanDistance is unsigned so that distances across the widest grids
// do not wrap.
func GetManhattanDistance(p1, p2 Position) uint {
	return absDiff(p1.Row, p2.Row) + absDiff(p1.Col, p2.Col)
}

func absDiff(a, b int) uint {
	if a < b {
		a, b = b, a
	}
	return uint(a) - uint(b)
}
