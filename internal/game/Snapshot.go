package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedOrUnexpected covers every failure of a decision: bad input,
// out-of-range coordinates, or a strategy that could not produce a move.
var ErrMalformedOrUnexpected = errors.New("malformed or unexpected")

type wireSnake struct {
	Head      *Position  `json:"head"`
	Body      []Position `json:"body"`
	Direction string     `json:"direction"`
	Score     int        `json:"score"`
	Alive     bool       `json:"alive"`
}

type wireSnapshot struct {
	Grid     *GridSize  `json:"grid_size"`
	Turn     int        `json:"turn"`
	Self     *wireSnake `json:"my_snake"`
	Opponent *wireSnake `json:"enemy_snake"`
	Food     *Position  `json:"food"`
}

var (
	snapshotKeys = []string{"grid_size", "turn", "my_snake", "enemy_snake", "food"}
	gridKeys     = []string{"rows", "cols"}
	snakeKeys    = []string{"head", "body", "direction", "score", "alive"}
)

// DecodeSnapshot parses and validates one input record.
func DecodeSnapshot(data []byte) (*WorldSnapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var wire wireSnapshot
	if err := dec.Decode(&wire); err != nil {
		if errors.Is(err, ErrMalformedOrUnexpected) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedOrUnexpected, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after snapshot", ErrMalformedOrUnexpected)
	}
	if err := checkKeyNames(data); err != nil {
		return nil, err
	}

	switch {
	case wire.Grid == nil:
		return nil, missingField("grid_size")
	case wire.Self == nil:
		return nil, missingField("my_snake")
	case wire.Opponent == nil:
		return nil, missingField("enemy_snake")
	case wire.Food == nil:
		return nil, missingField("food")
	}
	if wire.Grid.Rows < 1 || wire.Grid.Cols < 1 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrMalformedOrUnexpected, wire.Grid.Rows, wire.Grid.Cols)
	}
	if wire.Turn < 0 {
		return nil, fmt.Errorf("%w: negative turn %d", ErrMalformedOrUnexpected, wire.Turn)
	}

	snapshot := &WorldSnapshot{Grid: *wire.Grid, Turn: wire.Turn, Food: *wire.Food}
	if !snapshot.Grid.Contains(snapshot.Food) {
		return nil, outOfRange("food", snapshot.Food)
	}

	self, err := wire.Self.toState("my_snake", snapshot.Grid, true)
	if err != nil {
		return nil, err
	}
	opponent, err := wire.Opponent.toState("enemy_snake", snapshot.Grid, false)
	if err != nil {
		return nil, err
	}
	snapshot.Self, snapshot.Opponent = self, opponent
	return snapshot, nil
}

func (w *wireSnake) toState(field string, grid GridSize, controlled bool) (SnakeState, error) {
	state := SnakeState{Body: w.Body, Score: w.Score, Alive: w.Alive}

	if w.Head != nil {
		state.Head = *w.Head
	} else if controlled {
		return state, missingField(field + ".head")
	}
	if controlled || w.Direction != "" {
		dir, err := ParseAction(w.Direction)
		if err != nil {
			return state, fmt.Errorf("%s.direction: %w", field, err)
		}
		state.Direction = dir
	}

	if controlled && !grid.Contains(state.Head) {
		return state, outOfRange(field+".head", state.Head)
	}
	for i, segment := range state.Body {
		if !grid.Contains(segment) {
			return state, outOfRange(fmt.Sprintf("%s.body[%d]", field, i), segment)
		}
	}
	if state.Alive {
		if len(state.Body) == 0 {
			return state, fmt.Errorf("%w: %s is alive with an empty body", ErrMalformedOrUnexpected, field)
		}
		if state.Body[0] != state.Head {
			return state, fmt.Errorf("%w: %s.body[0] %s is not the head %s",
				ErrMalformedOrUnexpected, field, state.Body[0], state.Head)
		}
	}
	return state, nil
}

// checkKeyNames rejects keys that only match a field name when case is
// ignored. encoding/json folds case when matching struct tags.
func checkKeyNames(data []byte) error {
	top, err := foldedKeys(data, snapshotKeys)
	if err != nil {
		return err
	}
	if _, err := foldedKeys(top["grid_size"], gridKeys); err != nil {
		return err
	}
	for _, name := range []string{"my_snake", "enemy_snake"} {
		if _, err := foldedKeys(top[name], snakeKeys); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func foldedKeys(data json.RawMessage, names []string) (map[string]json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOrUnexpected, err)
	}
	for key := range fields {
		for _, name := range names {
			if key != name && strings.EqualFold(key, name) {
				return nil, fmt.Errorf("%w: key %q must be spelled %q", ErrMalformedOrUnexpected, key, name)
			}
		}
	}
	return fields, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedOrUnexpected, name)
}

func outOfRange(name string, p Position) error {
	return fmt.Errorf("%w: %s %s is off the grid", ErrMalformedOrUnexpected, name, p)
}
