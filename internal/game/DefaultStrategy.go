package game

import (
	"context"
	"math"
)

// GreedyStrategy steps toward the food along the first safe, clear move.
type GreedyStrategy struct{}

func (GreedyStrategy) SelectAction(_ context.Context, snapshot *WorldSnapshot) (Action, error) {
	return SelectAction(*snapshot), nil
}

// candidates is a fixed-capacity set of moves with their projected heads.
type candidates struct {
	n      int
	action [4]Action
	target [4]Position
}

func (c *candidates) add(a Action, p Position) {
	c.action[c.n] = a
	c.target[c.n] = p
	c.n++
}

func (c *candidates) filter(keep func(Position) bool) candidates {
	var out candidates
	for i := 0; i < c.n; i++ {
		if keep(c.target[i]) {
			out.add(c.action[i], c.target[i])
		}
	}
	return out
}

// enumerationOrder starts with the current direction, then follows Actions.
func enumerationOrder(current Action) [4]Action {
	order := [4]Action{}
	i := 0
	if current.Valid() {
		order[0] = current
		i = 1
	}
	for _, a := range Actions {
		if a != current {
			order[i] = a
			i++
		}
	}
	return order
}

// SelectAction chooses the next move for snapshot.Self. It always returns one of
// the four moves and has no side effects.
func SelectAction(snapshot WorldSnapshot) Action {
	self := snapshot.Self
	reverse := self.Direction.Opposite()

	// --- 1. Candidate generation, without the reversal into the neck ---
	var all, possible candidates
	for _, a := range enumerationOrder(self.Direction) {
		next := self.Head.Step(a)
		all.add(a, next)
		if a != reverse {
			possible.add(a, next)
		}
	}
	if possible.n == 0 {
		possible = all
	}

	// --- 2. Wall and collision filtering ---
	safe := possible.filter(snapshot.Grid.Contains)
	free := safe.filter(func(p Position) bool { return !snapshot.Occupied(p) })

	final := free
	if final.n == 0 {
		final = safe
	}
	if final.n == 0 {
		final = possible
	}
	if final.n == 0 {
		return self.Direction // Trapped
	}

	// --- 3. Greedy step toward the food, first minimum wins ---
	best := final.action[0]
	minDist := uint(math.MaxUint)
	for i := 0; i < final.n; i++ {
		dist := GetManhattanDistance(final.target[i], snapshot.Food)
		if dist < minDist {
			minDist = dist
			best = final.action[i]
		}
	}
	return best
}
