package game

import "context"

// Strategy picks the next move for the controlled snake.
type Strategy interface {
	SelectAction(ctx context.Context, snapshot *WorldSnapshot) (Action, error)
}
