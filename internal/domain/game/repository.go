package game

import "context"

// Repository holds the current game. Get on an empty store returns a zero
// State.
type Repository interface {
	Get(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}
