package player

import "context"

// Repository persists the whole roster as one unit.
type Repository interface {
	List(ctx context.Context) ([]Player, error)
	SaveAll(ctx context.Context, players []Player) error
}
