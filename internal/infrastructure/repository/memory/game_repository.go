package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/soccer-rotation/internal/domain/game"
)

// GameRepository keeps the current game for the life of the process.
type GameRepository struct {
	mu    sync.RWMutex
	state game.State
}

func NewGameRepository() *GameRepository {
	return &GameRepository{}
}

func (r *GameRepository) Get(_ context.Context) (game.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.Clone(), nil
}

func (r *GameRepository) Save(_ context.Context, state game.State) error {
	r.mu.Lock()
	r.state = state.Clone()
	r.mu.Unlock()

	return nil
}
