package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players []player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	out := make([]player.Player, 0, len(players))
	out = append(out, players...)

	return &PlayerRepository{players: out}
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	out = append(out, r.players...)

	return out, nil
}

func (r *PlayerRepository) SaveAll(_ context.Context, players []player.Player) error {
	if err := player.ValidateRoster(players); err != nil {
		return err
	}

	out := make([]player.Player, 0, len(players))
	out = append(out, players...)

	r.mu.Lock()
	r.players = out
	r.mu.Unlock()

	return nil
}
