package cache

import (
	"context"

	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	basecache "github.com/riskibarqy/soccer-rotation/internal/platform/cache"
)

const rosterListKey = "roster:list"

// PlayerRepository serves roster reads from memory and drops the cached copy
// on every write.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store[[]player.Player]
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store[[]player.Player]) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	items, err := r.cache.GetOrLoad(ctx, rosterListKey, func(ctx context.Context) ([]player.Player, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) SaveAll(ctx context.Context, players []player.Player) error {
	defer r.cache.Delete(ctx, rosterListKey)
	return r.next.SaveAll(ctx, players)
}
