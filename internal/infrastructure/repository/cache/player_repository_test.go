package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	playermock "github.com/riskibarqy/soccer-rotation/internal/mocks/domain/player"
	basecache "github.com/riskibarqy/soccer-rotation/internal/platform/cache"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_CachesListAndInvalidatesOnSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := playermock.NewRepository(t)
	roster := player.DefaultRoster()
	updated := append([]player.Player(nil), roster...)
	updated[0].IsAvailable = false

	next.On("List", mock.Anything).Return(roster, nil).Once()
	next.On("SaveAll", mock.Anything, updated).Return(nil).Once()
	next.On("List", mock.Anything).Return(updated, nil).Once()

	repo := NewPlayerRepository(next, basecache.NewStore[[]player.Player](time.Minute))

	first, err := repo.List(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated by caller"

	second, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Alaina", second[0].Name)

	require.NoError(t, repo.SaveAll(ctx, updated))

	third, err := repo.List(ctx)
	require.NoError(t, err)
	require.False(t, third[0].IsAvailable)
}
