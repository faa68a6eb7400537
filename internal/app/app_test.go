package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/config"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	cacherepo "github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/soccer-rotation/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		RosterStore:        config.RosterStoreMemory,
		RosterKey:          "soccerPlayers",
		BoltOpenTimeout:    time.Second,
		CacheTTL:           time.Minute,
		RotationSeed:       11,
		SimulationWorkers:  2,
		SimulationMaxGames: 10,
	}
}

func TestNewHTTPServer_MemoryStoreServesSeededRoster(t *testing.T) {
	srv, cleanup, err := NewHTTPServer(context.Background(), testConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/players", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Alaina"`)
	assert.Contains(t, rec.Body.String(), `"name":"Tristan"`)
}

func TestNewHTTPServer_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""

	if _, _, err := NewHTTPServer(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestOpenRosterStore_BoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.RosterStore = config.RosterStoreBolt
	cfg.BoltPath = filepath.Join(t.TempDir(), "roster.db")

	repo, closeFn, err := openRosterStore(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, repo.SaveAll(ctx, player.DefaultRoster()[:3]))
	require.NoError(t, closeFn())

	repo, closeFn, err = openRosterStore(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Everly", got[2].Name)
}

func TestOpenRosterStore_CacheWrapsDurableStore(t *testing.T) {
	cfg := testConfig()
	cfg.RosterStore = config.RosterStoreBolt
	cfg.BoltPath = filepath.Join(t.TempDir(), "roster.db")
	cfg.CacheEnabled = true

	repo, closeFn, err := openRosterStore(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	if _, ok := repo.(*cacherepo.PlayerRepository); !ok {
		t.Fatalf("expected cached repository, got %T", repo)
	}
}

func TestOpenRosterStore_UnknownStore(t *testing.T) {
	cfg := testConfig()
	cfg.RosterStore = "redis"

	if _, _, err := openRosterStore(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}
