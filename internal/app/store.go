package app

import (
	"context"
	"fmt"

	"github.com/riskibarqy/soccer-rotation/internal/config"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	boltrepo "github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/bolt"
	cacherepo "github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/soccer-rotation/internal/platform/cache"
	"github.com/riskibarqy/soccer-rotation/internal/platform/logging"
	"github.com/riskibarqy/soccer-rotation/internal/platform/resilience"
)

// openRosterStore builds the player repository selected by ROSTER_STORE.
// Durable stores get a read cache in front when CACHE_ENABLED is set.
func openRosterStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (player.Repository, func() error, error) {
	var (
		repo    player.Repository
		closeFn = func() error { return nil }
	)

	switch cfg.RosterStore {
	case config.RosterStoreMemory, "":
		return memory.NewPlayerRepository(nil), closeFn, nil
	case config.RosterStoreBolt:
		db, err := boltrepo.Open(cfg.BoltPath, cfg.BoltOpenTimeout)
		if err != nil {
			return nil, nil, err
		}
		repo = boltrepo.NewPlayerRepository(db, cfg.RosterKey)
		closeFn = db.Close
		logger.Info("bolt roster store opened", "path", cfg.BoltPath)
	case config.RosterStorePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Enabled:          cfg.DBCircuitEnabled,
			FailureThreshold: cfg.DBCircuitFailureCount,
			OpenTimeout:      cfg.DBCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.DBCircuitHalfOpenMaxReq,
		})
		repo = postgres.NewPlayerRepository(db, cfg.RosterKey, breaker)
		closeFn = db.Close
		logger.Info("postgres roster store opened",
			"db_name", dbNameFromURL(cfg.DBURL),
			"circuit_enabled", cfg.DBCircuitEnabled,
		)
	default:
		return nil, nil, fmt.Errorf("unsupported roster store %q", cfg.RosterStore)
	}

	if cfg.CacheEnabled {
		repo = cacherepo.NewPlayerRepository(repo, basecache.NewStore[[]player.Player](cfg.CacheTTL))
		logger.Info("roster read cache enabled", "ttl", cfg.CacheTTL.String())
	}
	return repo, closeFn, nil
}
