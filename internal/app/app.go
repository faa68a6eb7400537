package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/config"
	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/soccer-rotation/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/soccer-rotation/internal/platform/id"
	"github.com/riskibarqy/soccer-rotation/internal/platform/logging"
	"github.com/riskibarqy/soccer-rotation/internal/platform/shuffle"
	"github.com/riskibarqy/soccer-rotation/internal/usecase"
)

// NewHTTPServer wires the roster store, services and router. The returned
// cleanup closes the event stream and the store.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	playerRepo, closeStore, err := openRosterStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	gameRepo := memory.NewGameRepository()
	lock := usecase.NewSerializer()

	seed := cfg.RotationSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	rosterSvc := usecase.NewRosterService(playerRepo, gameRepo, lock, logger)
	gameSvc := usecase.NewGameService(
		playerRepo,
		gameRepo,
		lock,
		lineup.NewRotator(shuffle.NewSource(seed)),
		idgen.NewUUIDGenerator(),
		logger,
	)
	simulationSvc := usecase.NewSimulationService(playerRepo, lock, usecase.SimulationConfig{
		Workers:  cfg.SimulationWorkers,
		MaxGames: cfg.SimulationMaxGames,
	}, logger)

	roster, err := rosterSvc.EnsureSeeded(ctx)
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("seed roster: %w", err)
	}
	logger.Info("roster loaded",
		"store", cfg.RosterStore,
		"key", cfg.RosterKey,
		"players", len(roster),
		"rotation_seed", seed,
	)

	events := httpapi.NewEventHub(logger, cfg.CORSAllowedOrigins)
	gameSvc.SetObserver(events)

	handler := httpapi.NewHandler(rosterSvc, gameSvc, simulationSvc, events, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	cleanup := func() error {
		events.Close()
		return closeStore()
	}
	return server, cleanup, nil
}
