package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/soccer-rotation/internal/domain/game"
	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/platform/logging"
	"github.com/riskibarqy/soccer-rotation/internal/platform/shuffle"
)

const (
	defaultSimulationWorkers  = 4
	defaultSimulationMaxGames = 1000
)

type SimulationConfig struct {
	Workers  int
	MaxGames int
}

type SimulationInput struct {
	Games int
	// Seed makes a run reproducible. Zero picks one from the clock.
	Seed uint64
}

type SimulationResult struct {
	Games         int                    `json:"games"`
	Seed          uint64                 `json:"seed"`
	WorkerCount   int                    `json:"worker_count"`
	HalvesPerGame int                    `json:"halves_per_game"`
	Spread        float64                `json:"spread"`
	DurationMs    int64                  `json:"duration_ms"`
	Players       []SimulationPlayerStat `json:"players"`
}

type SimulationPlayerStat struct {
	Player       player.Player `json:"player"`
	MeanHalves   float64       `json:"mean_halves"`
	MinHalves    int           `json:"min_halves"`
	MaxHalves    int           `json:"max_halves"`
	GoalieHalves int           `json:"goalie_halves"`
}

// SimulationService plays synthetic games over the available roster to check
// how evenly the rotation spreads playing time.
type SimulationService struct {
	playerRepo player.Repository
	lock       *Serializer
	cfg        SimulationConfig
	logger     *logging.Logger
}

func NewSimulationService(playerRepo player.Repository, lock *Serializer, cfg SimulationConfig, logger *logging.Logger) *SimulationService {
	if lock == nil {
		lock = NewSerializer()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultSimulationWorkers
	}
	if cfg.MaxGames <= 0 {
		cfg.MaxGames = defaultSimulationMaxGames
	}

	return &SimulationService{
		playerRepo: playerRepo,
		lock:       lock,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *SimulationService) Run(ctx context.Context, input SimulationInput) (SimulationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.Run")
	defer span.End()

	if input.Games < 1 || input.Games > s.cfg.MaxGames {
		return SimulationResult{}, fmt.Errorf("%w: games must be between 1 and %d", ErrInvalidInput, s.cfg.MaxGames)
	}

	var available []player.Player
	err := s.lock.Do(func() error {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		available = player.Available(players)
		return nil
	})
	if err != nil {
		return SimulationResult{}, err
	}
	if len(available) < lineup.Size {
		return SimulationResult{}, fmt.Errorf("%w: need %d available players, have %d", lineup.ErrInsufficientPlayers, lineup.Size, len(available))
	}
	if len(available) == lineup.Size {
		return SimulationResult{}, fmt.Errorf("%w: simulations need at least one bench player", lineup.ErrNoBenchPlayers)
	}

	seed := input.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	workerCount := min(s.cfg.Workers, input.Games)
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	histories := make([][]lineup.Record, input.Games)
	errs := make([]error, input.Games)

	var workers sync.WaitGroup
	for i := 0; i < input.Games; i++ {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			histories[i], errs[i] = simulateGame(shuffle.NewSource(seed+uint64(i)), available)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return SimulationResult{}, fmt.Errorf("submit game to worker pool: %w", err)
		}
	}
	workers.Wait()

	for i, err := range errs {
		if err != nil {
			return SimulationResult{}, fmt.Errorf("simulate game %d: %w", i+1, err)
		}
	}

	result := SimulationResult{
		Games:         input.Games,
		Seed:          seed,
		WorkerCount:   workerCount,
		HalvesPerGame: game.MaxQuarters * 2,
		Players:       aggregateSimulation(available, histories),
		DurationMs:    time.Since(start).Milliseconds(),
	}
	result.Spread = simulationSpread(result.Players)

	s.logger.InfoContext(ctx, "rotation simulation finished",
		"games", result.Games,
		"seed", result.Seed,
		"workers", result.WorkerCount,
		"spread", result.Spread,
	)
	return result, nil
}

// simulateGame plays four quarters with one substitution each. Goalies are
// drawn from players who have not kept goal yet.
func simulateGame(src shuffle.Source, available []player.Player) ([]lineup.Record, error) {
	rotator := lineup.NewRotator(src)
	records := make([]lineup.Record, 0, game.MaxQuarters*2)
	kept := make(map[string]struct{}, game.MaxQuarters)

	var active lineup.Lineup
	for quarter := 1; quarter <= game.MaxQuarters; quarter++ {
		candidates := make([]player.Player, 0, len(available))
		for _, p := range available {
			if _, done := kept[p.ID]; !done {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			candidates = available
		}
		goalie := candidates[src.IntN(len(candidates))]
		kept[goalie.ID] = struct{}{}

		var err error
		if quarter == 1 {
			active, err = rotator.SelectInitial(player.Without(available, goalie.ID), goalie)
		} else {
			last := records[len(records)-1]
			active, err = rotator.GenerateQuarter(available, goalie, &last)
		}
		if err != nil {
			return nil, fmt.Errorf("quarter %d lineup: %w", quarter, err)
		}
		records = append(records, lineup.Record{Quarter: quarter, Half: lineup.HalfFirst, Players: active})

		active, _, err = rotator.Substitute(active, available)
		if err != nil {
			return nil, fmt.Errorf("quarter %d substitution: %w", quarter, err)
		}
		records = append(records, lineup.Record{Quarter: quarter, Half: lineup.HalfSecond, Players: active})
	}

	return records, nil
}

func aggregateSimulation(available []player.Player, histories [][]lineup.Record) []SimulationPlayerStat {
	stats := make([]SimulationPlayerStat, len(available))
	totals := make([]int, len(available))
	for i, p := range available {
		stats[i] = SimulationPlayerStat{Player: p, MinHalves: -1}
	}

	for _, records := range histories {
		summary := summarisePlayingTime(available, records)
		for i, row := range summary {
			played := row.FieldHalves + row.GoalieHalves
			totals[i] += played
			stats[i].GoalieHalves += row.GoalieHalves
			if stats[i].MinHalves < 0 || played < stats[i].MinHalves {
				stats[i].MinHalves = played
			}
			if played > stats[i].MaxHalves {
				stats[i].MaxHalves = played
			}
		}
	}

	for i := range stats {
		if len(histories) > 0 {
			stats[i].MeanHalves = float64(totals[i]) / float64(len(histories))
		}
		if stats[i].MinHalves < 0 {
			stats[i].MinHalves = 0
		}
	}
	return stats
}

// simulationSpread is the gap between the most and least played mean.
func simulationSpread(stats []SimulationPlayerStat) float64 {
	if len(stats) == 0 {
		return 0
	}
	lo, hi := stats[0].MeanHalves, stats[0].MeanHalves
	for _, s := range stats[1:] {
		lo = min(lo, s.MeanHalves)
		hi = max(hi, s.MeanHalves)
	}
	return hi - lo
}
