package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/riskibarqy/soccer-rotation/internal/domain/game"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/platform/logging"
)

type RosterService struct {
	playerRepo player.Repository
	gameRepo   game.Repository
	lock       *Serializer
	logger     *logging.Logger
}

func NewRosterService(
	playerRepo player.Repository,
	gameRepo game.Repository,
	lock *Serializer,
	logger *logging.Logger,
) *RosterService {
	if lock == nil {
		lock = NewSerializer()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &RosterService{
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		lock:       lock,
		logger:     logger,
	}
}

// EnsureSeeded writes the default roster when the store holds no players.
func (s *RosterService) EnsureSeeded(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.EnsureSeeded")
	defer span.End()

	var out []player.Player
	err := s.lock.Do(func() error {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		if len(players) > 0 {
			out = players
			return nil
		}

		seed := player.DefaultRoster()
		if err := s.playerRepo.SaveAll(ctx, seed); err != nil {
			return fmt.Errorf("seed default roster: %w", err)
		}
		s.logger.InfoContext(ctx, "seeded default roster", "players", len(seed))
		out = seed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *RosterService) ListPlayers(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListPlayers")
	defer span.End()

	var out []player.Player
	err := s.lock.Do(func() error {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		out = players
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// SearchPlayers ranks players whose name fuzzily contains query, closest
// match first. An empty query lists everyone.
func (s *RosterService) SearchPlayers(ctx context.Context, query string) ([]player.Player, error) {
	query = strings.TrimSpace(query)
	players, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return players, nil
	}

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]player.Player, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, players[r.OriginalIndex])
	}
	return out, nil
}

// ToggleAvailability flips one player's availability and persists the whole
// roster. Rejected while a game is in progress.
func (s *RosterService) ToggleAvailability(ctx context.Context, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ToggleAvailability")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	var out player.Player
	err := s.lock.Do(func() error {
		state, err := s.gameRepo.Get(ctx)
		if err != nil {
			return fmt.Errorf("get game state: %w", err)
		}
		if state.InProgress {
			return fmt.Errorf("%w: availability is locked until the game ends", game.ErrGameInProgress)
		}

		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}

		updated := make([]player.Player, len(players))
		copy(updated, players)

		idx := -1
		for i := range updated {
			if updated[i].ID == playerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
		}
		updated[idx].IsAvailable = !updated[idx].IsAvailable

		if err := s.playerRepo.SaveAll(ctx, updated); err != nil {
			return fmt.Errorf("save players: %w", err)
		}

		out = updated[idx]
		return nil
	})
	if err != nil {
		return player.Player{}, err
	}

	s.logger.InfoContext(ctx, "player availability toggled", "player_id", out.ID, "available", out.IsAvailable)
	return out, nil
}
