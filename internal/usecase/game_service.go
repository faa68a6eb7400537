package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/domain/game"
	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/platform/id"
	"github.com/riskibarqy/soccer-rotation/internal/platform/logging"
)

type GameEventType string

const (
	EventRosterGenerated GameEventType = "roster_generated"
	EventGameStarted     GameEventType = "game_started"
	EventSubstitution    GameEventType = "substitution"
	EventQuarterAdvanced GameEventType = "quarter_advanced"
	EventGoalieConfirmed GameEventType = "goalie_confirmed"
	EventLineupRefreshed GameEventType = "lineup_refreshed"
	EventGameEnded       GameEventType = "game_ended"
)

// GameEvent is emitted after every successful state change.
type GameEvent struct {
	Type  GameEventType
	State game.State
	At    time.Time
}

// GameObserver receives game events. Publish must not block.
type GameObserver interface {
	Publish(ctx context.Context, event GameEvent)
}

type GameService struct {
	playerRepo player.Repository
	gameRepo   game.Repository
	lock       *Serializer
	rotator    *lineup.Rotator
	idGen      id.Generator
	observer   GameObserver
	logger     *logging.Logger
	now        func() time.Time
}

func NewGameService(
	playerRepo player.Repository,
	gameRepo game.Repository,
	lock *Serializer,
	rotator *lineup.Rotator,
	idGen id.Generator,
	logger *logging.Logger,
) *GameService {
	if lock == nil {
		lock = NewSerializer()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &GameService{
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		lock:       lock,
		rotator:    rotator,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *GameService) SetObserver(observer GameObserver) {
	s.observer = observer
}

// GenerateInitialRoster picks the pre-game lineup around goalieID.
func (s *GameService) GenerateInitialRoster(ctx context.Context, goalieID string) (lineup.Lineup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GenerateInitialRoster")
	defer span.End()

	state, err := s.mutate(ctx, "generate_initial_roster", func(state *game.State, available []player.Player) (GameEventType, error) {
		return EventRosterGenerated, s.selectInitial(state, available, goalieID)
	})
	if err != nil {
		return nil, err
	}

	return state.ActiveLineup, nil
}

// StartGame locks in the pre-game lineup as the first half of quarter one.
func (s *GameService) StartGame(ctx context.Context) (game.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.StartGame")
	defer span.End()

	return s.mutate(ctx, "start_game", func(state *game.State, available []player.Player) (GameEventType, error) {
		if state.InProgress {
			return "", game.ErrGameInProgress
		}
		if state.SelectedGoalie == nil {
			return "", fmt.Errorf("%w: generate a roster before starting", game.ErrNoGoalieSelected)
		}
		if err := state.ActiveLineup.Validate(); err != nil {
			return "", fmt.Errorf("%w: %v", lineup.ErrInvalidLineupSize, err)
		}
		if state.ActiveLineup[lineup.GoalieSlot].ID != state.SelectedGoalie.ID {
			return "", fmt.Errorf("%w: lineup goalie does not match selected goalie", game.ErrInvalidGameState)
		}
		for _, p := range state.ActiveLineup {
			if _, ok := player.FindByID(available, p.ID); !ok {
				return "", fmt.Errorf("%w: player %s is no longer available, regenerate the roster", game.ErrInvalidGameState, p.ID)
			}
		}

		gameID, err := s.idGen.NewID()
		if err != nil {
			return "", fmt.Errorf("generate game id: %w", err)
		}

		first := state.ActiveLineup.Clone()
		goalie := *state.SelectedGoalie
		*state = game.State{
			ID:             gameID,
			InProgress:     true,
			CurrentQuarter: 1,
			Lineups: []lineup.Record{
				{Quarter: 1, Half: lineup.HalfFirst, Players: first.Clone()},
			},
			ActiveLineup:   first,
			SelectedGoalie: &goalie,
			StartedAt:      s.now().UTC(),
		}
		return EventGameStarted, nil
	})
}

// Substitute makes the single mid-quarter swap.
func (s *GameService) Substitute(ctx context.Context) (lineup.Lineup, lineup.Substitution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Substitute")
	defer span.End()

	var sub lineup.Substitution
	state, err := s.mutate(ctx, "substitute", func(state *game.State, available []player.Player) (GameEventType, error) {
		if err := requireActiveHalf(state); err != nil {
			return "", err
		}
		if state.IsHalfQuarter {
			return "", fmt.Errorf("%w: quarter=%d", game.ErrAlreadySubstituted, state.CurrentQuarter)
		}

		next, made, err := s.rotator.Substitute(state.ActiveLineup, available)
		if err != nil {
			return "", err
		}

		state.ActiveLineup = next
		state.IsHalfQuarter = true
		state.Lineups = append(state.Lineups, lineup.Record{
			Quarter: state.CurrentQuarter,
			Half:    lineup.HalfSecond,
			Players: next.Clone(),
		})
		sub = made
		return EventSubstitution, nil
	})
	if err != nil {
		return nil, lineup.Substitution{}, err
	}

	return state.ActiveLineup, sub, nil
}

// AdvanceQuarter closes the current quarter. From the last quarter it ends
// the game and reports ended=true; otherwise the next quarter waits for a
// goalie.
func (s *GameService) AdvanceQuarter(ctx context.Context) (game.State, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.AdvanceQuarter")
	defer span.End()

	ended := false
	state, err := s.mutate(ctx, "advance_quarter", func(state *game.State, _ []player.Player) (GameEventType, error) {
		if err := requireActiveHalf(state); err != nil {
			return "", err
		}
		if !state.IsHalfQuarter {
			return "", fmt.Errorf("%w: quarter=%d", game.ErrSubstitutionRequired, state.CurrentQuarter)
		}

		if state.CurrentQuarter >= game.MaxQuarters {
			state.InProgress = false
			state.Ended = true
			state.AwaitingGoalie = false
			state.EndedAt = s.now().UTC()
			ended = true
			return EventGameEnded, nil
		}

		state.CurrentQuarter++
		state.IsHalfQuarter = false
		state.AwaitingGoalie = true
		state.SelectedGoalie = nil
		return EventQuarterAdvanced, nil
	})
	if err != nil {
		return game.State{}, false, err
	}

	return state, ended, nil
}

// ConfirmGoalie sets the goalie for the quarter waiting on one and generates
// its lineup. Before a game it behaves like GenerateInitialRoster.
func (s *GameService) ConfirmGoalie(ctx context.Context, goalieID string) (lineup.Lineup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ConfirmGoalie")
	defer span.End()

	state, err := s.mutate(ctx, "confirm_goalie", func(state *game.State, available []player.Player) (GameEventType, error) {
		if !state.InProgress {
			return EventRosterGenerated, s.selectInitial(state, available, goalieID)
		}
		if !state.AwaitingGoalie {
			return "", fmt.Errorf("%w: goalie already set for quarter %d", game.ErrInvalidGameState, state.CurrentQuarter)
		}

		goalie, err := resolveGoalie(available, goalieID)
		if err != nil {
			return "", err
		}

		var last *lineup.Record
		if rec, ok := state.LastRecord(); ok {
			last = &rec
		}
		next, err := s.rotator.GenerateQuarter(available, goalie, last)
		if err != nil {
			return "", err
		}

		state.ActiveLineup = next
		state.SelectedGoalie = &goalie
		state.AwaitingGoalie = false
		state.Lineups = append(state.Lineups, lineup.Record{
			Quarter: state.CurrentQuarter,
			Half:    lineup.HalfFirst,
			Players: next.Clone(),
		})
		return EventGoalieConfirmed, nil
	})
	if err != nil {
		return nil, err
	}

	return state.ActiveLineup, nil
}

// RefreshCurrentLineup re-randomises the lineup of the current phase without
// advancing the game.
func (s *GameService) RefreshCurrentLineup(ctx context.Context) (lineup.Lineup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.RefreshCurrentLineup")
	defer span.End()

	state, err := s.mutate(ctx, "refresh_lineup", func(state *game.State, available []player.Player) (GameEventType, error) {
		switch state.Phase() {
		case game.PhaseAwaitingGoalie:
			return "", fmt.Errorf("%w: confirm a goalie for quarter %d first", game.ErrNoGoalieSelected, state.CurrentQuarter)
		case game.PhaseFirstHalf:
			return EventLineupRefreshed, s.refreshFirstHalf(state, available)
		case game.PhaseSecondHalf:
			return EventLineupRefreshed, s.refreshSecondHalf(state)
		default:
			if state.SelectedGoalie == nil {
				return "", game.ErrNoGoalieSelected
			}
			return EventLineupRefreshed, s.selectInitial(state, available, state.SelectedGoalie.ID)
		}
	})
	if err != nil {
		return nil, err
	}

	return state.ActiveLineup, nil
}

func (s *GameService) GetState(ctx context.Context) (game.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GetState")
	defer span.End()

	var out game.State
	err := s.lock.Do(func() error {
		state, err := s.gameRepo.Get(ctx)
		if err != nil {
			return fmt.Errorf("get game state: %w", err)
		}
		out = state.Clone()
		return nil
	})
	return out, err
}

// Snapshot hands fn the current state while holding the lock that every
// transition and its Publish run under, so whatever fn registers sees each
// later event exactly once. fn must not call back into the services.
func (s *GameService) Snapshot(ctx context.Context, fn func(state game.State) error) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Snapshot")
	defer span.End()

	return s.lock.Do(func() error {
		state, err := s.gameRepo.Get(ctx)
		if err != nil {
			return fmt.Errorf("get game state: %w", err)
		}
		return fn(state.Clone())
	})
}

func (s *GameService) GetHistory(ctx context.Context) ([]lineup.Record, error) {
	state, err := s.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if state.Lineups == nil {
		return []lineup.Record{}, nil
	}
	return state.Lineups, nil
}

func (s *GameService) selectInitial(state *game.State, available []player.Player, goalieID string) error {
	if state.InProgress {
		return fmt.Errorf("%w: roster cannot be regenerated mid-game", game.ErrGameInProgress)
	}
	if len(available) < lineup.Size {
		return fmt.Errorf("%w: need %d available players, have %d", lineup.ErrInsufficientPlayers, lineup.Size, len(available))
	}

	goalie, err := resolveGoalie(available, goalieID)
	if err != nil {
		return err
	}

	next, err := s.rotator.SelectInitial(player.Without(available, goalie.ID), goalie)
	if err != nil {
		return err
	}

	state.ActiveLineup = next
	state.SelectedGoalie = &goalie
	return nil
}

func (s *GameService) refreshFirstHalf(state *game.State, available []player.Player) error {
	idx := state.FindRecord(state.CurrentQuarter, lineup.HalfFirst)
	if idx < 0 || state.SelectedGoalie == nil {
		return fmt.Errorf("%w: no first-half record for quarter %d", game.ErrInvalidGameState, state.CurrentQuarter)
	}

	// The record being replaced is the rotation history, so players it left
	// on the bench get priority and no earlier goalie is pulled back in.
	current := state.Lineups[idx].Clone()
	next, err := s.rotator.GenerateQuarter(available, *state.SelectedGoalie, &current)
	if err != nil {
		return err
	}

	state.Lineups[idx].Players = next.Clone()
	state.ActiveLineup = next
	return nil
}

func (s *GameService) refreshSecondHalf(state *game.State) error {
	fi := state.FindRecord(state.CurrentQuarter, lineup.HalfFirst)
	si := state.FindRecord(state.CurrentQuarter, lineup.HalfSecond)
	if fi < 0 || si < 0 {
		return fmt.Errorf("%w: both halves of quarter %d are required", game.ErrInvalidGameState, state.CurrentQuarter)
	}

	next, err := s.rotator.RefreshAfterSubstitution(state.Lineups[fi].Players, state.Lineups[si].Players)
	if err != nil {
		return err
	}

	state.Lineups[si].Players = next.Clone()
	state.ActiveLineup = next
	return nil
}

// mutate runs fn against a copy of the current state and saves it only when
// fn succeeds.
func (s *GameService) mutate(
	ctx context.Context,
	operation string,
	fn func(state *game.State, available []player.Player) (GameEventType, error),
) (game.State, error) {
	var out game.State
	err := s.lock.Do(func() error {
		current, err := s.gameRepo.Get(ctx)
		if err != nil {
			return fmt.Errorf("get game state: %w", err)
		}
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}

		next := current.Clone()
		eventType, err := fn(&next, player.Available(players))
		if err != nil {
			s.logger.WarnContext(ctx, "game transition rejected",
				"operation", operation,
				"phase", current.Phase(),
				"quarter", current.CurrentQuarter,
				"error", err,
			)
			return err
		}
		if err := s.gameRepo.Save(ctx, next); err != nil {
			return fmt.Errorf("save game state: %w", err)
		}

		s.logger.InfoContext(ctx, "game transition applied",
			"operation", operation,
			"game_id", next.ID,
			"phase", next.Phase(),
			"quarter", next.CurrentQuarter,
		)
		out = next.Clone()
		if s.observer != nil {
			s.observer.Publish(ctx, GameEvent{Type: eventType, State: next, At: s.now().UTC()})
		}
		return nil
	})
	if err != nil {
		return game.State{}, err
	}

	return out, nil
}

func requireActiveHalf(state *game.State) error {
	if !state.InProgress {
		return game.ErrGameNotInProgress
	}
	if state.AwaitingGoalie {
		return fmt.Errorf("%w: confirm a goalie for quarter %d first", game.ErrNoGoalieSelected, state.CurrentQuarter)
	}
	return nil
}

func resolveGoalie(available []player.Player, goalieID string) (player.Player, error) {
	goalieID = strings.TrimSpace(goalieID)
	if goalieID == "" {
		return player.Player{}, fmt.Errorf("%w: goalie id is required", ErrInvalidInput)
	}

	goalie, ok := player.FindByID(available, goalieID)
	if !ok {
		return player.Player{}, fmt.Errorf("%w: goalie %s is not an available player", ErrInvalidInput, goalieID)
	}
	return goalie, nil
}
