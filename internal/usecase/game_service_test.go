package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/domain/game"
	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/memory"
	gamemock "github.com/riskibarqy/soccer-rotation/internal/mocks/domain/game"
	"github.com/riskibarqy/soccer-rotation/internal/platform/id"
	"github.com/riskibarqy/soccer-rotation/internal/platform/shuffle"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []GameEventType
}

func (o *recordingObserver) Publish(_ context.Context, event GameEvent) {
	o.mu.Lock()
	o.events = append(o.events, event.Type)
	o.mu.Unlock()
}

type gameFixture struct {
	games   *GameService
	roster  *RosterService
	players *memory.PlayerRepository
	state   *memory.GameRepository
}

func newGameFixture(t *testing.T, players []player.Player, seed uint64) gameFixture {
	t.Helper()

	playerRepo := memory.NewPlayerRepository(players)
	gameRepo := memory.NewGameRepository()
	lock := NewSerializer()

	return gameFixture{
		games: NewGameService(
			playerRepo,
			gameRepo,
			lock,
			lineup.NewRotator(shuffle.NewSource(seed)),
			&id.SequenceGenerator{Prefix: "game-"},
			nil,
		),
		roster:  NewRosterService(playerRepo, gameRepo, lock, nil),
		players: playerRepo,
		state:   gameRepo,
	}
}

func assertLineup(t *testing.T, l lineup.Lineup, goalieID string) {
	t.Helper()
	if err := l.Validate(); err != nil {
		t.Fatalf("invalid lineup %v: %v", l.IDs(), err)
	}
	if l[0].ID != goalieID {
		t.Fatalf("expected goalie %s, got %s", goalieID, l[0].ID)
	}
}

func TestGameService_FullGame(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newGameFixture(t, player.DefaultRoster(), 2024)
	observer := &recordingObserver{}
	fx.games.SetObserver(observer)

	initial, err := fx.games.GenerateInitialRoster(ctx, "1")
	if err != nil {
		t.Fatalf("generate initial roster: %v", err)
	}
	assertLineup(t, initial, "1")

	started, err := fx.games.StartGame(ctx)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	if started.ID != "game-1" || started.Phase() != game.PhaseFirstHalf || started.CurrentQuarter != 1 {
		t.Fatalf("unexpected started state: %+v", started)
	}

	goalie := "1"
	for quarter := 1; quarter <= game.MaxQuarters; quarter++ {
		before, _ := fx.games.GetState(ctx)
		active, sub, err := fx.games.Substitute(ctx)
		if err != nil {
			t.Fatalf("quarter %d: substitute: %v", quarter, err)
		}
		assertLineup(t, active, goalie)

		shared := 0
		for _, p := range active {
			if before.ActiveLineup.Contains(p.ID) {
				shared++
			}
		}
		if shared != lineup.Size-len(sub.In) {
			t.Fatalf("quarter %d: expected %d retained players, got %d", quarter, lineup.Size-len(sub.In), shared)
		}

		state, ended, err := fx.games.AdvanceQuarter(ctx)
		if err != nil {
			t.Fatalf("quarter %d: advance: %v", quarter, err)
		}
		if quarter == game.MaxQuarters {
			if !ended || state.Phase() != game.PhaseEnded || state.InProgress {
				t.Fatalf("expected game to end after quarter 4: %+v", state)
			}
			break
		}
		if ended || state.Phase() != game.PhaseAwaitingGoalie || state.CurrentQuarter != quarter+1 {
			t.Fatalf("quarter %d: unexpected state after advance: %+v", quarter, state)
		}

		goalie = strconv.Itoa(quarter + 1)
		next, err := fx.games.ConfirmGoalie(ctx, goalie)
		if err != nil {
			t.Fatalf("quarter %d: confirm goalie: %v", quarter+1, err)
		}
		assertLineup(t, next, goalie)
	}

	history, err := fx.games.GetHistory(ctx)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 8 {
		t.Fatalf("expected 8 records, got %d", len(history))
	}
	for i, rec := range history {
		wantQuarter := i/2 + 1
		wantHalf := lineup.HalfFirst
		if i%2 == 1 {
			wantHalf = lineup.HalfSecond
		}
		if rec.Quarter != wantQuarter || rec.Half != wantHalf {
			t.Fatalf("record %d: got q%d %s want q%d %s", i, rec.Quarter, rec.Half, wantQuarter, wantHalf)
		}
	}

	want := []GameEventType{
		EventRosterGenerated, EventGameStarted,
		EventSubstitution, EventQuarterAdvanced, EventGoalieConfirmed,
		EventSubstitution, EventQuarterAdvanced, EventGoalieConfirmed,
		EventSubstitution, EventQuarterAdvanced, EventGoalieConfirmed,
		EventSubstitution, EventGameEnded,
	}
	require.Equal(t, want, observer.events)

	summary, err := fx.games.PlayingTime(ctx)
	if err != nil {
		t.Fatalf("playing time: %v", err)
	}
	played := 0
	for _, row := range summary {
		if row.FieldHalves+row.GoalieHalves+row.BenchHalves != 8 {
			t.Fatalf("halves do not add up for %s: %+v", row.Player.ID, row)
		}
		played += row.FieldHalves + row.GoalieHalves
	}
	if played != 8*lineup.Size {
		t.Fatalf("expected %d placements, got %d", 8*lineup.Size, played)
	}

	if _, err := fx.games.GenerateInitialRoster(ctx, "5"); err != nil {
		t.Fatalf("roster generation should be re-enabled after the game: %v", err)
	}
}

func TestGameService_RefreshFirstHalfRotatesBenchIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for seed := uint64(1); seed <= 25; seed++ {
		fx := newGameFixture(t, player.DefaultRoster(), seed)

		if _, err := fx.games.GenerateInitialRoster(ctx, "1"); err != nil {
			t.Fatalf("seed %d: generate initial roster: %v", seed, err)
		}
		if _, err := fx.games.StartGame(ctx); err != nil {
			t.Fatalf("seed %d: start game: %v", seed, err)
		}
		if _, _, err := fx.games.Substitute(ctx); err != nil {
			t.Fatalf("seed %d: substitute: %v", seed, err)
		}
		if _, _, err := fx.games.AdvanceQuarter(ctx); err != nil {
			t.Fatalf("seed %d: advance: %v", seed, err)
		}
		if _, err := fx.games.ConfirmGoalie(ctx, "2"); err != nil {
			t.Fatalf("seed %d: confirm goalie: %v", seed, err)
		}

		before, err := fx.games.GetState(ctx)
		if err != nil {
			t.Fatalf("seed %d: get state: %v", seed, err)
		}

		refreshed, err := fx.games.RefreshCurrentLineup(ctx)
		if err != nil {
			t.Fatalf("seed %d: refresh: %v", seed, err)
		}
		assertLineup(t, refreshed, "2")

		after, err := fx.games.GetState(ctx)
		if err != nil {
			t.Fatalf("seed %d: get state: %v", seed, err)
		}
		if after.Phase() != game.PhaseFirstHalf || after.CurrentQuarter != 2 {
			t.Fatalf("seed %d: refresh advanced the game: phase=%s quarter=%d", seed, after.Phase(), after.CurrentQuarter)
		}
		require.Len(t, after.Lineups, len(before.Lineups))
		idx := after.FindRecord(2, lineup.HalfFirst)
		require.Equal(t, len(after.Lineups)-1, idx)
		require.Equal(t, refreshed.IDs(), after.Lineups[idx].Players.IDs())
		require.Equal(t, refreshed.IDs(), after.ActiveLineup.IDs())

		// Everyone benched by the replaced lineup comes in; one field player stays.
		benched := 0
		for _, p := range player.DefaultRoster() {
			if before.ActiveLineup.Contains(p.ID) {
				continue
			}
			benched++
			if !refreshed.Contains(p.ID) {
				t.Fatalf("seed %d: benched player %s left out of %v", seed, p.ID, refreshed.IDs())
			}
		}
		retained := 0
		for _, p := range refreshed.Field() {
			if before.ActiveLineup.Contains(p.ID) {
				retained++
			}
		}
		if benched != 5 || retained != lineup.FieldSize-benched {
			t.Fatalf("seed %d: benched=%d retained=%d", seed, benched, retained)
		}
	}
}

func TestGameService_SnapshotHoldsTransitionsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newGameFixture(t, player.DefaultRoster(), 5)
	observer := &recordingObserver{}
	fx.games.SetObserver(observer)

	done := make(chan error, 1)
	err := fx.games.Snapshot(ctx, func(state game.State) error {
		if state.Phase() != game.PhaseNotStarted {
			t.Errorf("unexpected snapshot phase %s", state.Phase())
		}
		go func() {
			_, err := fx.games.GenerateInitialRoster(ctx, "1")
			done <- err
		}()
		time.Sleep(20 * time.Millisecond)

		observer.mu.Lock()
		defer observer.mu.Unlock()
		if len(observer.events) != 0 {
			t.Errorf("transition published while the snapshot was held: %v", observer.events)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("generate initial roster: %v", err)
	}
	require.Equal(t, []GameEventType{EventRosterGenerated}, observer.events)
}

func TestGameService_SnapshotPropagatesErrors(t *testing.T) {
	t.Parallel()

	want := errors.New("subscriber gone")
	fx := newGameFixture(t, player.DefaultRoster(), 5)
	err := fx.games.Snapshot(context.Background(), func(game.State) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestGameService_InsufficientPlayers(t *testing.T) {
	t.Parallel()

	roster := player.DefaultRoster()
	for i := 5; i < len(roster); i++ {
		roster[i].IsAvailable = false
	}
	ctx := context.Background()
	fx := newGameFixture(t, roster, 1)

	_, err := fx.games.GenerateInitialRoster(ctx, "1")
	if !errors.Is(err, lineup.ErrInsufficientPlayers) {
		t.Fatalf("expected ErrInsufficientPlayers, got %v", err)
	}

	state, _ := fx.games.GetState(ctx)
	if state.SelectedGoalie != nil || len(state.ActiveLineup) != 0 {
		t.Fatalf("state mutated on failure: %+v", state)
	}
}

func TestGameService_GoalieMustBeAvailable(t *testing.T) {
	t.Parallel()

	roster := player.DefaultRoster()
	roster[0].IsAvailable = false
	fx := newGameFixture(t, roster, 1)

	_, err := fx.games.GenerateInitialRoster(context.Background(), "1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGameService_RejectedTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newGameFixture(t, player.DefaultRoster(), 7)

	if _, err := fx.games.StartGame(ctx); !errors.Is(err, game.ErrNoGoalieSelected) {
		t.Fatalf("start without goalie: expected ErrNoGoalieSelected, got %v", err)
	}
	if _, _, err := fx.games.Substitute(ctx); !errors.Is(err, game.ErrGameNotInProgress) {
		t.Fatalf("substitute before start: expected ErrGameNotInProgress, got %v", err)
	}
	if _, err := fx.games.RefreshCurrentLineup(ctx); !errors.Is(err, game.ErrNoGoalieSelected) {
		t.Fatalf("refresh without goalie: expected ErrNoGoalieSelected, got %v", err)
	}

	if _, err := fx.games.GenerateInitialRoster(ctx, "4"); err != nil {
		t.Fatalf("generate initial roster: %v", err)
	}
	if _, err := fx.games.StartGame(ctx); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := fx.games.StartGame(ctx); !errors.Is(err, game.ErrGameInProgress) {
		t.Fatalf("second start: expected ErrGameInProgress, got %v", err)
	}
	if _, err := fx.games.GenerateInitialRoster(ctx, "5"); !errors.Is(err, game.ErrGameInProgress) {
		t.Fatalf("roster mid-game: expected ErrGameInProgress, got %v", err)
	}
	if _, err := fx.roster.ToggleAvailability(ctx, "5"); !errors.Is(err, game.ErrGameInProgress) {
		t.Fatalf("toggle mid-game: expected ErrGameInProgress, got %v", err)
	}
	if _, _, err := fx.games.AdvanceQuarter(ctx); !errors.Is(err, game.ErrSubstitutionRequired) {
		t.Fatalf("advance before substitution: expected ErrSubstitutionRequired, got %v", err)
	}
	if _, err := fx.games.ConfirmGoalie(ctx, "6"); !errors.Is(err, game.ErrInvalidGameState) {
		t.Fatalf("confirm while not awaiting: expected ErrInvalidGameState, got %v", err)
	}

	if _, _, err := fx.games.Substitute(ctx); err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if _, _, err := fx.games.Substitute(ctx); !errors.Is(err, game.ErrAlreadySubstituted) {
		t.Fatalf("second substitute: expected ErrAlreadySubstituted, got %v", err)
	}

	if _, _, err := fx.games.AdvanceQuarter(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, _, err := fx.games.Substitute(ctx); !errors.Is(err, game.ErrNoGoalieSelected) {
		t.Fatalf("substitute awaiting goalie: expected ErrNoGoalieSelected, got %v", err)
	}
	if _, _, err := fx.games.AdvanceQuarter(ctx); !errors.Is(err, game.ErrNoGoalieSelected) {
		t.Fatalf("advance awaiting goalie: expected ErrNoGoalieSelected, got %v", err)
	}
	if _, err := fx.games.RefreshCurrentLineup(ctx); !errors.Is(err, game.ErrNoGoalieSelected) {
		t.Fatalf("refresh awaiting goalie: expected ErrNoGoalieSelected, got %v", err)
	}
	if _, err := fx.games.ConfirmGoalie(ctx, "404"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown goalie: expected ErrInvalidInput, got %v", err)
	}

	state, _ := fx.games.GetState(ctx)
	if state.Phase() != game.PhaseAwaitingGoalie || len(state.Lineups) != 2 {
		t.Fatalf("rejected transitions mutated state: phase=%s records=%d", state.Phase(), len(state.Lineups))
	}
}

func TestGameService_SubstituteWithoutBench(t *testing.T) {
	t.Parallel()

	roster := player.DefaultRoster()[:7]
	ctx := context.Background()
	fx := newGameFixture(t, roster, 3)

	if _, err := fx.games.GenerateInitialRoster(ctx, "1"); err != nil {
		t.Fatalf("generate initial roster: %v", err)
	}
	if _, err := fx.games.StartGame(ctx); err != nil {
		t.Fatalf("start game: %v", err)
	}

	_, _, err := fx.games.Substitute(ctx)
	if !errors.Is(err, lineup.ErrNoBenchPlayers) {
		t.Fatalf("expected ErrNoBenchPlayers, got %v", err)
	}
	state, _ := fx.games.GetState(ctx)
	if state.IsHalfQuarter || len(state.Lineups) != 1 {
		t.Fatalf("state mutated on failed substitution: %+v", state)
	}
}

func TestGameService_RefreshCurrentLineup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newGameFixture(t, player.DefaultRoster(), 99)

	if _, err := fx.games.GenerateInitialRoster(ctx, "2"); err != nil {
		t.Fatalf("generate initial roster: %v", err)
	}
	pre, err := fx.games.RefreshCurrentLineup(ctx)
	if err != nil {
		t.Fatalf("pre-game refresh: %v", err)
	}
	assertLineup(t, pre, "2")

	if _, err := fx.games.StartGame(ctx); err != nil {
		t.Fatalf("start game: %v", err)
	}
	first, err := fx.games.RefreshCurrentLineup(ctx)
	if err != nil {
		t.Fatalf("first-half refresh: %v", err)
	}
	assertLineup(t, first, "2")

	state, _ := fx.games.GetState(ctx)
	if len(state.Lineups) != 1 || state.Lineups[0].Players.IDs()[3] != first.IDs()[3] {
		t.Fatalf("first-half refresh must overwrite the current record: %+v", state.Lineups)
	}

	second, _, err := fx.games.Substitute(ctx)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	refreshed, err := fx.games.RefreshCurrentLineup(ctx)
	if err != nil {
		t.Fatalf("second-half refresh: %v", err)
	}
	assertLineup(t, refreshed, "2")
	for _, id := range second.IDs() {
		if !refreshed.Contains(id) {
			t.Fatalf("refresh changed membership: before=%v after=%v", second.IDs(), refreshed.IDs())
		}
	}

	state, _ = fx.games.GetState(ctx)
	if !state.IsHalfQuarter || len(state.Lineups) != 2 {
		t.Fatalf("refresh must not advance state: %+v", state)
	}
	if got := state.Lineups[1].Players.IDs(); got[5] != refreshed.IDs()[5] {
		t.Fatalf("second-half record not overwritten: %v vs %v", got, refreshed.IDs())
	}
}

func TestGameService_SaveFailureLeavesStateUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)
	boom := errors.New("store down")

	gameRepo.On("Get", mock.Anything).Return(game.State{}, nil).Once()
	gameRepo.On("Save", mock.Anything, mock.Anything).Return(boom).Once()

	service := NewGameService(
		memory.NewPlayerRepository(player.DefaultRoster()),
		gameRepo,
		nil,
		lineup.NewRotator(shuffle.NewSource(1)),
		&id.SequenceGenerator{},
		nil,
	)
	observer := &recordingObserver{}
	service.SetObserver(observer)

	_, err := service.GenerateInitialRoster(ctx, "1")
	require.ErrorIs(t, err, boom)
	require.Empty(t, observer.events)
}

func TestSummarisePlayingTime(t *testing.T) {
	t.Parallel()

	roster := player.DefaultRoster()[:8]
	l := lineup.Lineup(roster[:7])
	records := []lineup.Record{
		{Quarter: 1, Half: lineup.HalfFirst, Players: l},
		{Quarter: 1, Half: lineup.HalfSecond, Players: l},
	}

	got := summarisePlayingTime(roster, records)
	if got[0].GoalieHalves != 2 || got[0].FieldHalves != 0 {
		t.Fatalf("unexpected goalie summary: %+v", got[0])
	}
	if got[1].FieldHalves != 2 || got[1].BenchHalves != 0 {
		t.Fatalf("unexpected field summary: %+v", got[1])
	}
	if got[7].BenchHalves != 2 {
		t.Fatalf("unexpected bench summary: %+v", got[7])
	}
}
