package game

import (
	"testing"

	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
)

func TestStatePhase(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Phase
	}{
		{name: "zero", state: State{}, want: PhaseNotStarted},
		{name: "first half", state: State{InProgress: true, CurrentQuarter: 1}, want: PhaseFirstHalf},
		{name: "second half", state: State{InProgress: true, CurrentQuarter: 1, IsHalfQuarter: true}, want: PhaseSecondHalf},
		{name: "awaiting goalie", state: State{InProgress: true, CurrentQuarter: 2, AwaitingGoalie: true}, want: PhaseAwaitingGoalie},
		{name: "ended", state: State{Ended: true, CurrentQuarter: 4}, want: PhaseEnded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Phase(); got != tc.want {
				t.Fatalf("unexpected phase: got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestStateClone_IsDeep(t *testing.T) {
	goalie := player.Player{ID: "1", Name: "A", IsAvailable: true}
	s := State{
		ActiveLineup:   lineup.Lineup{goalie},
		Lineups:        []lineup.Record{{Quarter: 1, Half: lineup.HalfFirst, Players: lineup.Lineup{goalie}}},
		SelectedGoalie: &goalie,
	}

	c := s.Clone()
	c.ActiveLineup[0].Name = "changed"
	c.Lineups[0].Players[0].Name = "changed"
	c.SelectedGoalie.Name = "changed"

	if s.ActiveLineup[0].Name != "A" || s.Lineups[0].Players[0].Name != "A" || s.SelectedGoalie.Name != "A" {
		t.Fatalf("clone shares memory with original: %+v", s)
	}
}

func TestStateFindAndLastRecord(t *testing.T) {
	s := State{
		CurrentQuarter: 2,
		Lineups: []lineup.Record{
			{Quarter: 1, Half: lineup.HalfFirst},
			{Quarter: 1, Half: lineup.HalfSecond},
			{Quarter: 2, Half: lineup.HalfFirst},
		},
	}

	if idx := s.FindRecord(2, lineup.HalfFirst); idx != 2 {
		t.Fatalf("unexpected record index: %d", idx)
	}
	if idx := s.FindRecord(2, lineup.HalfSecond); idx != -1 {
		t.Fatalf("expected missing record, got index %d", idx)
	}

	got, ok := s.LastRecord()
	if !ok || got.Quarter != 2 || got.Half != lineup.HalfFirst {
		t.Fatalf("unexpected last record: %+v ok=%v", got, ok)
	}

	if _, ok := (State{}).LastRecord(); ok {
		t.Fatalf("empty state has no last record")
	}
}
