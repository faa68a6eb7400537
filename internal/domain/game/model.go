package game

import (
	"errors"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
)

const MaxQuarters = 4

var (
	ErrNoGoalieSelected     = errors.New("no goalie selected")
	ErrAlreadySubstituted   = errors.New("substitution already made this quarter")
	ErrSubstitutionRequired = errors.New("substitution required before advancing")
	ErrInvalidGameState     = errors.New("invalid game state")
	ErrGameInProgress       = errors.New("game in progress")
	ErrGameNotInProgress    = errors.New("game not in progress")
)

type Phase string

const (
	PhaseNotStarted     Phase = "not_started"
	PhaseFirstHalf      Phase = "first_half"
	PhaseSecondHalf     Phase = "second_half"
	PhaseAwaitingGoalie Phase = "awaiting_goalie"
	PhaseEnded          Phase = "ended"
)

// State is the single game tracked by the service.
type State struct {
	ID             string
	InProgress     bool
	CurrentQuarter int
	IsHalfQuarter  bool
	AwaitingGoalie bool
	Ended          bool
	Lineups        []lineup.Record
	ActiveLineup   lineup.Lineup
	SelectedGoalie *player.Player
	StartedAt      time.Time
	EndedAt        time.Time
}

func (s State) Phase() Phase {
	switch {
	case s.InProgress && s.AwaitingGoalie:
		return PhaseAwaitingGoalie
	case s.InProgress && s.IsHalfQuarter:
		return PhaseSecondHalf
	case s.InProgress:
		return PhaseFirstHalf
	case s.Ended:
		return PhaseEnded
	default:
		return PhaseNotStarted
	}
}

// CurrentHalf is the half the active lineup belongs to.
func (s State) CurrentHalf() lineup.Half {
	if s.IsHalfQuarter {
		return lineup.HalfSecond
	}
	return lineup.HalfFirst
}

// FindRecord returns the index of the (quarter, half) record, or -1.
func (s State) FindRecord(quarter int, half lineup.Half) int {
	for i, r := range s.Lineups {
		if r.Quarter == quarter && r.Half == half {
			return i
		}
	}
	return -1
}

// LastRecord is the most recently appended record.
func (s State) LastRecord() (lineup.Record, bool) {
	if len(s.Lineups) == 0 {
		return lineup.Record{}, false
	}
	return s.Lineups[len(s.Lineups)-1], true
}

func (s State) Clone() State {
	out := s
	out.ActiveLineup = s.ActiveLineup.Clone()
	if s.Lineups != nil {
		out.Lineups = make([]lineup.Record, 0, len(s.Lineups))
		for _, r := range s.Lineups {
			out.Lineups = append(out.Lineups, r.Clone())
		}
	}
	if s.SelectedGoalie != nil {
		goalie := *s.SelectedGoalie
		out.SelectedGoalie = &goalie
	}
	return out
}
