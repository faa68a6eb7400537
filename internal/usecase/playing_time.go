package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
)

type PlayingTime struct {
	Player       player.Player `json:"player"`
	FieldHalves  int           `json:"field_halves"`
	GoalieHalves int           `json:"goalie_halves"`
	BenchHalves  int           `json:"bench_halves"`
}

// PlayingTime counts, for every roster player, the recorded halves spent in
// the field, in goal and on the bench.
func (s *GameService) PlayingTime(ctx context.Context) ([]PlayingTime, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.PlayingTime")
	defer span.End()

	var (
		roster  []player.Player
		records []lineup.Record
	)
	err := s.lock.Do(func() error {
		players, err := s.playerRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		state, err := s.gameRepo.Get(ctx)
		if err != nil {
			return fmt.Errorf("get game state: %w", err)
		}
		roster = players
		records = state.Clone().Lineups
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summarisePlayingTime(roster, records), nil
}

func summarisePlayingTime(roster []player.Player, records []lineup.Record) []PlayingTime {
	index := make(map[string]int, len(roster))
	out := make([]PlayingTime, 0, len(roster))
	for i, p := range roster {
		index[p.ID] = i
		out = append(out, PlayingTime{Player: p})
	}

	for _, rec := range records {
		for slot, p := range rec.Players {
			i, ok := index[p.ID]
			if !ok {
				continue
			}
			if slot == lineup.GoalieSlot {
				out[i].GoalieHalves++
				continue
			}
			out[i].FieldHalves++
		}
	}

	for i := range out {
		out[i].BenchHalves = len(records) - out[i].FieldHalves - out[i].GoalieHalves
	}
	return out
}
