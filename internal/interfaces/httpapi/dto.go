package httpapi

import (
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/domain/game"
	"github.com/riskibarqy/soccer-rotation/internal/domain/lineup"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/usecase"
)

type goalieRequest struct {
	GoalieID string `json:"goalie_id" validate:"required"`
}

type simulationRequest struct {
	Games int    `json:"games" validate:"required,min=1"`
	Seed  uint64 `json:"seed"`
}

type playerDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"is_available"`
}

type lineupSlotDTO struct {
	Slot     int       `json:"slot"`
	Position string    `json:"position"`
	Player   playerDTO `json:"player"`
}

type lineupRecordDTO struct {
	Quarter int             `json:"quarter"`
	Half    string          `json:"half"`
	Lineup  []lineupSlotDTO `json:"lineup"`
}

type substitutionDTO struct {
	Lineup []lineupSlotDTO `json:"lineup"`
	Out    []playerDTO     `json:"out"`
	In     []playerDTO     `json:"in"`
}

type advanceQuarterDTO struct {
	Ended bool         `json:"ended"`
	State gameStateDTO `json:"state"`
}

type gameStateDTO struct {
	ID             string            `json:"id,omitempty"`
	Phase          string            `json:"phase"`
	InProgress     bool              `json:"in_progress"`
	CurrentQuarter int               `json:"current_quarter"`
	CurrentHalf    string            `json:"current_half,omitempty"`
	AwaitingGoalie bool              `json:"awaiting_goalie"`
	Ended          bool              `json:"ended"`
	SelectedGoalie *playerDTO        `json:"selected_goalie,omitempty"`
	ActiveLineup   []lineupSlotDTO   `json:"active_lineup"`
	Lineups        []lineupRecordDTO `json:"lineups"`
	StartedAt      string            `json:"started_at,omitempty"`
	EndedAt        string            `json:"ended_at,omitempty"`
}

type playingTimeDTO struct {
	Player       playerDTO `json:"player"`
	FieldHalves  int       `json:"field_halves"`
	GoalieHalves int       `json:"goalie_halves"`
	BenchHalves  int       `json:"bench_halves"`
}

type simulationPlayerDTO struct {
	Player       playerDTO `json:"player"`
	MeanHalves   float64   `json:"mean_halves"`
	MinHalves    int       `json:"min_halves"`
	MaxHalves    int       `json:"max_halves"`
	GoalieHalves int       `json:"goalie_halves"`
}

type simulationDTO struct {
	Games         int                   `json:"games"`
	Seed          uint64                `json:"seed"`
	WorkerCount   int                   `json:"worker_count"`
	HalvesPerGame int                   `json:"halves_per_game"`
	Spread        float64               `json:"spread"`
	DurationMs    int64                 `json:"duration_ms"`
	Players       []simulationPlayerDTO `json:"players"`
}

type gameEventDTO struct {
	Type  string       `json:"type"`
	At    string       `json:"at"`
	State gameStateDTO `json:"state"`
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:          v.ID,
		Name:        v.Name,
		IsAvailable: v.IsAvailable,
	}
}

func playersToDTO(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerToDTO(p))
	}
	return out
}

func lineupToDTO(l lineup.Lineup) []lineupSlotDTO {
	out := make([]lineupSlotDTO, 0, len(l))
	for _, a := range l.Assignments() {
		out = append(out, lineupSlotDTO{
			Slot:     a.Slot,
			Position: a.Position,
			Player:   playerToDTO(a.Player),
		})
	}
	return out
}

func recordsToDTO(records []lineup.Record) []lineupRecordDTO {
	out := make([]lineupRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, lineupRecordDTO{
			Quarter: r.Quarter,
			Half:    string(r.Half),
			Lineup:  lineupToDTO(r.Players),
		})
	}
	return out
}

func gameStateToDTO(s game.State) gameStateDTO {
	out := gameStateDTO{
		ID:             s.ID,
		Phase:          string(s.Phase()),
		InProgress:     s.InProgress,
		CurrentQuarter: s.CurrentQuarter,
		AwaitingGoalie: s.AwaitingGoalie,
		Ended:          s.Ended,
		ActiveLineup:   lineupToDTO(s.ActiveLineup),
		Lineups:        recordsToDTO(s.Lineups),
		StartedAt:      formatTime(s.StartedAt),
		EndedAt:        formatTime(s.EndedAt),
	}
	if s.InProgress && !s.AwaitingGoalie {
		out.CurrentHalf = string(s.CurrentHalf())
	}
	if s.SelectedGoalie != nil {
		goalie := playerToDTO(*s.SelectedGoalie)
		out.SelectedGoalie = &goalie
	}
	return out
}

func playingTimeToDTO(items []usecase.PlayingTime) []playingTimeDTO {
	out := make([]playingTimeDTO, 0, len(items))
	for _, v := range items {
		out = append(out, playingTimeDTO{
			Player:       playerToDTO(v.Player),
			FieldHalves:  v.FieldHalves,
			GoalieHalves: v.GoalieHalves,
			BenchHalves:  v.BenchHalves,
		})
	}
	return out
}

func simulationToDTO(v usecase.SimulationResult) simulationDTO {
	players := make([]simulationPlayerDTO, 0, len(v.Players))
	for _, p := range v.Players {
		players = append(players, simulationPlayerDTO{
			Player:       playerToDTO(p.Player),
			MeanHalves:   p.MeanHalves,
			MinHalves:    p.MinHalves,
			MaxHalves:    p.MaxHalves,
			GoalieHalves: p.GoalieHalves,
		})
	}
	return simulationDTO{
		Games:         v.Games,
		Seed:          v.Seed,
		WorkerCount:   v.WorkerCount,
		HalvesPerGame: v.HalvesPerGame,
		Spread:        v.Spread,
		DurationMs:    v.DurationMs,
		Players:       players,
	}
}

func gameEventToDTO(v usecase.GameEvent) gameEventDTO {
	return gameEventDTO{
		Type:  string(v.Type),
		At:    formatTime(v.At),
		State: gameStateToDTO(v.State),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
