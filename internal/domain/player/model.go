package player

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDuplicatePlayer = errors.New("duplicate player in roster")

// Player is a roster member who can be placed in a lineup.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"isAvailable"`
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}

// ValidateRoster checks every player and rejects repeated ids.
func ValidateRoster(players []Player) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, exists := seen[p.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return nil
}

func Available(players []Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.IsAvailable {
			out = append(out, p)
		}
	}
	return out
}

func Without(players []Player, playerID string) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.ID != playerID {
			out = append(out, p)
		}
	}
	return out
}

func FindByID(players []Player, playerID string) (Player, bool) {
	for _, p := range players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// DefaultRoster is written to an empty roster store on first start.
func DefaultRoster() []Player {
	names := []string{
		"Alaina", "Austin", "Everly", "Henrik", "Koby", "Kyler",
		"Libby", "Logan", "Maya", "Oakli", "Theo", "Tristan",
	}

	out := make([]Player, 0, len(names))
	for i, name := range names {
		out = append(out, Player{
			ID:          fmt.Sprintf("%d", i+1),
			Name:        name,
			IsAvailable: true,
		})
	}
	return out
}
