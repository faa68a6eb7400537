package lineup

import (
	"fmt"

	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/platform/shuffle"
)

// Rotator builds lineups. It is not safe for concurrent use because the
// random source is shared across calls.
type Rotator struct {
	src shuffle.Source
}

func NewRotator(src shuffle.Source) *Rotator {
	return &Rotator{src: src}
}

// Substitution lists who left and who entered, in slot order.
type Substitution struct {
	Out []player.Player
	In  []player.Player
}

// SelectInitial picks six random field players to go with goalie.
func (r *Rotator) SelectInitial(available []player.Player, goalie player.Player) (Lineup, error) {
	field := player.Without(available, goalie.ID)
	if len(field) < FieldSize {
		return nil, fmt.Errorf("%w: need %d field players plus a goalie, have %d field players", ErrInsufficientPlayers, FieldSize, len(field))
	}

	chosen := shuffle.Slice(r.src, field)[:FieldSize]

	var slots Slots
	slots.Place(GoalieSlot, goalie)
	for i, p := range chosen {
		slots.Place(i+1, p)
	}

	return slots.Lineup()
}

// GenerateQuarter builds the opening lineup of a new quarter. Players absent
// from last are used before players carried over from it, and the previous
// goalie, when still available, is dropped into a random field slot.
func (r *Rotator) GenerateQuarter(available []player.Player, goalie player.Player, last *Record) (Lineup, error) {
	var lastPlayers Lineup
	if last != nil {
		lastPlayers = last.Players
	}

	pool := player.Without(available, goalie.ID)

	var (
		previousGoalie    player.Player
		usePreviousGoalie bool
	)
	if prev, ok := lastPlayers.Goalie(); ok && prev.ID != goalie.ID {
		if current, found := player.FindByID(pool, prev.ID); found {
			previousGoalie = current
			usePreviousGoalie = true
			pool = player.Without(pool, prev.ID)
		}
	}

	priority := make([]player.Player, 0, len(pool))
	carryover := make([]player.Player, 0, len(pool))
	for _, p := range pool {
		if lastPlayers.Contains(p.ID) {
			carryover = append(carryover, p)
			continue
		}
		priority = append(priority, p)
	}

	ordered := append(shuffle.Slice(r.src, priority), shuffle.Slice(r.src, carryover)...)
	needed := FieldSize
	if usePreviousGoalie {
		needed--
	}
	if len(ordered) < needed {
		return nil, fmt.Errorf("%w: need %d field players, have %d", ErrInsufficientPlayers, needed, len(ordered))
	}
	ordered = ordered[:needed]

	var slots Slots
	slots.Place(GoalieSlot, goalie)
	if usePreviousGoalie {
		slots.Place(1+r.src.IntN(FieldSize), previousGoalie)
	}
	for i, slot := range slots.OpenField() {
		slots.Place(slot, ordered[i])
	}

	return slots.Lineup()
}

// Substitute swaps as many field players as the bench allows. The goalie and
// everyone not swapped keep their slots; incoming players take the vacated
// slots in ascending order.
func (r *Rotator) Substitute(active Lineup, available []player.Player) (Lineup, Substitution, error) {
	if err := active.Validate(); err != nil {
		return nil, Substitution{}, err
	}

	bench := make([]player.Player, 0, len(available))
	for _, p := range available {
		if !active.Contains(p.ID) {
			bench = append(bench, p)
		}
	}
	if len(bench) == 0 {
		return nil, Substitution{}, ErrNoBenchPlayers
	}

	field := active.Field()
	k := min(len(field), len(bench))
	if k < 1 {
		return nil, Substitution{}, ErrNotEnoughBench
	}

	leaving := make(map[string]struct{}, k)
	for _, p := range shuffle.Slice(r.src, field)[:k] {
		leaving[p.ID] = struct{}{}
	}
	entering := shuffle.Slice(r.src, bench)[:k]

	var (
		slots Slots
		sub   Substitution
	)
	slots.Place(GoalieSlot, active[GoalieSlot])
	for slot := 1; slot < Size; slot++ {
		current := active[slot]
		if _, out := leaving[current.ID]; out {
			sub.Out = append(sub.Out, current)
			continue
		}
		slots.Place(slot, current)
	}
	for i, slot := range slots.OpenField() {
		slots.Place(slot, entering[i])
		sub.In = append(sub.In, entering[i])
	}

	next, err := slots.Lineup()
	if err != nil {
		return nil, Substitution{}, err
	}
	return next, sub, nil
}

// RefreshAfterSubstitution reshuffles the second-half lineup of a quarter
// without changing who is on the field. Players who stayed on return to
// their first-half slot; the open slots go to the players subbed in.
func (r *Rotator) RefreshAfterSubstitution(first, second Lineup) (Lineup, error) {
	goalie, ok := second.Goalie()
	if !ok || len(first) == 0 {
		return nil, fmt.Errorf("%w: both halves are required to refresh", ErrInvalidLineupSize)
	}

	firstSlot := make(map[string]int, len(first))
	for i, p := range first {
		firstSlot[p.ID] = i
	}

	var slots Slots
	slots.Place(GoalieSlot, goalie)

	substitutedIn := make([]player.Player, 0, len(second))
	for _, p := range second {
		slot, stayed := firstSlot[p.ID]
		if !stayed {
			substitutedIn = append(substitutedIn, p)
			continue
		}
		if slot > 0 && slots.Open(slot) {
			slots.Place(slot, p)
		}
	}

	open := slots.OpenField()
	incoming := shuffle.Slice(r.src, substitutedIn)
	for len(open) > 0 && len(incoming) > 0 {
		slots.Place(open[0], incoming[0])
		open, incoming = open[1:], incoming[1:]
	}

	if len(open) > 0 {
		removed := make([]player.Player, 0, len(first))
		for _, p := range first {
			if !second.Contains(p.ID) {
				removed = append(removed, p)
			}
		}
		for _, p := range shuffle.Slice(r.src, removed) {
			if len(open) == 0 {
				break
			}
			slots.Place(open[0], p)
			open = open[1:]
		}
	}

	return slots.Lineup()
}
