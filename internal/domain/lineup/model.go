package lineup

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
)

const (
	Size      = 7
	FieldSize = Size - 1

	GoalieSlot = 0
)

var (
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrNoBenchPlayers      = errors.New("no bench players available")
	ErrNotEnoughBench      = errors.New("not enough bench players for substitution")
	ErrInvalidLineupSize   = errors.New("invalid lineup size")
	ErrDuplicatePlayer     = errors.New("duplicate player in lineup")
)

var positionLabels = [Size]string{
	"Goalkeeper",
	"Left Defender",
	"Right Defender",
	"Left Midfielder",
	"Center Midfielder",
	"Right Midfielder",
	"Forward",
}

// PositionLabel names the field position bound to a slot index.
func PositionLabel(slot int) string {
	if slot < 0 || slot >= Size {
		return ""
	}
	return positionLabels[slot]
}

// Half splits a quarter around its single substitution.
type Half string

const (
	HalfFirst  Half = "first"
	HalfSecond Half = "second"
)

// Lineup is an ordered set of players; slot 0 is the goalie.
type Lineup []player.Player

func (l Lineup) Validate() error {
	if len(l) != Size {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidLineupSize, Size, len(l))
	}
	seen := make(map[string]struct{}, len(l))
	for _, p := range l {
		if _, exists := seen[p.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func (l Lineup) Goalie() (player.Player, bool) {
	if len(l) == 0 {
		return player.Player{}, false
	}
	return l[GoalieSlot], true
}

func (l Lineup) Field() []player.Player {
	if len(l) <= 1 {
		return nil
	}
	return append([]player.Player(nil), l[1:]...)
}

func (l Lineup) Contains(playerID string) bool {
	return l.SlotOf(playerID) >= 0
}

// SlotOf returns the slot index of playerID, or -1.
func (l Lineup) SlotOf(playerID string) int {
	for i, p := range l {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (l Lineup) IDs() []string {
	out := make([]string, 0, len(l))
	for _, p := range l {
		out = append(out, p.ID)
	}
	return out
}

func (l Lineup) Clone() Lineup {
	if l == nil {
		return nil
	}
	return append(Lineup(nil), l...)
}

// Assignment pairs a lineup slot with its position label.
type Assignment struct {
	Slot     int
	Position string
	Player   player.Player
}

func (l Lineup) Assignments() []Assignment {
	out := make([]Assignment, 0, len(l))
	for i, p := range l {
		out = append(out, Assignment{Slot: i, Position: PositionLabel(i), Player: p})
	}
	return out
}

// Record is the lineup fielded during one half of one quarter.
type Record struct {
	Quarter int
	Half    Half
	Players Lineup
}

func (r Record) Clone() Record {
	r.Players = r.Players.Clone()
	return r
}

// Slots is the working array the rotation steps fill before a lineup is
// handed out. A nil entry is an open slot.
type Slots [Size]*player.Player

func (s *Slots) Place(slot int, p player.Player) {
	s[slot] = &p
}

func (s *Slots) Open(slot int) bool {
	return s[slot] == nil
}

// OpenField lists unfilled field slots in ascending order.
func (s *Slots) OpenField() []int {
	out := make([]int, 0, FieldSize)
	for i := 1; i < Size; i++ {
		if s[i] == nil {
			out = append(out, i)
		}
	}
	return out
}

// Lineup converts the slots into a Lineup once every slot is occupied.
func (s *Slots) Lineup() (Lineup, error) {
	out := make(Lineup, 0, Size)
	for i, p := range s {
		if p == nil {
			return nil, fmt.Errorf("%w: slot %d (%s) is empty", ErrInvalidLineupSize, i, PositionLabel(i))
		}
		out = append(out, *p)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
