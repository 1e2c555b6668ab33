package game

import (
	"errors"
	"fmt"
)

const (
	MinPlayers  = 2
	MaxPlayers  = 3
	TargetScore = 121
	MaxCount    = 31
)

var (
	ErrUnsupportedPlayers = errors.New("unsupported player count")
	ErrDuplicateName      = errors.New("duplicate player name")
	ErrWrongPhase         = errors.New("wrong phase")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrWrongDiscardCount  = errors.New("wrong discard count")
	ErrIllegalPlay        = errors.New("illegal play")
	ErrProtocolViolation  = errors.New("protocol violation")
)

// DealSize is the number of cards dealt to each player
func DealSize(players int) int {
	return 8 - players
}

// DiscardSize is the number of cards each player puts in the crib
func DiscardSize(players int) int {
	return 4 - players
}

// ValidatePlayerCount rejects games with too few or too many players
func ValidatePlayerCount(n int) error {
	if n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrUnsupportedPlayers, n, MinPlayers, MaxPlayers)
	}
	return nil
}
