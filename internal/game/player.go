package game

import (
	"fmt"

	"github.com/lox/cribbage/internal/deck"
)

// Player is one seat at the table
type Player struct {
	Name     string
	Score    int
	Finished bool
	// Hand is the post-discard hand kept for the show, nil when unknown
	Hand *deck.Hand
}

// AddScore adds points, clamping at TargetScore
func (p *Player) AddScore(points int) {
	p.Score = min(p.Score+points, TargetScore)
}

// PlayerSet holds the players in play order and two independent cursors:
// the dealer and the player whose turn it is.
type PlayerSet struct {
	players []*Player
	dealer  int
	current int
}

// NewPlayerSet creates players in the given order. Names must be unique.
func NewPlayerSet(names []string) (*PlayerSet, error) {
	if err := ValidatePlayerCount(len(names)); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	players := make([]*Player, len(names))
	for i, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = true
		players[i] = &Player{Name: name}
	}
	return &PlayerSet{players: players}, nil
}

// Len returns the number of players
func (ps *PlayerSet) Len() int {
	return len(ps.players)
}

// Player returns the player at seat i
func (ps *PlayerSet) Player(i int) *Player {
	return ps.players[ps.wrap(i)]
}

// Players returns all players in seat order
func (ps *PlayerSet) Players() []*Player {
	return ps.players
}

// Index returns the seat of the named player or -1
func (ps *PlayerSet) Index(name string) int {
	for i, p := range ps.players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the player names in seat order
func (ps *PlayerSet) Names() []string {
	names := make([]string, len(ps.players))
	for i, p := range ps.players {
		names[i] = p.Name
	}
	return names
}

// Scores returns the committed scores in seat order
func (ps *PlayerSet) Scores() []int {
	scores := make([]int, len(ps.players))
	for i, p := range ps.players {
		scores[i] = p.Score
	}
	return scores
}

// Dealer returns the dealer's seat
func (ps *PlayerSet) Dealer() int {
	return ps.dealer
}

// AdvanceDealer moves the deal to the next seat
func (ps *PlayerSet) AdvanceDealer() {
	ps.dealer = ps.wrap(ps.dealer + 1)
}

// Current returns the seat whose turn it is
func (ps *PlayerSet) Current() int {
	return ps.current
}

// Advance moves the turn to the next seat
func (ps *PlayerSet) Advance() {
	ps.current = ps.wrap(ps.current + 1)
}

// ResetTo moves the turn to seat i
func (ps *PlayerSet) ResetTo(i int) {
	ps.current = ps.wrap(i)
}

// StepBack moves the turn back n seats
func (ps *PlayerSet) StepBack(n int) {
	ps.current = ps.wrap(ps.current - n)
}

// ResetRound clears per-round player state
func (ps *PlayerSet) ResetRound() {
	for _, p := range ps.players {
		p.Finished = false
		p.Hand = nil
	}
}

func (ps *PlayerSet) wrap(i int) int {
	n := len(ps.players)
	return ((i % n) + n) % n
}
