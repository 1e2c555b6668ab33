package game

import "github.com/lox/cribbage/internal/deck"

// PlayView is the read-only state offered to an agent choosing a play
type PlayView struct {
	Hand    []deck.Card // every card still held
	Count   int
	History []deck.Card // cards in the current segment
	Magic   deck.Card
	Scores  []int // committed plus pending points, by seat
	Seat    int
}

// Agent is a local decision provider (human or bot). It is only asked
// when it is the local player's turn and must answer within the rules:
// exactly count distinct indices for a discard, and a card from playable
// for a play. ChoosePlay is never called with an empty playable set.
type Agent interface {
	ChooseDiscard(hand []deck.Card, count int, dealer bool) ([]int, error)
	ChoosePlay(playable []deck.Card, view PlayView) (*deck.Card, error)
}
