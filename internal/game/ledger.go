package game

import "github.com/lox/cribbage/internal/scoring"

// Award is a scored item waiting to be committed
type Award struct {
	Seat int
	Item scoring.Item
}

// Ledger records the round's awards in the order they were earned and
// applies them to players only when the round is committed.
type Ledger struct {
	awards []Award
}

// Add records every item of a tally for seat
func (l *Ledger) Add(seat int, tally scoring.Tally) {
	for _, item := range tally.Items {
		l.awards = append(l.awards, Award{Seat: seat, Item: item})
	}
}

// Awards returns the pending awards in earning order
func (l *Ledger) Awards() []Award {
	out := make([]Award, len(l.awards))
	copy(out, l.awards)
	return out
}

// Pending returns the uncommitted points for seat
func (l *Ledger) Pending(seat int) int {
	total := 0
	for _, a := range l.awards {
		if a.Seat == seat {
			total += a.Item.Points
		}
	}
	return total
}

// Commit applies every award to the players in earning order and clears
// the ledger. It returns the first seat whose score reached TargetScore
// during the commit, or -1.
func (l *Ledger) Commit(ps *PlayerSet) int {
	winner := -1
	for _, a := range l.awards {
		p := ps.Player(a.Seat)
		before := p.Score
		p.AddScore(a.Item.Points)
		if winner < 0 && before < TargetScore && p.Score >= TargetScore {
			winner = a.Seat
		}
	}
	l.awards = nil
	return winner
}

// Discard drops every pending award
func (l *Ledger) Discard() {
	l.awards = nil
}
