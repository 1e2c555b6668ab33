package game

import (
	"fmt"

	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/scoring"
)

// PlayAward is a score earned during the play phase
type PlayAward struct {
	Seat  int
	Tally scoring.Tally
}

// PlayOutcome describes the effects of one move
type PlayOutcome struct {
	Awards []PlayAward
	// Count is the running count after the move, before any segment reset
	Count int
	// SegmentReset is set when the move closed a segment (31 or all go)
	SegmentReset bool
	// Done is set when every player has exhausted their hand
	Done bool
}

// PlayState is the play phase step function. It is driven one move at a
// time in seat rotation and has no knowledge of players' hands: callers
// validate that a go is genuine and that played cards are held.
type PlayState struct {
	players    int
	count      int
	history    []deck.Card
	gos        int
	lastPlayer int
	finished   []bool
	done       bool
}

// NewPlayState starts the play phase for n players
func NewPlayState(n int) *PlayState {
	return &PlayState{
		players:    n,
		lastPlayer: -1,
		finished:   make([]bool, n),
	}
}

// Count returns the running count of the current segment
func (s *PlayState) Count() int {
	return s.count
}

// History returns the cards played in the current segment
func (s *PlayState) History() []deck.Card {
	out := make([]deck.Card, len(s.history))
	copy(out, s.history)
	return out
}

// Gos returns the consecutive go counter
func (s *PlayState) Gos() int {
	return s.gos
}

// LastPlayer returns the seat that played the most recent card, or -1
func (s *PlayState) LastPlayer() int {
	return s.lastPlayer
}

// Finished reports whether seat has exhausted its hand
func (s *PlayState) Finished(seat int) bool {
	return s.finished[seat]
}

// Done reports whether the play phase is over
func (s *PlayState) Done() bool {
	return s.done
}

// CanPlay reports whether c fits under the 31 limit
func (s *PlayState) CanPlay(c deck.Card) bool {
	return s.count+c.ScoreValue() <= MaxCount
}

// Apply advances the play phase by one move from seat. A nil card is a go.
// exhausted marks the seat's hand as empty after this move.
//
// A played card scores through scoring.ScorePlay and resets the go
// counter. Each go increments it; when every seat has gone in a row the
// last player to lay a card scores 1 and a new segment starts. Reaching 31
// also starts a new segment. Once every seat is finished the last player
// to lay a card scores 1 unless the final segment ended on 31.
func (s *PlayState) Apply(seat int, card *deck.Card, exhausted bool) (PlayOutcome, error) {
	var out PlayOutcome
	if s.done {
		return out, fmt.Errorf("%w: play phase is over", ErrWrongPhase)
	}
	if seat < 0 || seat >= s.players {
		return out, fmt.Errorf("%w: seat %d out of range", ErrNotYourTurn, seat)
	}

	if card != nil {
		if s.finished[seat] {
			return out, fmt.Errorf("%w: seat %d has no cards left", ErrIllegalPlay, seat)
		}
		if !s.CanPlay(*card) {
			return out, fmt.Errorf("%w: %s takes the count past %d", ErrIllegalPlay, card, MaxCount)
		}

		s.history = append(s.history, *card)
		s.count += card.ScoreValue()
		s.gos = 0
		s.lastPlayer = seat
		out.Count = s.count

		if tally := scoring.ScorePlay(s.history); tally.Total() > 0 {
			out.Awards = append(out.Awards, PlayAward{Seat: seat, Tally: tally})
		}
		if exhausted {
			s.finished[seat] = true
		}
		if s.count == MaxCount {
			s.resetSegment()
			out.SegmentReset = true
		}
	} else {
		if exhausted {
			s.finished[seat] = true
		}
		s.gos++
		out.Count = s.count

		if s.gos >= s.players {
			if s.lastPlayer >= 0 && s.count > 0 {
				var goPoint scoring.Tally
				goPoint.Add(scoring.KindGo, 1)
				out.Awards = append(out.Awards, PlayAward{Seat: s.lastPlayer, Tally: goPoint})
			}
			s.resetSegment()
			out.SegmentReset = true
		}
	}

	if s.allFinished() {
		if s.count > 0 && s.lastPlayer >= 0 {
			var last scoring.Tally
			last.Add(scoring.KindLastCard, 1)
			out.Awards = append(out.Awards, PlayAward{Seat: s.lastPlayer, Tally: last})
		}
		s.done = true
		out.Done = true
	}

	return out, nil
}

func (s *PlayState) resetSegment() {
	s.count = 0
	s.history = s.history[:0]
	s.gos = 0
}

func (s *PlayState) allFinished() bool {
	for _, f := range s.finished {
		if !f {
			return false
		}
	}
	return true
}
