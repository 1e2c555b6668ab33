package scoring

import (
	"fmt"
	"slices"

	"github.com/lox/cribbage/internal/deck"
)

// Points awarded for matching ranks at the end of the play history
var matchPoints = map[int]struct {
	kind   Kind
	points int
}{
	2: {KindPair, 2},
	3: {KindPairRoyal, 6},
	4: {KindDoublePairRoyal, 12},
}

// ScorePlay scores the most recent card of a play segment. history holds
// every card played in the segment so far, oldest first.
//
// At most one run is scored: the longest trailing window of three or more
// cards whose orders are consecutive once sorted. Matching ranks are
// counted backwards from the last card. Reaching exactly 15 or 31 scores 2.
// More than four matching ranks is impossible with one deck and panics.
func ScorePlay(history []deck.Card) Tally {
	var t Tally
	if len(history) == 0 {
		return t
	}

	for drop := 0; len(history)-drop >= 3; drop++ {
		window := history[drop:]
		if isRun(window) {
			t.Add(KindRun, len(window), window...)
			break
		}
	}

	last := history[len(history)-1]
	matched := 1
	for i := len(history) - 2; i >= 0 && history[i].Rank == last.Rank; i-- {
		matched++
	}
	if matched > 4 {
		panic(fmt.Sprintf("scoring: %d cards of rank %s in play history", matched, last.Rank))
	}
	if m, ok := matchPoints[matched]; ok {
		t.Add(m.kind, m.points, history[len(history)-matched:]...)
	}

	switch Count(history) {
	case 15:
		t.Add(KindFifteen, 2)
	case 31:
		t.Add(KindThirtyOne, 2)
	}

	return t
}

// Count returns the running total of score values
func Count(cards []deck.Card) int {
	total := 0
	for _, c := range cards {
		total += c.ScoreValue()
	}
	return total
}

// isRun reports whether cards form a sequence of consecutive orders in any
// order of play
func isRun(cards []deck.Card) bool {
	orders := make([]int, len(cards))
	for i, c := range cards {
		orders[i] = c.Order()
	}
	slices.Sort(orders)
	for i := 1; i < len(orders); i++ {
		if orders[i] != orders[i-1]+1 {
			return false
		}
	}
	return true
}
