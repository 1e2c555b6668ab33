package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/scoring"
)

// GreedyBot keeps the four cards with the best average show score over
// every possible starter, counting the crib for or against itself, and
// plays whichever card scores most right now.
type GreedyBot struct {
	logger *log.Logger
}

// NewGreedyBot creates a new GreedyBot instance
func NewGreedyBot(logger *log.Logger) *GreedyBot {
	return &GreedyBot{logger: logger.WithPrefix("greedy-bot")}
}

func (g *GreedyBot) ChooseDiscard(hand []deck.Card, count int, dealer bool) ([]int, error) {
	starters := remainingCards(hand)

	var best []int
	bestValue := -1 << 31
	forEachSubset(len(hand), count, func(discard []int) {
		keep, thrown := split(hand, discard)
		value := 0
		for _, starter := range starters {
			h := deck.NewHand(keep...)
			h.SetMagic(starter)
			value += scoring.ScoreHand(h).Total()

			if len(thrown) > 0 {
				crib := deck.NewHand(thrown...)
				crib.SetMagic(starter)
				if dealer {
					value += scoring.ScoreHand(crib).Total()
				} else {
					value -= scoring.ScoreHand(crib).Total()
				}
			}
		}
		if value > bestValue {
			bestValue = value
			best = append(best[:0], discard...)
		}
	})

	g.logger.Debug("Discarding",
		"hand", deck.FormatCards(hand),
		"indices", best,
		"expected", float64(bestValue)/float64(len(starters)))
	return best, nil
}

func (g *GreedyBot) ChoosePlay(playable []deck.Card, view game.PlayView) (*deck.Card, error) {
	if len(playable) == 0 {
		return nil, nil
	}

	best, bestRank := playable[0], playRank(playable[0], view)
	for _, c := range playable[1:] {
		if r := playRank(c, view); r > bestRank {
			best, bestRank = c, r
		}
	}

	g.logger.Debug("Playing", "card", best, "count", view.Count, "points", bestRank/100)
	return &best, nil
}

// playRank orders candidate plays: immediate points first, then avoiding
// counts of 5 and 21 that give the next player an easy fifteen or 31, then
// shedding high cards.
func playRank(c deck.Card, view game.PlayView) int {
	history := append(append([]deck.Card(nil), view.History...), c)
	rank := scoring.ScorePlay(history).Total() * 100

	switch view.Count + c.ScoreValue() {
	case 5, 21:
	default:
		rank += 20
	}
	return rank + c.ScoreValue()
}

func remainingCards(hand []deck.Card) []deck.Card {
	held := make(map[deck.Card]bool, len(hand))
	for _, c := range hand {
		held[c] = true
	}
	var out []deck.Card
	for _, c := range deck.NewDeck().Cards() {
		if !held[c] {
			out = append(out, c)
		}
	}
	return out
}

func split(hand []deck.Card, discard []int) (keep, thrown []deck.Card) {
	drop := make(map[int]bool, len(discard))
	for _, i := range discard {
		drop[i] = true
	}
	for i, c := range hand {
		if drop[i] {
			thrown = append(thrown, c)
		} else {
			keep = append(keep, c)
		}
	}
	return keep, thrown
}

// forEachSubset calls fn with every k-sized set of indices below n in
// ascending order
func forEachSubset(n, k int, fn func([]int)) {
	idx := make([]int, k)
	var pick func(start, depth int)
	pick = func(start, depth int) {
		if depth == k {
			fn(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			pick(i+1, depth+1)
		}
	}
	pick(0, 0)
}
