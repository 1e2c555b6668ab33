package scoring

import (
	"slices"

	"github.com/lox/cribbage/internal/deck"
)

// ScoreHand scores a hand or crib against its magic card.
//
// The held cards and the magic card are sorted by order and every
// sub-combination of two or more cards is examined independently. Pairs
// are only scored between two cards, fifteens at any size, and runs of
// three or more at every size, so a run of four also scores its two runs
// of three. Nobs scores 1 when a held jack matches the magic card's suit.
//
// The hand must have a magic card set; scoring without one panics.
func ScoreHand(h *deck.Hand) Tally {
	magic, ok := h.Magic()
	if !ok {
		panic("scoring: hand has no magic card")
	}

	var t Tally
	held := h.Cards()
	for _, c := range held {
		if c.Rank == deck.Jack && c.Suit == magic.Suit {
			t.Add(KindNobs, 1, c)
			break
		}
	}

	all := append(held, magic)
	slices.SortStableFunc(all, func(a, b deck.Card) int {
		return a.Order() - b.Order()
	})

	for size := 2; size <= len(all); size++ {
		combinations(all, size, func(combo []deck.Card) {
			if size == 2 && combo[0].Rank == combo[1].Rank {
				t.Add(KindPair, 2, combo...)
			}
			if Count(combo) == 15 {
				t.Add(KindFifteen, 2, combo...)
			}
			if size >= 3 && isRun(combo) {
				t.Add(KindRun, size, combo...)
			}
		})
	}

	return t
}

// combinations calls fn with every k-sized subset of cards in index order.
// The slice passed to fn is reused between calls.
func combinations(cards []deck.Card, k int, fn func([]deck.Card)) {
	combo := make([]deck.Card, k)
	var pick func(start, depth int)
	pick = func(start, depth int) {
		if depth == k {
			fn(combo)
			return
		}
		for i := start; i <= len(cards)-(k-depth); i++ {
			combo[depth] = cards[i]
			pick(i+1, depth+1)
		}
	}
	pick(0, 0)
}
