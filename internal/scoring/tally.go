// Package scoring implements the play and show scoring rules. Both
// procedures are pure functions of the cards they are given, so the
// coordinator and every participant compute identical results.
package scoring

import (
	"fmt"
	"strings"

	"github.com/lox/cribbage/internal/deck"
)

// Kind names a scoring combination
type Kind string

const (
	KindFifteen         Kind = "fifteen"
	KindThirtyOne       Kind = "thirty-one"
	KindPair            Kind = "pair"
	KindPairRoyal       Kind = "pair royal"
	KindDoublePairRoyal Kind = "double pair royal"
	KindRun             Kind = "run"
	KindNobs            Kind = "nobs"
	KindHeels           Kind = "heels"
	KindGo              Kind = "go"
	KindLastCard        Kind = "last card"
)

// Item is one scored combination
type Item struct {
	Kind   Kind
	Points int
	Cards  []deck.Card
}

// String renders the item, e.g. "fifteen 2 (5♠ T♦)"
func (i Item) String() string {
	if len(i.Cards) == 0 {
		return fmt.Sprintf("%s %d", i.Kind, i.Points)
	}
	return fmt.Sprintf("%s %d (%s)", i.Kind, i.Points, deck.FormatCards(i.Cards))
}

// Tally is an itemised score
type Tally struct {
	Items []Item
}

// Total returns the sum of all item points
func (t Tally) Total() int {
	total := 0
	for _, item := range t.Items {
		total += item.Points
	}
	return total
}

// Add records a scored combination
func (t *Tally) Add(kind Kind, points int, cards ...deck.Card) {
	cs := make([]deck.Card, len(cards))
	copy(cs, cards)
	t.Items = append(t.Items, Item{Kind: kind, Points: points, Cards: cs})
}

// Count returns how many items of the given kind were scored
func (t Tally) Count(kind Kind) int {
	n := 0
	for _, item := range t.Items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// String joins all items
func (t Tally) String() string {
	if len(t.Items) == 0 {
		return "nothing"
	}
	parts := make([]string, len(t.Items))
	for i, item := range t.Items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ", ")
}
