package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// Size is the number of cards in a complete deck
const Size = 52

// ErrNotEnoughCards is returned when a deal asks for more cards than remain
var ErrNotEnoughCards = errors.New("not enough cards in deck")

// Deck represents a deck of playing cards
type Deck struct {
	cards []Card
}

// NewDeck creates a new standard 52-card deck in suit then rank order
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, Size)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// NewDeckFromCards builds a deck in the given order. The last card is the
// next one dealt. Used to stack decks in tests.
func NewDeckFromCards(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards), Size)}
	copy(d.cards, cards)
	return d
}

// Shuffle randomizes the order of cards in the deck. The deck must be
// complete; shuffling a partial deck is a defect and panics.
func (d *Deck) Shuffle(rng *rand.Rand) {
	if len(d.cards) != Size {
		panic(fmt.Sprintf("deck: shuffle with %d cards, want %d", len(d.cards), Size))
	}
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes n cards from the top of the deck and returns them
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughCards, n, len(d.cards))
	}

	split := len(d.cards) - n
	dealt := make([]Card, n)
	copy(dealt, d.cards[split:])
	d.cards = d.cards[:split]
	return dealt, nil
}

// Magic returns the starter card without removing it from the deck
func (d *Deck) Magic() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[len(d.cards)-1], true
}

// Rejoin returns cards to the bottom of the deck
func (d *Deck) Rejoin(cards []Card) {
	d.cards = append(d.cards, cards...)
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

// IsComplete reports whether the deck holds every card exactly once
func (d *Deck) IsComplete() bool {
	if len(d.cards) != Size {
		return false
	}
	seen := make(map[Card]bool, Size)
	for _, c := range d.cards {
		if !c.IsValid() || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// Cards returns a copy of the remaining cards, next to deal last
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
