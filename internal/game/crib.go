package game

import "github.com/lox/cribbage/internal/deck"

// Crib pools every player's discards for the round. It belongs to no
// player; the dealer scores it at the end of the show.
type Crib struct {
	hand         *deck.Hand
	contributors []int
}

// NewCrib creates an empty crib
func NewCrib() *Crib {
	return &Crib{hand: deck.NewHand()}
}

// Add pools a seat's discards
func (c *Crib) Add(seat int, cards []deck.Card) {
	c.hand.Merge(deck.NewHand(cards...))
	c.contributors = append(c.contributors, seat)
}

// Contributed reports whether seat has already discarded
func (c *Crib) Contributed(seat int) bool {
	for _, s := range c.contributors {
		if s == seat {
			return true
		}
	}
	return false
}

// Contributions returns how many seats have discarded
func (c *Crib) Contributions() int {
	return len(c.contributors)
}

// Hand returns a copy of the pooled cards with magic attached if given
func (c *Crib) Hand(magic *deck.Card) *deck.Hand {
	h := c.hand.Clone()
	if magic != nil {
		h.SetMagic(*magic)
	}
	return h
}

// Replace sets the crib contents, used when the crib is revealed to a
// participant who never saw the other discards
func (c *Crib) Replace(cards []deck.Card) {
	c.hand = deck.NewHand(cards...)
}

// Cards returns the pooled cards
func (c *Crib) Cards() []deck.Card {
	return c.hand.Cards()
}

// Len returns the number of pooled cards
func (c *Crib) Len() int {
	return c.hand.Len()
}
