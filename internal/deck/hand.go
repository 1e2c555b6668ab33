package deck

import (
	"fmt"
	"strings"
)

// Hand is a collection of cards with an optional magic (starter) card.
// Card order only matters for display and index based selection.
type Hand struct {
	cards []Card
	magic *Card
}

// NewHand creates a hand holding a copy of cards
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make([]Card, len(cards))}
	copy(h.cards, cards)
	return h
}

// Push appends a card
func (h *Hand) Push(c Card) {
	h.cards = append(h.cards, c)
}

// Remove removes and returns the card at index i
func (h *Hand) Remove(i int) (Card, error) {
	if i < 0 || i >= len(h.cards) {
		return Card{}, fmt.Errorf("hand index %d out of range [0,%d)", i, len(h.cards))
	}
	c := h.cards[i]
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	return c, nil
}

// RemoveCard removes the first occurrence of c, reporting whether it was held
func (h *Hand) RemoveCard(c Card) bool {
	i := h.Index(c)
	if i < 0 {
		return false
	}
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	return true
}

// Index returns the position of c in the hand or -1
func (h *Hand) Index(c Card) int {
	for i, held := range h.cards {
		if held == c {
			return i
		}
	}
	return -1
}

// Contains reports whether c is held
func (h *Hand) Contains(c Card) bool {
	return h.Index(c) >= 0
}

// Merge appends all of other's cards to this hand. The magic card is not copied.
func (h *Hand) Merge(other *Hand) {
	h.cards = append(h.cards, other.cards...)
}

// SetMagic attaches the starter card
func (h *Hand) SetMagic(c Card) {
	h.magic = &c
}

// ClearMagic detaches the starter card
func (h *Hand) ClearMagic() {
	h.magic = nil
}

// Magic returns the starter card if one is set
func (h *Hand) Magic() (Card, bool) {
	if h.magic == nil {
		return Card{}, false
	}
	return *h.magic, true
}

// Cards returns a copy of the held cards
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of held cards, excluding magic
func (h *Hand) Len() int {
	return len(h.cards)
}

// Clone returns a deep copy of the hand
func (h *Hand) Clone() *Hand {
	c := NewHand(h.cards...)
	if h.magic != nil {
		c.SetMagic(*h.magic)
	}
	return c
}

// Equal reports whether both hands hold the same cards as a multiset and
// the same magic card
func (h *Hand) Equal(other *Hand) bool {
	if len(h.cards) != len(other.cards) {
		return false
	}
	m1, ok1 := h.Magic()
	m2, ok2 := other.Magic()
	if ok1 != ok2 || m1 != m2 {
		return false
	}
	counts := make(map[Card]int, len(h.cards))
	for _, c := range h.cards {
		counts[c]++
	}
	for _, c := range other.cards {
		counts[c]--
		if counts[c] < 0 {
			return false
		}
	}
	return true
}

// String renders the hand for display, with the magic card in brackets
func (h *Hand) String() string {
	var b strings.Builder
	b.WriteString(FormatCards(h.cards))
	if h.magic != nil {
		fmt.Fprintf(&b, " [%s]", h.magic)
	}
	return b.String()
}
