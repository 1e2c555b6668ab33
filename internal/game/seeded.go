package game

import (
	"fmt"

	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/randutil"
)

// SeededDeck shuffles a fresh deck from seed. Every peer that knows the
// seed gets the same order.
func SeededDeck(seed string) *deck.Deck {
	d := deck.NewDeck()
	d.Shuffle(randutil.New(randutil.SeedFromString(seed)))
	return d
}

// SeededHand rebuilds the cards dealt to seat when a round of players is
// dealt from SeededDeck(seed), one full hand per seat in seat order.
func SeededHand(seed string, players, seat int) ([]deck.Card, error) {
	if err := ValidatePlayerCount(players); err != nil {
		return nil, err
	}
	if seat < 0 || seat >= players {
		return nil, fmt.Errorf("seat %d out of range for %d players", seat, players)
	}

	d := SeededDeck(seed)
	var hand []deck.Card
	for range seat + 1 {
		cards, err := d.Deal(DealSize(players))
		if err != nil {
			return nil, err
		}
		hand = cards
	}
	return hand, nil
}
