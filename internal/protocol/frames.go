// Package protocol defines the frames exchanged between the coordinator and
// participants and their byte encoding. Every frame travels as a single
// newline terminated record whose first byte identifies the variant.
package protocol

import (
	"fmt"

	"github.com/lox/cribbage/internal/deck"
)

// Tag identifies a frame variant on the wire
type Tag byte

const (
	TagName      Tag = 0x01
	TagStart     Tag = 0x02
	TagHand      Tag = 0x03
	TagCard      Tag = 0x04
	TagPlay      Tag = 0x05
	TagRoundDone Tag = 0x06
	TagSeed      Tag = 0x07
)

// String returns the variant name
func (t Tag) String() string {
	switch t {
	case TagName:
		return "name"
	case TagStart:
		return "start"
	case TagHand:
		return "hand"
	case TagCard:
		return "card"
	case TagPlay:
		return "play"
	case TagRoundDone:
		return "round_done"
	case TagSeed:
		return "seed"
	default:
		return fmt.Sprintf("tag(0x%02x)", byte(t))
	}
}

// Frame is one protocol message. The set of implementations is closed.
type Frame interface {
	Tag() Tag
	frame()
}

// Client -> Coordinator

// Name is the handshake frame carrying the participant's display name
type Name struct {
	Name string
}

// RoundDone acknowledges that the participant finished the play phase
type RoundDone struct{}

// Seed carries the dealer's shuffle entropy
type Seed struct {
	Seed string
}

// Coordinator -> Client

// Start announces the players in play order. Index 0 deals first. Empty
// lists decode as nil, here and in Hand.
type Start struct {
	Names []string
}

// Card carries the magic card
type Card struct {
	Card deck.Card
}

// Both directions

// Hand carries a deal, a discard or a show reveal
type Hand struct {
	Cards []deck.Card
	Magic *deck.Card
}

// Play is a single play phase move. A nil Card means the player cannot play.
type Play struct {
	Card      *deck.Card
	Exhausted bool
}

func (Name) Tag() Tag      { return TagName }
func (Start) Tag() Tag     { return TagStart }
func (Hand) Tag() Tag      { return TagHand }
func (Card) Tag() Tag      { return TagCard }
func (Play) Tag() Tag      { return TagPlay }
func (RoundDone) Tag() Tag { return TagRoundDone }
func (Seed) Tag() Tag      { return TagSeed }

func (Name) frame()      {}
func (Start) frame()     {}
func (Hand) frame()      {}
func (Card) frame()      {}
func (Play) frame()      {}
func (RoundDone) frame() {}
func (Seed) frame()      {}

// NewHand builds a Hand frame from a hand, including its magic card if set
func NewHand(h *deck.Hand) Hand {
	f := Hand{Cards: h.Cards()}
	if m, ok := h.Magic(); ok {
		f.Magic = &m
	}
	return f
}

// ToHand converts the frame payload back into a hand
func (f Hand) ToHand() *deck.Hand {
	h := deck.NewHand(f.Cards...)
	if f.Magic != nil {
		h.SetMagic(*f.Magic)
	}
	return h
}

// PlayCard returns a Play frame for a card
func PlayCard(c deck.Card, exhausted bool) Play {
	return Play{Card: &c, Exhausted: exhausted}
}
