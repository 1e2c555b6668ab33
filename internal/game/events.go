package game

import (
	"sync"
	"time"

	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/scoring"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeGameStart   EventType = "game_start"
	EventTypeRoundStart  EventType = "round_start"
	EventTypePhaseChange EventType = "phase_change"
	EventTypeHandDealt   EventType = "hand_dealt"
	EventTypeDiscard     EventType = "discard"
	EventTypeMagicCut    EventType = "magic_cut"
	EventTypePlay        EventType = "play"
	EventTypeShow        EventType = "show"
	EventTypeRoundEnd    EventType = "round_end"
	EventTypeGameOver    EventType = "game_over"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent is anything that happens at the table worth displaying
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

type stamp struct {
	at time.Time
}

func (s stamp) Timestamp() time.Time { return s.at }

// GameStartEvent is published once the seating order is known
type GameStartEvent struct {
	stamp
	Names []string
}

// RoundStartEvent is published when a new deal begins
type RoundStartEvent struct {
	stamp
	Round  int
	Dealer int
	Names  []string
	Scores []int
}

// PhaseChangeEvent is published on every phase transition
type PhaseChangeEvent struct {
	stamp
	From Phase
	To   Phase
}

// HandDealtEvent is published when a known hand is dealt
type HandDealtEvent struct {
	stamp
	Seat   int
	Player string
	Cards  []deck.Card
}

// DiscardEvent is published when a seat puts cards in the crib. Cards is
// empty when the discard is not visible to this table.
type DiscardEvent struct {
	stamp
	Seat   int
	Player string
	Cards  []deck.Card
}

// MagicCutEvent is published when the starter card is turned
type MagicCutEvent struct {
	stamp
	Card   deck.Card
	Dealer int
	Heels  bool
}

// PlayEvent is published for every play phase move, including automatic
// moves for players with no cards left
type PlayEvent struct {
	stamp
	Seat         int
	Player       string
	Card         *deck.Card
	Exhausted    bool
	Count        int
	Awards       []PlayAward
	SegmentReset bool
	Done         bool
}

// ShowEvent is published when a hand or the crib is revealed and scored
type ShowEvent struct {
	stamp
	Seat   int
	Player string
	Hand   *deck.Hand
	Tally  scoring.Tally
	Crib   bool
}

// RoundEndEvent is published after the round's scores are committed
type RoundEndEvent struct {
	stamp
	Round  int
	Awards []Award
	Scores []int
}

// GameOverEvent is published when a player reaches the target score
type GameOverEvent struct {
	stamp
	Winner int
	Names  []string
	Scores []int
}

func (GameStartEvent) EventType() EventType   { return EventTypeGameStart }
func (RoundStartEvent) EventType() EventType  { return EventTypeRoundStart }
func (PhaseChangeEvent) EventType() EventType { return EventTypePhaseChange }
func (HandDealtEvent) EventType() EventType   { return EventTypeHandDealt }
func (DiscardEvent) EventType() EventType     { return EventTypeDiscard }
func (MagicCutEvent) EventType() EventType    { return EventTypeMagicCut }
func (PlayEvent) EventType() EventType        { return EventTypePlay }
func (ShowEvent) EventType() EventType        { return EventTypeShow }
func (RoundEndEvent) EventType() EventType    { return EventTypeRoundEnd }
func (GameOverEvent) EventType() EventType    { return EventTypeGameOver }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish delivers an event to all subscribers synchronously, in
// subscription order
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}
