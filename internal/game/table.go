package game

import (
	"fmt"

	"github.com/coder/quartz"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/scoring"
)

// KeptHandSize is the size of every hand after discarding
const KeptHandSize = 4

// TableOption configures a Table during creation
type TableOption func(*Table)

// WithEventBus publishes table events to bus
func WithEventBus(bus EventBus) TableOption {
	return func(t *Table) { t.bus = bus }
}

// WithClock sets the clock used to timestamp events
func WithClock(clock quartz.Clock) TableOption {
	return func(t *Table) { t.clock = clock }
}

// Table is the round state machine. It validates every transition against
// the current phase and, for seats whose cards it knows, against their
// hands. The coordinator knows every hand; a participant knows its own
// and learns the rest as they are shown.
type Table struct {
	players *PlayerSet
	phase   Phase
	round   int

	// held are the cards still in each seat's hand during play, nil when unknown
	held      []*deck.Hand
	crib      *Crib
	magic     *deck.Card
	play      *PlayState
	ledger    Ledger
	shown     int
	cribShown bool
	committed bool
	winner    int
	bus       EventBus
	clock     quartz.Clock
}

// NewTable seats players in the given order. The first seat deals first.
func NewTable(names []string, opts ...TableOption) (*Table, error) {
	players, err := NewPlayerSet(names)
	if err != nil {
		return nil, err
	}

	t := &Table{
		players: players,
		phase:   PhaseWaiting,
		crib:    NewCrib(),
		winner:  -1,
		clock:   quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.publish(GameStartEvent{stamp: t.now(), Names: players.Names()})
	return t, nil
}

// Players returns the player set
func (t *Table) Players() *PlayerSet { return t.players }

// Phase returns the current phase
func (t *Table) Phase() Phase { return t.phase }

// Round returns the 1-based round number, 0 before the first deal
func (t *Table) Round() int { return t.round }

// Dealer returns the dealer's seat
func (t *Table) Dealer() int { return t.players.Dealer() }

// Turn returns the seat expected to act next in the play or show phase
func (t *Table) Turn() int { return t.players.Current() }

// Winner returns the winning seat once the game is over, or -1
func (t *Table) Winner() int { return t.winner }

// Crib returns the round's crib
func (t *Table) Crib() *Crib { return t.crib }

// Ledger returns the round's uncommitted awards
func (t *Table) Ledger() *Ledger { return &t.ledger }

// PlayState returns the play phase state, nil outside the play phase
func (t *Table) PlayState() *PlayState { return t.play }

// Magic returns the starter card once cut
func (t *Table) Magic() (deck.Card, bool) {
	if t.magic == nil {
		return deck.Card{}, false
	}
	return *t.magic, true
}

// Held returns the cards seat still holds during play, or nil if unknown
func (t *Table) Held(seat int) []deck.Card {
	if t.held == nil || t.held[seat] == nil {
		return nil
	}
	return t.held[seat].Cards()
}

// Kept returns seat's post-discard hand, or nil if unknown
func (t *Table) Kept(seat int) *deck.Hand {
	h := t.players.Player(seat).Hand
	if h == nil {
		return nil
	}
	return h.Clone()
}

// Scores returns committed plus pending points for every seat
func (t *Table) Scores() []int {
	scores := t.players.Scores()
	for i := range scores {
		scores[i] = min(scores[i]+t.ledger.Pending(i), TargetScore)
	}
	return scores
}

// StartRound begins a new deal. The first round is dealt by seat 0 and
// every later round by the next seat.
func (t *Table) StartRound() error {
	if t.phase != PhaseWaiting && !(t.phase == PhaseRoundEnd && t.committed) {
		return fmt.Errorf("%w: cannot start a round while %s", ErrWrongPhase, t.phase)
	}
	if t.round > 0 {
		t.players.AdvanceDealer()
	}
	t.round++

	t.players.ResetRound()
	t.ledger.Discard()
	t.crib = NewCrib()
	t.magic = nil
	t.play = nil
	t.held = nil
	t.shown = 0
	t.cribShown = false
	t.committed = false

	if err := t.transition(PhaseDealing); err != nil {
		return err
	}
	t.publish(RoundStartEvent{
		stamp:  t.now(),
		Round:  t.round,
		Dealer: t.players.Dealer(),
		Names:  t.players.Names(),
		Scores: t.players.Scores(),
	})
	return nil
}

// Deal records the cards dealt to seat
func (t *Table) Deal(seat int, cards []deck.Card) error {
	if t.phase != PhaseDealing {
		return fmt.Errorf("%w: deal during %s", ErrWrongPhase, t.phase)
	}
	if want := DealSize(t.players.Len()); len(cards) != want {
		return fmt.Errorf("%w: dealt %d cards, want %d", ErrProtocolViolation, len(cards), want)
	}

	p := t.players.Player(seat)
	p.Hand = deck.NewHand(cards...)
	t.publish(HandDealtEvent{stamp: t.now(), Seat: seat, Player: p.Name, Cards: p.Hand.Cards()})
	return nil
}

// Discard moves seat's discards into the crib. When the seat's hand is
// known the cards must come from it.
func (t *Table) Discard(seat int, cards []deck.Card) error {
	if t.phase != PhaseDealing && t.phase != PhaseDiscarding {
		return fmt.Errorf("%w: discard during %s", ErrWrongPhase, t.phase)
	}
	if t.crib.Contributed(seat) {
		return fmt.Errorf("%w: seat %d already discarded", ErrProtocolViolation, seat)
	}
	if want := DiscardSize(t.players.Len()); len(cards) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrWrongDiscardCount, len(cards), want)
	}

	p := t.players.Player(seat)
	if p.Hand != nil {
		remaining := p.Hand.Clone()
		for _, c := range cards {
			if !remaining.RemoveCard(c) {
				return fmt.Errorf("%w: discarded %s which was not dealt", ErrProtocolViolation, c)
			}
		}
		p.Hand = remaining
	}

	t.crib.Add(seat, cards)
	if t.phase == PhaseDealing {
		if err := t.transition(PhaseDiscarding); err != nil {
			return err
		}
	}
	t.publish(DiscardEvent{stamp: t.now(), Seat: seat, Player: p.Name, Cards: append([]deck.Card(nil), cards...)})
	return nil
}

// CutMagic turns the starter card and begins the play phase. A jack earns
// the dealer 2 for his heels. It reports whether heels were scored.
func (t *Table) CutMagic(card deck.Card) (bool, error) {
	if t.phase != PhaseDiscarding {
		return false, fmt.Errorf("%w: cut during %s", ErrWrongPhase, t.phase)
	}

	t.magic = &card
	dealer := t.players.Dealer()
	heels := card.Rank == deck.Jack
	if heels {
		var tally scoring.Tally
		tally.Add(scoring.KindHeels, 2, card)
		t.ledger.Add(dealer, tally)
	}

	n := t.players.Len()
	t.play = NewPlayState(n)
	t.held = make([]*deck.Hand, n)
	for i, p := range t.players.Players() {
		if p.Hand != nil {
			t.held[i] = p.Hand.Clone()
		}
	}
	t.players.ResetTo(dealer + 1)

	if err := t.transition(PhasePlaying); err != nil {
		return false, err
	}
	t.publish(MagicCutEvent{stamp: t.now(), Card: card, Dealer: dealer, Heels: heels})
	return heels, nil
}

// Finished reports whether seat has no cards left in the play phase.
// Finished seats still take their turn with an automatic go.
func (t *Table) Finished(seat int) bool {
	return t.play != nil && t.play.Finished(seat)
}

// Playable returns the cards seat could lay without passing 31, or nil if
// the seat's hand is unknown
func (t *Table) Playable(seat int) []deck.Card {
	if t.play == nil || t.held == nil || t.held[seat] == nil {
		return nil
	}
	var out []deck.Card
	for _, c := range t.held[seat].Cards() {
		if t.play.CanPlay(c) {
			out = append(out, c)
		}
	}
	return out
}

// View returns the play phase state as seen by seat
func (t *Table) View(seat int) PlayView {
	v := PlayView{Seat: seat, Scores: t.Scores(), Hand: t.Held(seat)}
	if t.magic != nil {
		v.Magic = *t.magic
	}
	if t.play != nil {
		v.Count = t.play.Count()
		v.History = t.play.History()
	}
	return v
}

// Play applies seat's move. A nil card is a go; exhausted reports that the
// seat holds no cards after the move. Finished seats must be given an
// automatic go with exhausted set.
func (t *Table) Play(seat int, card *deck.Card, exhausted bool) (PlayOutcome, error) {
	if t.phase != PhasePlaying {
		return PlayOutcome{}, fmt.Errorf("%w: play during %s", ErrWrongPhase, t.phase)
	}
	if seat != t.players.Current() {
		return PlayOutcome{}, fmt.Errorf("%w: seat %d moved, seat %d expected", ErrNotYourTurn, seat, t.players.Current())
	}
	if err := t.checkMove(seat, card, exhausted); err != nil {
		return PlayOutcome{}, err
	}

	out, err := t.play.Apply(seat, card, exhausted)
	if err != nil {
		return out, err
	}

	p := t.players.Player(seat)
	if card != nil && t.held[seat] != nil {
		t.held[seat].RemoveCard(*card)
	}
	if t.play.Finished(seat) {
		p.Finished = true
	}
	for _, a := range out.Awards {
		t.ledger.Add(a.Seat, a.Tally)
	}
	t.players.Advance()

	t.publish(PlayEvent{
		stamp:        t.now(),
		Seat:         seat,
		Player:       p.Name,
		Card:         card,
		Exhausted:    exhausted,
		Count:        out.Count,
		Awards:       out.Awards,
		SegmentReset: out.SegmentReset,
		Done:         out.Done,
	})

	if out.Done {
		t.players.ResetTo(t.players.Dealer() + 1)
		if err := t.transition(PhaseShowing); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (t *Table) checkMove(seat int, card *deck.Card, exhausted bool) error {
	if t.play.Finished(seat) {
		if card != nil || !exhausted {
			return fmt.Errorf("%w: seat %d has no cards and must pass", ErrIllegalPlay, seat)
		}
		return nil
	}

	held := t.held[seat]
	if held == nil {
		return nil
	}

	if card == nil {
		if playable := t.Playable(seat); len(playable) > 0 {
			return fmt.Errorf("%w: go while holding playable %s", ErrIllegalPlay, deck.FormatCards(playable))
		}
		if exhausted {
			return fmt.Errorf("%w: go marked exhausted with %d cards held", ErrProtocolViolation, held.Len())
		}
		return nil
	}

	if !held.Contains(*card) {
		return fmt.Errorf("%w: %s is not held", ErrIllegalPlay, card)
	}
	if last := held.Len() == 1; exhausted != last {
		return fmt.Errorf("%w: exhausted=%t with %d cards held", ErrProtocolViolation, exhausted, held.Len())
	}
	return nil
}

// Show reveals and scores seat's kept hand. When the hand is already known
// the revealed cards must match it.
func (t *Table) Show(seat int, hand *deck.Hand) (scoring.Tally, error) {
	if t.phase != PhaseShowing || t.shown >= t.players.Len() {
		return scoring.Tally{}, fmt.Errorf("%w: show during %s", ErrWrongPhase, t.phase)
	}
	if seat != t.players.Current() {
		return scoring.Tally{}, fmt.Errorf("%w: seat %d showed, seat %d expected", ErrNotYourTurn, seat, t.players.Current())
	}

	revealed, err := t.reveal(hand, t.players.Player(seat).Hand, KeptHandSize)
	if err != nil {
		return scoring.Tally{}, fmt.Errorf("seat %d: %w", seat, err)
	}

	p := t.players.Player(seat)
	p.Hand = revealed
	tally := scoring.ScoreHand(revealed)
	t.ledger.Add(seat, tally)
	t.shown++
	t.players.Advance()
	if t.shown == t.players.Len() {
		// back from the dealer's successor to the dealer, who shows the crib
		t.players.StepBack(1)
	}

	t.publish(ShowEvent{stamp: t.now(), Seat: seat, Player: p.Name, Hand: revealed.Clone(), Tally: tally})
	return tally, nil
}

// ShowCrib reveals and scores the crib for the dealer once every hand has
// been shown
func (t *Table) ShowCrib(hand *deck.Hand) (scoring.Tally, error) {
	if t.phase != PhaseShowing || t.shown < t.players.Len() {
		return scoring.Tally{}, fmt.Errorf("%w: crib shown before every hand", ErrWrongPhase)
	}

	n := t.players.Len()
	var known *deck.Hand
	if t.crib.Contributions() == n {
		known = t.crib.Hand(nil)
	}
	revealed, err := t.reveal(hand, known, n*DiscardSize(n))
	if err != nil {
		return scoring.Tally{}, fmt.Errorf("crib: %w", err)
	}
	t.crib.Replace(revealed.Cards())

	dealer := t.players.Dealer()
	tally := scoring.ScoreHand(revealed)
	t.ledger.Add(dealer, tally)
	t.cribShown = true

	if err := t.transition(PhaseRoundEnd); err != nil {
		return tally, err
	}
	t.publish(ShowEvent{
		stamp:  t.now(),
		Seat:   dealer,
		Player: t.players.Player(dealer).Name,
		Hand:   revealed.Clone(),
		Tally:  tally,
		Crib:   true,
	})
	return tally, nil
}

func (t *Table) reveal(hand, known *deck.Hand, size int) (*deck.Hand, error) {
	if m, ok := hand.Magic(); ok && m != *t.magic {
		return nil, fmt.Errorf("%w: revealed with magic %s, cut was %s", ErrProtocolViolation, m, t.magic)
	}
	if hand.Len() != size {
		return nil, fmt.Errorf("%w: revealed %d cards, want %d", ErrProtocolViolation, hand.Len(), size)
	}

	revealed := hand.Clone()
	revealed.SetMagic(*t.magic)
	if known != nil {
		want := known.Clone()
		want.SetMagic(*t.magic)
		if !want.Equal(revealed) {
			return nil, fmt.Errorf("%w: revealed %s, held %s", ErrProtocolViolation, revealed, want)
		}
	}
	return revealed, nil
}

// RoundCards returns every card out of the deck this round: the kept hands
// and the crib. Only complete on the coordinator.
func (t *Table) RoundCards() []deck.Card {
	var cards []deck.Card
	for _, p := range t.players.Players() {
		if p.Hand != nil {
			cards = append(cards, p.Hand.Cards()...)
		}
	}
	return append(cards, t.crib.Cards()...)
}

// EndRound commits the round's scores. It reports whether the game is over.
// The winner is the first player whose score reached the target while the
// awards were applied in the order they were earned.
func (t *Table) EndRound() (bool, error) {
	if t.phase != PhaseRoundEnd || !t.cribShown || t.committed {
		return false, fmt.Errorf("%w: end round during %s", ErrWrongPhase, t.phase)
	}

	awards := t.ledger.Awards()
	winner := t.ledger.Commit(t.players)
	t.committed = true

	t.publish(RoundEndEvent{stamp: t.now(), Round: t.round, Awards: awards, Scores: t.players.Scores()})

	if winner < 0 {
		return false, nil
	}
	t.winner = winner
	if err := t.transition(PhaseGameOver); err != nil {
		return true, err
	}
	t.publish(GameOverEvent{stamp: t.now(), Winner: winner, Names: t.players.Names(), Scores: t.players.Scores()})
	return true, nil
}

// Abort drops the round's uncommitted scores
func (t *Table) Abort() {
	t.ledger.Discard()
}

func (t *Table) transition(next Phase) error {
	if !t.phase.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrWrongPhase, t.phase, next)
	}
	prev := t.phase
	t.phase = next
	t.publish(PhaseChangeEvent{stamp: t.now(), From: prev, To: next})
	return nil
}

func (t *Table) now() stamp {
	return stamp{at: t.clock.Now()}
}

func (t *Table) publish(event GameEvent) {
	if t.bus != nil {
		t.bus.Publish(event)
	}
}
