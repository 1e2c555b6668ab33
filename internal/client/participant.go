package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/protocol"
)

// ErrCoordinatorLeft is returned when the coordinator closes the connection
// before the game is over
var ErrCoordinatorLeft = errors.New("coordinator left")

// Outcome is a participant's view of a finished game
type Outcome struct {
	Seat   int
	Names  []string
	Scores []int
	Winner string
	Rounds int
}

// Participant runs the mirrored half of the game. It keeps its own table
// built only from frames it has seen and asks its agent for decisions on
// its own turns.
type Participant struct {
	name      string
	agent     game.Agent
	transport protocol.Transport
	logger    *log.Logger
	clock     quartz.Clock
	seed      string
	bus       *game.SimpleEventBus

	table *game.Table
	seat  int
}

// ParticipantOption configures a Participant
type ParticipantOption func(*Participant)

// WithSeed joins a seeded-shuffle game. The participant sends a seed
// derived from seed and the round number whenever it deals. Any seeded
// deal, its own or relayed, is checked against the rebuilt shuffle.
func WithSeed(seed string) ParticipantOption {
	return func(p *Participant) { p.seed = seed }
}

// WithClock sets the clock used for event timestamps
func WithClock(clock quartz.Clock) ParticipantOption {
	return func(p *Participant) { p.clock = clock }
}

// WithSubscriber adds a display sink for table events
func WithSubscriber(sub game.EventSubscriber) ParticipantOption {
	return func(p *Participant) { p.bus.Subscribe(sub) }
}

// NewParticipant creates a participant called name playing over transport
func NewParticipant(name string, agent game.Agent, transport protocol.Transport, logger *log.Logger, opts ...ParticipantOption) *Participant {
	p := &Participant{
		name:      name,
		agent:     agent,
		transport: transport,
		logger:    logger.WithPrefix("participant").With("player", name),
		clock:     quartz.NewReal(),
		bus:       game.NewEventBus(),
		seat:      -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Table returns the participant's table, nil before the game starts
func (p *Participant) Table() *game.Table { return p.table }

// Run joins the game and plays it to the end. The transport is closed when
// Run returns. Cancelling ctx closes the transport to unblock receives.
func (p *Participant) Run(ctx context.Context) (*Outcome, error) {
	stop := context.AfterFunc(ctx, func() { _ = p.transport.Close() })
	defer stop()
	defer p.transport.Close()

	outcome, err := p.run()
	if err != nil {
		if p.table != nil {
			p.table.Abort()
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return outcome, nil
}

func (p *Participant) run() (*Outcome, error) {
	if err := p.send(protocol.Name{Name: p.name}); err != nil {
		return nil, err
	}
	start, err := expect[protocol.Start](p)
	if err != nil {
		return nil, err
	}
	p.seat = slices.Index(start.Names, p.name)
	if p.seat < 0 {
		return nil, fmt.Errorf("%w: %s missing from start %v", game.ErrProtocolViolation, p.name, start.Names)
	}

	table, err := game.NewTable(start.Names, game.WithEventBus(p.bus), game.WithClock(p.clock))
	if err != nil {
		return nil, err
	}
	p.table = table
	p.logger.Info("Game started", "seat", p.seat, "players", start.Names)

	for {
		over, err := p.playRound()
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", table.Round(), err)
		}
		if over {
			break
		}
	}

	outcome := &Outcome{
		Seat:   p.seat,
		Names:  start.Names,
		Scores: table.Players().Scores(),
		Winner: start.Names[table.Winner()],
		Rounds: table.Round(),
	}
	p.logger.Info("Game finished", "winner", outcome.Winner, "scores", outcome.Scores)
	return outcome, nil
}

func (p *Participant) playRound() (bool, error) {
	t := p.table
	if err := t.StartRound(); err != nil {
		return false, err
	}
	var seed string
	if p.seed != "" && t.Dealer() == p.seat {
		seed = fmt.Sprintf("%s-%d", p.seed, t.Round())
		if err := p.send(protocol.Seed{Seed: seed}); err != nil {
			return false, err
		}
	}

	dealt, relayed, err := p.receiveDeal()
	if err != nil {
		return false, err
	}
	if relayed != "" {
		seed = relayed
	}
	if seed != "" {
		if err := p.checkSeededDeal(seed, dealt.Cards); err != nil {
			return false, err
		}
	}

	if err := p.discard(dealt); err != nil {
		return false, err
	}

	cut, err := expect[protocol.Card](p)
	if err != nil {
		return false, err
	}
	if _, err := t.CutMagic(cut.Card); err != nil {
		return false, err
	}

	if err := p.playCards(); err != nil {
		return false, err
	}
	if err := p.send(protocol.RoundDone{}); err != nil {
		return false, err
	}
	if err := p.show(cut.Card); err != nil {
		return false, err
	}
	return t.EndRound()
}

// receiveDeal reads this seat's dealt hand. In a seeded game the other
// seats are first sent the dealer's seed, which is returned alongside.
func (p *Participant) receiveDeal() (protocol.Hand, string, error) {
	f, err := p.transport.Receive()
	if errors.Is(err, io.EOF) {
		return protocol.Hand{}, "", ErrCoordinatorLeft
	}
	if err != nil {
		return protocol.Hand{}, "", err
	}

	switch f := f.(type) {
	case protocol.Hand:
		return f, "", nil
	case protocol.Seed:
		p.logger.Debug("Received", "frame", f.Tag(), "seed", f.Seed)
		dealt, err := expect[protocol.Hand](p)
		return dealt, f.Seed, err
	default:
		return protocol.Hand{}, "", fmt.Errorf("%w: %w: got %s, want hand", game.ErrProtocolViolation, protocol.ErrUnexpectedFrame, f.Tag())
	}
}

// checkSeededDeal rebuilds the shuffle from seed and requires the dealt
// cards to match it
func (p *Participant) checkSeededDeal(seed string, dealt []deck.Card) error {
	want, err := game.SeededHand(seed, p.table.Players().Len(), p.seat)
	if err != nil {
		return err
	}
	if !slices.Equal(want, dealt) {
		return fmt.Errorf("%w: dealt %s does not match seed %q", game.ErrProtocolViolation, deck.FormatCards(dealt), seed)
	}
	return nil
}

func (p *Participant) discard(dealt protocol.Hand) error {
	t := p.table
	if err := t.Deal(p.seat, dealt.Cards); err != nil {
		return err
	}

	n := game.DiscardSize(t.Players().Len())
	indices, err := p.agent.ChooseDiscard(dealt.Cards, n, t.Dealer() == p.seat)
	if err != nil {
		return fmt.Errorf("choose discard: %w", err)
	}
	cards, err := pick(dealt.Cards, indices, n)
	if err != nil {
		return err
	}
	if err := t.Discard(p.seat, cards); err != nil {
		return err
	}
	return p.send(protocol.Hand{Cards: cards})
}

func (p *Participant) playCards() error {
	t := p.table
	for t.Phase() == game.PhasePlaying {
		seat := t.Turn()
		switch {
		case t.Finished(seat):
			if _, err := t.Play(seat, nil, true); err != nil {
				return err
			}

		case seat == p.seat:
			var card *deck.Card
			if playable := t.Playable(seat); len(playable) > 0 {
				chosen, err := p.agent.ChoosePlay(playable, t.View(seat))
				if err != nil {
					return fmt.Errorf("choose play: %w", err)
				}
				card = chosen
			}
			exhausted := card != nil && len(t.Held(seat)) == 1
			if _, err := t.Play(seat, card, exhausted); err != nil {
				return err
			}
			if err := p.send(protocol.Play{Card: card, Exhausted: exhausted}); err != nil {
				return err
			}

		default:
			f, err := expect[protocol.Play](p)
			if err != nil {
				return err
			}
			if _, err := t.Play(seat, f.Card, f.Exhausted); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Participant) show(magic deck.Card) error {
	t := p.table
	for range t.Players().Len() {
		seat := t.Turn()
		if seat == p.seat {
			kept := t.Kept(p.seat)
			kept.SetMagic(magic)
			if _, err := t.Show(p.seat, kept); err != nil {
				return err
			}
			if err := p.send(protocol.NewHand(kept)); err != nil {
				return err
			}
			continue
		}

		f, err := expect[protocol.Hand](p)
		if err != nil {
			return err
		}
		if _, err := t.Show(seat, f.ToHand()); err != nil {
			return err
		}
	}

	crib, err := expect[protocol.Hand](p)
	if err != nil {
		return err
	}
	_, err = t.ShowCrib(crib.ToHand())
	return err
}

func (p *Participant) send(f protocol.Frame) error {
	if err := p.transport.Send(f); err != nil {
		return fmt.Errorf("send %s: %w", f.Tag(), err)
	}
	p.logger.Debug("Sent", "frame", f.Tag())
	return nil
}

func expect[T protocol.Frame](p *Participant) (T, error) {
	f, err := protocol.Expect[T](p.transport)
	switch {
	case err == nil:
		p.logger.Debug("Received", "frame", f.Tag())
		return f, nil
	case errors.Is(err, io.EOF):
		return f, ErrCoordinatorLeft
	case errors.Is(err, protocol.ErrUnexpectedFrame):
		return f, fmt.Errorf("%w: %w", game.ErrProtocolViolation, err)
	default:
		return f, err
	}
}

// pick returns the chosen cards, requiring want distinct in-range indices
func pick(hand []deck.Card, indices []int, want int) ([]deck.Card, error) {
	if len(indices) != want {
		return nil, fmt.Errorf("%w: chose %d, want %d", game.ErrWrongDiscardCount, len(indices), want)
	}
	cards := make([]deck.Card, 0, want)
	seen := make(map[int]bool, want)
	for _, i := range indices {
		if i < 0 || i >= len(hand) || seen[i] {
			return nil, fmt.Errorf("%w: bad discard index %d", game.ErrWrongDiscardCount, i)
		}
		seen[i] = true
		cards = append(cards, hand[i])
	}
	return cards, nil
}
