package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/display"
	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/gameid"
	"github.com/lox/cribbage/internal/protocol"
	"github.com/lox/cribbage/internal/randutil"
)

// ErrPlayerLeft is returned when a participant disconnects mid-game
var ErrPlayerLeft = errors.New("player left")

// Seat is a participant that completed the name handshake
type Seat struct {
	Name      string
	Transport protocol.Transport
}

// Result summarises a finished game
type Result struct {
	GameID string
	Names  []string
	Scores []int
	Winner string
	Rounds int
}

// Coordinator drives one game over the participants' transports. It deals
// from the only real deck, validates every move against its own table and
// relays each move to the other seats.
type Coordinator struct {
	id     string
	seats  []Seat
	table  *game.Table
	deck   *deck.Deck
	seeded bool
	logger *log.Logger
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*coordinatorOptions)

type coordinatorOptions struct {
	clock       quartz.Clock
	seeded      bool
	subscribers []game.EventSubscriber
}

// WithSeededShuffle makes the dealer's participant supply the shuffle seed
func WithSeededShuffle(seeded bool) CoordinatorOption {
	return func(o *coordinatorOptions) { o.seeded = seeded }
}

// WithCoordinatorClock sets the clock used for event timestamps
func WithCoordinatorClock(clock quartz.Clock) CoordinatorOption {
	return func(o *coordinatorOptions) { o.clock = clock }
}

// WithSubscriber adds a display sink for table events
func WithSubscriber(sub game.EventSubscriber) CoordinatorOption {
	return func(o *coordinatorOptions) { o.subscribers = append(o.subscribers, sub) }
}

// NewCoordinator creates a coordinator for seats in play order
func NewCoordinator(seats []Seat, logger *log.Logger, opts ...CoordinatorOption) (*Coordinator, error) {
	o := coordinatorOptions{clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(&o)
	}

	id := gameid.Generate()
	logger = logger.WithPrefix("coordinator").With("game", id)

	bus := game.NewEventBus()
	bus.Subscribe(display.NewLogDisplay(logger))
	for _, sub := range o.subscribers {
		bus.Subscribe(sub)
	}

	names := make([]string, len(seats))
	for i, s := range seats {
		names[i] = s.Name
	}
	table, err := game.NewTable(names, game.WithEventBus(bus), game.WithClock(o.clock))
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		id:     id,
		seats:  seats,
		table:  table,
		deck:   deck.NewDeck(),
		seeded: o.seeded,
		logger: logger,
	}, nil
}

// ID returns the game identifier
func (c *Coordinator) ID() string { return c.id }

// Table exposes the coordinator's game state
func (c *Coordinator) Table() *game.Table { return c.table }

// Run plays rounds until a player reaches the target score and closes
// every transport when it returns. Any error aborts the game and discards
// the round in progress. Cancelling ctx closes the transports to unblock
// receives.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	stop := context.AfterFunc(ctx, c.closeAll)
	defer stop()
	defer c.closeAll()

	result, err := c.run()
	if err != nil {
		c.table.Abort()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("game %s cancelled: %w", c.id, ctx.Err())
		}
		c.logger.Error("Game aborted", "error", err)
		return nil, fmt.Errorf("game %s: %w", c.id, err)
	}
	return result, nil
}

func (c *Coordinator) run() (*Result, error) {
	names := c.table.Players().Names()
	if err := c.broadcast(protocol.Start{Names: names}, -1); err != nil {
		return nil, err
	}
	c.logger.Info("Game started", "players", names, "seeded", c.seeded)

	for {
		over, err := c.playRound()
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", c.table.Round(), err)
		}
		if over {
			break
		}
	}

	winner := names[c.table.Winner()]
	c.logger.Info("Game finished", "winner", winner, "rounds", c.table.Round())
	return &Result{
		GameID: c.id,
		Names:  names,
		Scores: c.table.Players().Scores(),
		Winner: winner,
		Rounds: c.table.Round(),
	}, nil
}

func (c *Coordinator) playRound() (bool, error) {
	t := c.table
	if err := t.StartRound(); err != nil {
		return false, err
	}

	if err := c.shuffle(t.Dealer()); err != nil {
		return false, err
	}

	if err := c.deal(); err != nil {
		return false, err
	}
	if err := c.collectDiscards(); err != nil {
		return false, err
	}

	magic, ok := c.deck.Magic()
	if !ok {
		panic("deck exhausted before the cut")
	}
	if _, err := t.CutMagic(magic); err != nil {
		return false, err
	}
	if err := c.broadcast(protocol.Card{Card: magic}, -1); err != nil {
		return false, err
	}

	if err := c.playCards(); err != nil {
		return false, err
	}
	if err := c.awaitRoundDone(); err != nil {
		return false, err
	}
	if err := c.show(magic); err != nil {
		return false, err
	}

	c.deck.Rejoin(t.RoundCards())
	if !c.deck.IsComplete() {
		panic(fmt.Sprintf("deck holds %d cards after rejoin", c.deck.CardsRemaining()))
	}
	return t.EndRound()
}

// shuffle prepares the round's deck. A seeded round deals from a fresh deck
// shuffled by the dealer's seed, which is relayed so the other seats can
// check their hands.
func (c *Coordinator) shuffle(dealer int) error {
	if !c.seeded {
		c.deck.Shuffle(randutil.New(randutil.RandomSeed()))
		return nil
	}
	f, err := expect[protocol.Seed](c, dealer)
	if err != nil {
		return err
	}
	if !c.deck.IsComplete() {
		panic(fmt.Sprintf("deck holds %d cards before shuffle", c.deck.CardsRemaining()))
	}
	c.logger.Debug("Shuffle seeded", "dealer", c.seats[dealer].Name, "seed", f.Seed)
	if err := c.broadcast(f, dealer); err != nil {
		return err
	}
	c.deck = game.SeededDeck(f.Seed)
	return nil
}

func (c *Coordinator) deal() error {
	size := game.DealSize(len(c.seats))
	for seat := range c.seats {
		cards, err := c.deck.Deal(size)
		if err != nil {
			return err
		}
		if err := c.table.Deal(seat, cards); err != nil {
			return err
		}
		if err := c.send(seat, protocol.Hand{Cards: cards}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) collectDiscards() error {
	for seat := range c.seats {
		f, err := expect[protocol.Hand](c, seat)
		if err != nil {
			return err
		}
		if f.Magic != nil {
			return fmt.Errorf("%w: %s discarded with a magic card", game.ErrProtocolViolation, c.seats[seat].Name)
		}
		if err := c.table.Discard(seat, f.Cards); err != nil {
			return fmt.Errorf("%s: %w", c.seats[seat].Name, err)
		}
	}
	return nil
}

func (c *Coordinator) playCards() error {
	t := c.table
	for t.Phase() == game.PhasePlaying {
		seat := t.Turn()
		if t.Finished(seat) {
			if _, err := t.Play(seat, nil, true); err != nil {
				return err
			}
			continue
		}

		f, err := expect[protocol.Play](c, seat)
		if err != nil {
			return err
		}
		if _, err := t.Play(seat, f.Card, f.Exhausted); err != nil {
			return fmt.Errorf("%s: %w", c.seats[seat].Name, err)
		}
		if err := c.broadcast(f, seat); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) awaitRoundDone() error {
	for seat := range c.seats {
		if _, err := expect[protocol.RoundDone](c, seat); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) show(magic deck.Card) error {
	t := c.table
	for range c.seats {
		seat := t.Turn()
		f, err := expect[protocol.Hand](c, seat)
		if err != nil {
			return err
		}
		if _, err := t.Show(seat, f.ToHand()); err != nil {
			return fmt.Errorf("%s: %w", c.seats[seat].Name, err)
		}
		if err := c.broadcast(f, seat); err != nil {
			return err
		}
	}

	crib := t.Crib().Hand(&magic)
	if err := c.broadcast(protocol.NewHand(crib), -1); err != nil {
		return err
	}
	_, err := t.ShowCrib(crib)
	return err
}

func expect[T protocol.Frame](c *Coordinator, seat int) (T, error) {
	s := c.seats[seat]
	f, err := protocol.Expect[T](s.Transport)
	switch {
	case err == nil:
		c.logger.Debug("Received", "player", s.Name, "frame", f.Tag())
		return f, nil
	case errors.Is(err, io.EOF):
		return f, fmt.Errorf("%w: %s disconnected", ErrPlayerLeft, s.Name)
	case errors.Is(err, protocol.ErrUnexpectedFrame):
		return f, fmt.Errorf("%w: %s: %w", game.ErrProtocolViolation, s.Name, err)
	default:
		return f, fmt.Errorf("receive from %s: %w", s.Name, err)
	}
}

func (c *Coordinator) send(seat int, f protocol.Frame) error {
	s := c.seats[seat]
	if err := s.Transport.Send(f); err != nil {
		return fmt.Errorf("send to %s: %w", s.Name, err)
	}
	c.logger.Debug("Sent", "player", s.Name, "frame", f.Tag())
	return nil
}

// broadcast sends f to every seat except skip
func (c *Coordinator) broadcast(f protocol.Frame, skip int) error {
	for seat := range c.seats {
		if seat == skip {
			continue
		}
		if err := c.send(seat, f); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) closeAll() {
	for _, s := range c.seats {
		_ = s.Transport.Close()
	}
}
