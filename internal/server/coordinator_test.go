package server

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/cribbage/internal/bot"
	"github.com/lox/cribbage/internal/client"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/protocol"
	"github.com/lox/cribbage/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// pipeSeats connects a coordinator-side and a participant-side transport
// for each name
func pipeSeats(names ...string) ([]Seat, []protocol.Transport) {
	seats := make([]Seat, len(names))
	remotes := make([]protocol.Transport, len(names))
	for i, name := range names {
		a, b := net.Pipe()
		seats[i] = Seat{Name: name, Transport: protocol.NewConn(a)}
		remotes[i] = protocol.NewConn(b)
	}
	return seats, remotes
}

type gameRun struct {
	result   *Result
	outcomes []*client.Outcome
}

func playBotGame(t *testing.T, seeded bool, strategies ...string) gameRun {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	names := make([]string, len(strategies))
	for i := range strategies {
		names[i] = string(rune('a'+i)) + "-" + strategies[i]
	}
	seats, remotes := pipeSeats(names...)

	coord, err := NewCoordinator(seats, testLogger(), WithSeededShuffle(seeded))
	require.NoError(t, err)

	run := gameRun{outcomes: make([]*client.Outcome, len(names))}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		run.result, err = coord.Run(ctx)
		return err
	})
	for i, strategy := range strategies {
		agent, err := bot.New(strategy, randutil.New(randutil.SeedFromString(names[i])), testLogger())
		require.NoError(t, err)

		var opts []client.ParticipantOption
		if seeded {
			opts = append(opts, client.WithSeed(names[i]))
		}
		p := client.NewParticipant(names[i], agent, remotes[i], testLogger(), opts...)
		g.Go(func() error {
			var err error
			run.outcomes[i], err = p.Run(ctx)
			return err
		})
	}
	require.NoError(t, g.Wait())
	return run
}

func TestCoordinatorPlaysFullGame(t *testing.T) {
	tests := []struct {
		name       string
		strategies []string
	}{
		{"two players", []string{"random", "greedy"}},
		{"three players", []string{"greedy", "random", "random"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := playBotGame(t, false, tt.strategies...)
			require.NotNil(t, run.result)

			assert.GreaterOrEqual(t, run.result.Rounds, 1)
			assert.Contains(t, run.result.Names, run.result.Winner)
			assert.Contains(t, run.result.Scores, game.TargetScore)
			for _, s := range run.result.Scores {
				assert.LessOrEqual(t, s, game.TargetScore)
			}

			for i, o := range run.outcomes {
				require.NotNil(t, o)
				assert.Equal(t, i, o.Seat)
				assert.Equal(t, run.result.Scores, o.Scores, "participant %d disagrees on scores", i)
				assert.Equal(t, run.result.Winner, o.Winner)
				assert.Equal(t, run.result.Rounds, o.Rounds)
			}
		})
	}
}

func TestCoordinatorSeededShuffleIsReproducible(t *testing.T) {
	first := playBotGame(t, true, "random", "greedy")
	second := playBotGame(t, true, "random", "greedy")

	assert.Equal(t, first.result.Scores, second.result.Scores)
	assert.Equal(t, first.result.Rounds, second.result.Rounds)
	assert.Equal(t, first.result.Winner, second.result.Winner)
	assert.NotEqual(t, first.result.GameID, second.result.GameID)
}

func TestCoordinatorRelaysSeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seats, remotes := pipeSeats("alice", "bob")
	coord, err := NewCoordinator(seats, testLogger(), WithSeededShuffle(true))
	require.NoError(t, err)

	aliceDealt := make(chan []deck.Card, 1)
	bobSeed := make(chan string, 1)
	bobDealt := make(chan []deck.Card, 1)

	go func() {
		alice := remotes[0]
		_, _ = protocol.Expect[protocol.Start](alice)
		_ = alice.Send(protocol.Seed{Seed: "thursday-1"})
		hand, _ := protocol.Expect[protocol.Hand](alice)
		aliceDealt <- hand.Cards
	}()
	go func() {
		bob := remotes[1]
		_, _ = protocol.Expect[protocol.Start](bob)
		seed, _ := protocol.Expect[protocol.Seed](bob)
		bobSeed <- seed.Seed
		hand, _ := protocol.Expect[protocol.Hand](bob)
		bobDealt <- hand.Cards
	}()

	errc := make(chan error, 1)
	go func() {
		_, err := coord.Run(ctx)
		errc <- err
	}()

	assert.Equal(t, "thursday-1", <-bobSeed)

	want, err := game.SeededHand("thursday-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, want, <-aliceDealt)

	want, err = game.SeededHand("thursday-1", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, want, <-bobDealt)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestCoordinatorRejectsWrongDiscardCount(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seats, remotes := pipeSeats("alice", "bob")
	coord, err := NewCoordinator(seats, testLogger())
	require.NoError(t, err)

	go func() {
		// alice discards a single card
		alice := remotes[0]
		_, _ = protocol.Expect[protocol.Start](alice)
		dealt, err := protocol.Expect[protocol.Hand](alice)
		if err != nil {
			return
		}
		_ = alice.Send(protocol.Hand{Cards: dealt.Cards[:1]})
	}()
	go func() {
		bob := remotes[1]
		_, _ = protocol.Expect[protocol.Start](bob)
		_, _ = protocol.Expect[protocol.Hand](bob)
	}()

	_, err = coord.Run(ctx)
	require.ErrorIs(t, err, game.ErrWrongDiscardCount)
	assert.Equal(t, []int{0, 0}, coord.Table().Scores())
}

func TestCoordinatorRejectsForeignDiscard(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seats, remotes := pipeSeats("alice", "bob")
	coord, err := NewCoordinator(seats, testLogger())
	require.NoError(t, err)

	go func() {
		alice := remotes[0]
		_, _ = protocol.Expect[protocol.Start](alice)
		dealt, err := protocol.Expect[protocol.Hand](alice)
		if err != nil {
			return
		}
		// swap one dealt card for a card alice was not given
		held := deck.NewHand(dealt.Cards...)
		var foreign deck.Card
		for _, c := range deck.NewDeck().Cards() {
			if !held.Contains(c) {
				foreign = c
				break
			}
		}
		_ = alice.Send(protocol.Hand{Cards: []deck.Card{dealt.Cards[0], foreign}})
	}()
	go func() {
		bob := remotes[1]
		_, _ = protocol.Expect[protocol.Start](bob)
		_, _ = protocol.Expect[protocol.Hand](bob)
	}()

	_, err = coord.Run(ctx)
	require.ErrorIs(t, err, game.ErrProtocolViolation)
}

func TestCoordinatorPlayerLeaves(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seats, remotes := pipeSeats("alice", "bob")
	coord, err := NewCoordinator(seats, testLogger())
	require.NoError(t, err)

	go func() {
		alice := remotes[0]
		_, _ = protocol.Expect[protocol.Start](alice)
		_, _ = protocol.Expect[protocol.Hand](alice)
		_ = alice.Close()
	}()
	go func() {
		bob := remotes[1]
		_, _ = protocol.Expect[protocol.Start](bob)
		_, _ = protocol.Expect[protocol.Hand](bob)
	}()

	_, err = coord.Run(ctx)
	require.ErrorIs(t, err, ErrPlayerLeft)
	assert.Contains(t, err.Error(), "alice")
}

func TestCoordinatorUnexpectedFrame(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seats, remotes := pipeSeats("alice", "bob")
	coord, err := NewCoordinator(seats, testLogger())
	require.NoError(t, err)

	go func() {
		alice := remotes[0]
		_, _ = protocol.Expect[protocol.Start](alice)
		_, _ = protocol.Expect[protocol.Hand](alice)
		_ = alice.Send(protocol.RoundDone{})
	}()
	go func() {
		bob := remotes[1]
		_, _ = protocol.Expect[protocol.Start](bob)
		_, _ = protocol.Expect[protocol.Hand](bob)
	}()

	_, err = coord.Run(ctx)
	require.ErrorIs(t, err, game.ErrProtocolViolation)
	assert.ErrorIs(t, err, protocol.ErrUnexpectedFrame)
}

func TestCoordinatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	seats, remotes := pipeSeats("alice", "bob")
	coord, err := NewCoordinator(seats, testLogger(), WithSeededShuffle(true))
	require.NoError(t, err)

	for _, r := range remotes {
		go func() {
			// read Start, then never send the seed
			_, _ = protocol.Expect[protocol.Start](r)
			cancel()
		}()
	}

	_, err = coord.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
