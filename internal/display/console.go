package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
)

// ConsoleDisplay renders table events for a person at a terminal. Play
// events are paced so moves from fast opponents can be followed.
type ConsoleDisplay struct {
	out   io.Writer
	self  string
	pace  time.Duration
	clock quartz.Clock

	mu    sync.Mutex
	names []string
}

// NewConsoleDisplay creates a display for the player called self. A zero
// pace disables pacing.
func NewConsoleDisplay(out io.Writer, self string, pace time.Duration, clock quartz.Clock) *ConsoleDisplay {
	return &ConsoleDisplay{out: out, self: self, pace: pace, clock: clock}
}

// OnEvent renders one event
func (d *ConsoleDisplay) OnEvent(event game.GameEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch e := event.(type) {
	case game.GameStartEvent:
		d.names = e.Names
		d.printf("%s\n", HeaderStyle.Render("Cribbage"))
		d.printf("Players in order: %s\n", strings.Join(e.Names, ", "))

	case game.RoundStartEvent:
		d.names = e.Names
		d.printf("\n%s\n", HeaderStyle.Render(fmt.Sprintf("Round %d · %s deals", e.Round, d.name(e.Dealer))))
		d.printf("%s\n", FormatScores(e.Names, e.Scores))

	case game.HandDealtEvent:
		if e.Player == d.self {
			d.printf("Your hand:\n%s\n", RenderHand(deck.NewHand(e.Cards...), true))
		}

	case game.DiscardEvent:
		if e.Player == d.self && len(e.Cards) > 0 {
			d.printf("You put %s in the crib\n", FormatCards(e.Cards))
		}

	case game.MagicCutEvent:
		d.printf("Cut: %s\n", FormatCard(e.Card))
		if e.Heels {
			d.printf("%s scores %s for heels\n", d.name(e.Dealer), ScoreStyle.Render("2"))
		}

	case game.PlayEvent:
		d.renderPlay(e)
		d.wait()

	case game.ShowEvent:
		title := fmt.Sprintf("%s shows", d.name(e.Seat))
		if e.Crib {
			title = fmt.Sprintf("%s's crib", d.name(e.Seat))
		}
		d.printf("\n%s\n%s\n%s\n", PromptStyle.Render(title), RenderHand(e.Hand, false), FormatTally(e.Tally))
		d.wait()

	case game.RoundEndEvent:
		d.printf("\nEnd of round %d: %s\n", e.Round, FormatScores(d.names, e.Scores))

	case game.GameOverEvent:
		d.printf("\n%s\n", HeaderStyle.Render(fmt.Sprintf("%s wins!", d.name(e.Winner))))
		d.printf("%s\n", FormatScores(e.Names, e.Scores))
	}
}

func (d *ConsoleDisplay) renderPlay(e game.PlayEvent) {
	who := d.name(e.Seat)
	switch {
	case e.Card != nil:
		d.printf("%s plays %s, count %d\n", who, FormatCard(*e.Card), e.Count)
	case !e.Exhausted:
		d.printf("%s says go\n", who)
	}

	for _, a := range e.Awards {
		for _, item := range a.Tally.Items {
			d.printf("  %s scores %s for %s\n", d.name(a.Seat), ScoreStyle.Render(fmt.Sprint(item.Points)), item.Kind)
		}
	}
	if e.SegmentReset && !e.Done {
		d.printf("%s\n", InfoStyle.Render("-- count starts again --"))
	}
}

func (d *ConsoleDisplay) wait() {
	if d.pace <= 0 {
		return
	}
	t := d.clock.NewTimer(d.pace, "display", "pace")
	<-t.C
}

func (d *ConsoleDisplay) name(seat int) string {
	if seat >= 0 && seat < len(d.names) {
		return d.names[seat]
	}
	return fmt.Sprintf("seat %d", seat)
}

func (d *ConsoleDisplay) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}
