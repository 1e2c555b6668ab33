package display

import (
	"github.com/charmbracelet/log"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
)

// LogDisplay writes table events as structured log lines. Bots and the
// coordinator use it in place of a console.
type LogDisplay struct {
	logger *log.Logger
}

// NewLogDisplay creates a display that logs through logger
func NewLogDisplay(logger *log.Logger) *LogDisplay {
	return &LogDisplay{logger: logger.WithPrefix("table")}
}

// OnEvent logs one event
func (d *LogDisplay) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.GameStartEvent:
		d.logger.Info("Game started", "players", e.Names)
	case game.RoundStartEvent:
		d.logger.Info("Round started", "round", e.Round, "dealer", e.Names[e.Dealer], "scores", e.Scores)
	case game.PhaseChangeEvent:
		d.logger.Debug("Phase changed", "from", e.From, "to", e.To)
	case game.HandDealtEvent:
		d.logger.Debug("Hand dealt", "player", e.Player, "cards", deck.FormatCards(e.Cards))
	case game.DiscardEvent:
		d.logger.Debug("Discarded", "player", e.Player, "cards", deck.FormatCards(e.Cards))
	case game.MagicCutEvent:
		d.logger.Info("Magic cut", "card", e.Card, "heels", e.Heels)
	case game.PlayEvent:
		card := "go"
		if e.Card != nil {
			card = e.Card.String()
		}
		d.logger.Debug("Play", "player", e.Player, "card", card, "count", e.Count, "reset", e.SegmentReset)
		for _, a := range e.Awards {
			d.logger.Info("Play scored", "seat", a.Seat, "points", a.Tally.Total(), "items", a.Tally.String())
		}
	case game.ShowEvent:
		d.logger.Info("Show",
			"player", e.Player,
			"crib", e.Crib,
			"hand", e.Hand.String(),
			"points", e.Tally.Total(),
			"items", e.Tally.String())
	case game.RoundEndEvent:
		d.logger.Info("Round ended", "round", e.Round, "scores", e.Scores, "awards", len(e.Awards))
	case game.GameOverEvent:
		d.logger.Info("Game over", "winner", e.Names[e.Winner], "scores", e.Scores)
	}
}
