package bot

import (
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/cribbage/internal/deck"
	"github.com/lox/cribbage/internal/game"
)

// RandomBot makes uniform random legal choices
type RandomBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandomBot creates a new RandomBot instance
func NewRandomBot(rng *rand.Rand, logger *log.Logger) *RandomBot {
	return &RandomBot{rng: rng, logger: logger.WithPrefix("random-bot")}
}

func (r *RandomBot) ChooseDiscard(hand []deck.Card, count int, dealer bool) ([]int, error) {
	picks := r.rng.Perm(len(hand))[:count]
	slices.Sort(picks)
	r.logger.Debug("Discarding", "hand", deck.FormatCards(hand), "indices", picks)
	return picks, nil
}

func (r *RandomBot) ChoosePlay(playable []deck.Card, view game.PlayView) (*deck.Card, error) {
	if len(playable) == 0 {
		return nil, nil
	}
	c := playable[r.rng.IntN(len(playable))]
	r.logger.Debug("Playing", "card", c, "count", view.Count)
	return &c, nil
}
