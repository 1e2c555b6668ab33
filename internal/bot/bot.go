// Package bot provides built-in decision providers for unattended players.
package bot

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/cribbage/internal/game"
)

// Strategies lists the built-in strategies by name
var Strategies = []string{"random", "greedy"}

// New creates the named bot strategy
func New(strategy string, rng *rand.Rand, logger *log.Logger) (game.Agent, error) {
	switch strategy {
	case "random":
		return NewRandomBot(rng, logger), nil
	case "greedy":
		return NewGreedyBot(logger), nil
	default:
		return nil, fmt.Errorf("unknown bot strategy %q", strategy)
	}
}

// IsStrategy reports whether name is a built-in strategy
func IsStrategy(name string) bool {
	for _, s := range Strategies {
		if s == name {
			return true
		}
	}
	return false
}
