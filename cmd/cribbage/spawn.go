package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/cribbage/cmd/cribbage/shared"
	"github.com/lox/cribbage/internal/bot"
	"github.com/lox/cribbage/internal/client"
	"github.com/lox/cribbage/internal/display"
	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/server"
	"golang.org/x/sync/errgroup"
)

// SpawnCmd runs a coordinator and its bots in one process, optionally
// seating the person at the terminal as well
type SpawnCmd struct {
	Addr      string        `kong:"default='localhost:0',help='Server address, defaults to a random port on localhost'"`
	Transport string        `kong:"default='tcp',enum='tcp,websocket',help='Transport between coordinator and players'"`
	Spec      string        `kong:"default='greedy:1,random:1',help='Bot specification (e.g. greedy:1,random:2)'"`
	Human     bool          `kong:"help='Take a seat yourself'"`
	Name      string        `kong:"default='you',help='Your name when seated with --human'"`
	Games     int           `kong:"default='1',help='Number of games to play'"`
	Seed      string        `kong:"help='Seed every shuffle from this string for a reproducible game'"`
	Pace      time.Duration `kong:"default='600ms',help='Delay between plays on the console'"`
	LogLevel  string        `kong:"help='Log level (debug|info|warn|error)'"`
}

func (c *SpawnCmd) Run() error {
	strategies, err := parseSpec(c.Spec)
	if err != nil {
		return err
	}
	players := len(strategies)
	if c.Human {
		players++
	}

	level := c.LogLevel
	if level == "" && c.Human {
		// keep the console for the game
		level = "warn"
	}
	logger := shared.SetupLogger(os.Stderr, level)

	cfg, err := spawnConfig(c.Addr, c.Transport, players, c.Games, c.Seed != "")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid spawn settings: %w", err)
	}

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	srv := server.NewServer(cfg, logger)
	if err := srv.Listen(); err != nil {
		return err
	}
	logger.Info("Spawned server", "addr", srv.Addr(), "players", players, "games", c.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	for i, strategy := range strategies {
		name := fmt.Sprintf("%s-%d", strategy, i+1)
		g.Go(func() error {
			return c.seat(ctx, srv.Addr(), name, strategy, logger)
		})
	}
	if c.Human {
		g.Go(func() error {
			return c.seat(ctx, srv.Addr(), c.Name, client.StrategyHuman, logger)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range srv.Results() {
		fmt.Printf("game %s: %s won %v after %d rounds\n", r.GameID, r.Winner, r.Scores, r.Rounds)
	}
	return nil
}

// seat plays every spawned game under one name
func (c *SpawnCmd) seat(ctx context.Context, addr, name, strategy string, logger *log.Logger) error {
	cfg := client.DefaultConfig()
	cfg.Server.Address = addr
	cfg.Server.Transport = c.Transport
	cfg.Player.Name = name
	cfg.Player.Strategy = strategy
	cfg.UI.PaceMS = int(c.Pace / time.Millisecond)
	if c.Seed != "" {
		cfg.Player.Seed = c.Seed + "/" + name
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	var prompt *display.PromptAgent
	if strategy == client.StrategyHuman {
		prompt = display.NewPromptAgent(os.Stdin, os.Stdout)
		prompt.Start()
		defer func() { _ = prompt.Close() }()
	}

	for range c.Games {
		if _, err := joinGame(ctx, cfg, prompt, logger.With("player", name)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func spawnConfig(addr, transport string, players, games int, seeded bool) (*server.Config, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	cfg := server.DefaultConfig()
	cfg.Server.Address = host
	cfg.Server.Port = port
	cfg.Server.Transport = transport
	cfg.Game.Players = players
	cfg.Game.Games = games
	cfg.Game.SeededShuffle = seeded
	return cfg, nil
}

// parseSpec expands "greedy:2,random:1" into one strategy per bot
func parseSpec(spec string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, countStr, found := strings.Cut(part, ":")
		count := 1
		if found {
			n, err := strconv.Atoi(countStr)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid bot count in %q", part)
			}
			count = n
		}
		if !bot.IsStrategy(name) {
			return nil, fmt.Errorf("unknown bot strategy %q (want one of %s)", name, strings.Join(bot.Strategies, ", "))
		}
		for range count {
			out = append(out, name)
		}
	}
	if len(out) > game.MaxPlayers {
		return nil, fmt.Errorf("%w: %d bots", game.ErrUnsupportedPlayers, len(out))
	}
	return out, nil
}
