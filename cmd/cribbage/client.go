package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cribbage/cmd/cribbage/shared"
	"github.com/lox/cribbage/internal/bot"
	"github.com/lox/cribbage/internal/client"
	"github.com/lox/cribbage/internal/display"
	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/randutil"
)

// ClientCmd joins a coordinator as a person or a built-in bot
type ClientCmd struct {
	Config    string `kong:"short='c',default='cribbage-client.hcl',help='Path to HCL configuration file'"`
	Server    string `kong:"short='s',help='Coordinator address (overrides config)'"`
	Transport string `kong:"help='tcp or websocket (overrides config)'"`
	Name      string `kong:"short='n',help='Player name (overrides config)'"`
	Strategy  string `kong:"help='human, random or greedy (overrides config)'"`
	Seed      string `kong:"help='Shuffle seed to supply when dealing in a seeded game (overrides config)'"`
	LogLevel  string `kong:"help='Log level (overrides config)'"`
	LogFile   string `kong:"help='Log file path (overrides config)'"`
}

func (c *ClientCmd) Run() error {
	cfg, err := client.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.Server != "" {
		cfg.Server.Address = c.Server
	}
	if c.Transport != "" {
		cfg.Server.Transport = c.Transport
	}
	if c.Name != "" {
		cfg.Player.Name = c.Name
	}
	if c.Strategy != "" {
		cfg.Player.Strategy = c.Strategy
	}
	if c.Seed != "" {
		cfg.Player.Seed = c.Seed
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}

	var prompt *display.PromptAgent
	if cfg.Player.Strategy == client.StrategyHuman || cfg.Player.Name == "" {
		prompt = display.NewPromptAgent(os.Stdin, os.Stdout)
		prompt.Start()
		defer func() {
			if prompt != nil {
				_ = prompt.Close()
			}
		}()
	}
	if cfg.Player.Name == "" {
		name, err := prompt.Ask("Enter your player name: ")
		if err != nil {
			return err
		}
		cfg.Player.Name = name
	}
	if cfg.Player.Strategy != client.StrategyHuman && prompt != nil {
		// bots only needed it for the name
		_ = prompt.Close()
		prompt = nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logFile, err := shared.OpenLogFile(cfg.UI.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger := shared.SetupLogger(logFile, cfg.UI.LogLevel)
	logger.Info("Starting cribbage client",
		"server", cfg.Server.Address,
		"player", cfg.Player.Name,
		"strategy", cfg.Player.Strategy,
		"config", c.Config)

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	outcome, err := joinGame(ctx, cfg, prompt, logger)
	if err != nil {
		return err
	}
	if cfg.Player.Strategy != client.StrategyHuman {
		fmt.Printf("%s won %v after %d rounds\n", outcome.Winner, outcome.Scores, outcome.Rounds)
	}
	return nil
}

// joinGame connects and plays one game. People answer through prompt, which
// also carries the console display; bots log their table.
func joinGame(ctx context.Context, cfg *client.Config, prompt *display.PromptAgent, logger *log.Logger) (*client.Outcome, error) {
	var (
		agent game.Agent
		opts  []client.ParticipantOption
	)

	if cfg.Player.Strategy == client.StrategyHuman {
		pace := time.Duration(cfg.UI.PaceMS) * time.Millisecond
		if prompt == nil {
			return nil, errors.New("a human player needs a console prompt")
		}
		agent = prompt
		opts = append(opts, client.WithSubscriber(display.NewConsoleDisplay(prompt, cfg.Player.Name, pace, quartz.NewReal())))
	} else {
		seed := randutil.RandomSeed()
		if cfg.Player.Seed != "" {
			seed = randutil.SeedFromString(cfg.Player.Seed)
		}
		var err error
		agent, err = bot.New(cfg.Player.Strategy, randutil.New(seed), logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithSubscriber(display.NewLogDisplay(logger)))
	}
	if cfg.Player.Seed != "" {
		opts = append(opts, client.WithSeed(cfg.Player.Seed))
	}

	conn, err := client.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.NewParticipant(cfg.Player.Name, agent, conn, logger, opts...).Run(ctx)
}
