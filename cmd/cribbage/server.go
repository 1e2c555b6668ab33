package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/cribbage/cmd/cribbage/shared"
	"github.com/lox/cribbage/internal/server"
)

// ServerCmd runs a coordinator from an HCL config with flag overrides
type ServerCmd struct {
	Config    string `kong:"short='c',default='cribbage-server.hcl',help='Path to HCL configuration file'"`
	Address   string `kong:"help='Address to bind to (overrides config)'"`
	Port      int    `kong:"help='Port to bind to (overrides config)'"`
	Transport string `kong:"help='tcp or websocket (overrides config)'"`
	Players   int    `kong:"help='Players per game, 2-4 (overrides config)'"`
	Games     int    `kong:"help='Games to host before exiting, 0 for no limit (overrides config)'"`
	Seeded    bool   `kong:"help='Dealers supply the shuffle seed (overrides config)'"`
	LogLevel  string `kong:"help='Log level (overrides config)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.Address != "" {
		cfg.Server.Address = c.Address
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.Transport != "" {
		cfg.Server.Transport = c.Transport
	}
	if c.Players != 0 {
		cfg.Game.Players = c.Players
	}
	if c.Games != 0 {
		cfg.Game.Games = c.Games
	}
	if c.Seeded {
		cfg.Game.SeededShuffle = true
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logFile, err := shared.OpenLogFile(cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger := shared.SetupLogger(io.MultiWriter(os.Stderr, logFile), cfg.Server.LogLevel)
	logger.Info("Starting cribbage server",
		"addr", cfg.GetServerAddress(),
		"transport", cfg.Server.Transport,
		"players", cfg.Game.Players,
		"seeded", cfg.Game.SeededShuffle,
		"config", c.Config)

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	srv := server.NewServer(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	for _, r := range srv.Results() {
		logger.Info("Game result", "game", r.GameID, "winner", r.Winner, "scores", r.Scores, "rounds", r.Rounds)
	}
	return nil
}
