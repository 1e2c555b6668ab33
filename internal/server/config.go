package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/protocol"
)

const (
	defaultAddress  = "localhost"
	defaultPort     = 7878
	defaultLogLevel = "info"
	defaultLogFile  = "cribbage-server.log"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   *GameSettings  `hcl:"game,block"`
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	Transport string `hcl:"transport,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	LogFile   string `hcl:"log_file,optional"`
}

// GameSettings controls the games the coordinator hosts
type GameSettings struct {
	Players       int  `hcl:"players,optional"`
	SeededShuffle bool `hcl:"seeded_shuffle,optional"`
	// Games is the number of games to host before exiting, 0 for no limit
	Games int `hcl:"games,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:   defaultAddress,
			Port:      defaultPort,
			Transport: protocol.TransportTCP,
			LogLevel:  defaultLogLevel,
			LogFile:   defaultLogFile,
		},
		Game: &GameSettings{
			Players: game.MinPlayers,
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.Transport == "" {
		c.Server.Transport = protocol.TransportTCP
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.LogFile == "" {
		c.Server.LogFile = defaultLogFile
	}
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Game.Players == 0 {
		c.Game.Players = game.MinPlayers
	}
}

// Validate validates the server configuration. Port 0 asks the system for
// a free port.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.Transport {
	case protocol.TransportTCP, protocol.TransportWebSocket:
	default:
		return fmt.Errorf("invalid transport %q: must be %s or %s", c.Server.Transport, protocol.TransportTCP, protocol.TransportWebSocket)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}

	if c.Game == nil {
		return fmt.Errorf("game settings missing")
	}
	if err := game.ValidatePlayerCount(c.Game.Players); err != nil {
		return err
	}
	if c.Game.Games < 0 {
		return fmt.Errorf("games must not be negative: %d", c.Game.Games)
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
