package client

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/cribbage/internal/bot"
	"github.com/lox/cribbage/internal/protocol"
)

// StrategyHuman plays through the console prompt
const StrategyHuman = "human"

// Config represents the complete client configuration
type Config struct {
	Server ServerConnection `hcl:"server,block"`
	Player PlayerSettings   `hcl:"player,block"`
	UI     *UISettings      `hcl:"ui,block"`
}

// ServerConnection contains coordinator connection settings
type ServerConnection struct {
	Address        string `hcl:"address,optional"`
	Transport      string `hcl:"transport,optional"`
	ConnectTimeout int    `hcl:"connect_timeout,optional"`
}

// PlayerSettings contains player-specific settings
type PlayerSettings struct {
	Name     string `hcl:"name"`
	Strategy string `hcl:"strategy,optional"`
	// Seed, when set, joins a seeded-shuffle game: this player supplies the
	// shuffle seed whenever it deals
	Seed string `hcl:"seed,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	PaceMS   int    `hcl:"pace_ms,optional"`
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConnection{
			Address:        "localhost:7878",
			Transport:      protocol.TransportTCP,
			ConnectTimeout: 10,
		},
		Player: PlayerSettings{
			Strategy: StrategyHuman,
		},
		UI: &UISettings{
			LogLevel: "warn",
			LogFile:  "cribbage-client.log",
			PaceMS:   600,
		},
	}
}

// LoadConfig loads client configuration from an HCL file. A missing file
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

	// Apply defaults for missing values
	defaults := DefaultConfig()

	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Transport == "" {
		config.Server.Transport = defaults.Server.Transport
	}
	if config.Server.ConnectTimeout == 0 {
		config.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if config.Player.Strategy == "" {
		config.Player.Strategy = defaults.Player.Strategy
	}

	if config.UI == nil {
		config.UI = defaults.UI
	}
	if config.UI.LogLevel == "" {
		config.UI.LogLevel = defaults.UI.LogLevel
	}
	if config.UI.LogFile == "" {
		config.UI.LogFile = defaults.UI.LogFile
	}

	return &config, nil
}

// Validate validates the client configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}

	switch c.Server.Transport {
	case protocol.TransportTCP, protocol.TransportWebSocket:
	default:
		return fmt.Errorf("invalid transport: %s", c.Server.Transport)
	}

	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}

	if err := protocol.ValidateName(c.Player.Name); err != nil {
		return fmt.Errorf("player name: %w", err)
	}

	if c.Player.Strategy != StrategyHuman && !bot.IsStrategy(c.Player.Strategy) {
		return fmt.Errorf("invalid strategy: %s", c.Player.Strategy)
	}

	if c.Player.Seed != "" {
		if err := protocol.ValidateSeed(c.Player.Seed); err != nil {
			return fmt.Errorf("player seed: %w", err)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	if c.UI.PaceMS < 0 {
		return fmt.Errorf("pace must not be negative")
	}

	return nil
}
