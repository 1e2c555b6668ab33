package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/cribbage/internal/game"
	"github.com/lox/cribbage/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cribbage-server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
		assert.Equal(t, "localhost:7878", cfg.GetServerAddress())
		require.NoError(t, cfg.Validate())
	})

	t.Run("full file", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  transport = "websocket"
  log_level = "debug"
}

game {
  players        = 3
  seeded_shuffle = true
  games          = 5
}
`))
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
		assert.Equal(t, protocol.TransportWebSocket, cfg.Server.Transport)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, defaultLogFile, cfg.Server.LogFile)
		assert.Equal(t, 3, cfg.Game.Players)
		assert.True(t, cfg.Game.SeededShuffle)
		assert.Equal(t, 5, cfg.Game.Games)
	})

	t.Run("game block optional", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `server {}`))
		require.NoError(t, err)
		require.NotNil(t, cfg.Game)
		assert.Equal(t, game.MinPlayers, cfg.Game.Players)
		assert.Equal(t, protocol.TransportTCP, cfg.Server.Transport)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `server {`))
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errIs  error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "ephemeral port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, errIs: assert.AnError},
		{name: "bad transport", mutate: func(c *Config) { c.Server.Transport = "udp" }, errIs: assert.AnError},
		{name: "bad log level", mutate: func(c *Config) { c.Server.LogLevel = "loud" }, errIs: assert.AnError},
		{name: "one player", mutate: func(c *Config) { c.Game.Players = 1 }, errIs: game.ErrUnsupportedPlayers},
		{name: "four players", mutate: func(c *Config) { c.Game.Players = 4 }, errIs: game.ErrUnsupportedPlayers},
		{name: "five players", mutate: func(c *Config) { c.Game.Players = 5 }, errIs: game.ErrUnsupportedPlayers},
		{name: "negative games", mutate: func(c *Config) { c.Game.Games = -1 }, errIs: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			switch tt.errIs {
			case nil:
				assert.NoError(t, err)
			case assert.AnError:
				assert.Error(t, err)
			default:
				assert.ErrorIs(t, err, tt.errIs)
			}
		})
	}
}
