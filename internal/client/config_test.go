package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/cribbage/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
		assert.Error(t, cfg.Validate(), "a name is required")
	})

	t.Run("file with defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cribbage-client.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`
server {
  address   = "cribbage.example:7878"
  transport = "websocket"
}

player {
  name     = "alice"
  strategy = "greedy"
  seed     = "tuesday"
}
`), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "cribbage.example:7878", cfg.Server.Address)
		assert.Equal(t, protocol.TransportWebSocket, cfg.Server.Transport)
		assert.Equal(t, 10, cfg.Server.ConnectTimeout)
		assert.Equal(t, "alice", cfg.Player.Name)
		assert.Equal(t, "greedy", cfg.Player.Strategy)
		assert.Equal(t, "tuesday", cfg.Player.Seed)
		require.NotNil(t, cfg.UI)
		assert.Equal(t, "warn", cfg.UI.LogLevel)
	})

	t.Run("player block required", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cribbage-client.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`server {}`), 0o600))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Player.Name = "alice"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bot strategy", mutate: func(c *Config) { c.Player.Strategy = "random" }},
		{name: "unknown strategy", mutate: func(c *Config) { c.Player.Strategy = "psychic" }, wantErr: true},
		{name: "comma in name", mutate: func(c *Config) { c.Player.Name = "a,b" }, wantErr: true},
		{name: "long name", mutate: func(c *Config) { c.Player.Name = string(make([]byte, 40)) }, wantErr: true},
		{name: "bad transport", mutate: func(c *Config) { c.Server.Transport = "carrier-pigeon" }, wantErr: true},
		{name: "no address", mutate: func(c *Config) { c.Server.Address = "" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.UI.LogLevel = "verbose" }, wantErr: true},
		{name: "negative pace", mutate: func(c *Config) { c.UI.PaceMS = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := map[string]string{
		"localhost:7878":          "ws://localhost:7878/ws",
		"http://example.com:80":   "ws://example.com:80/ws",
		"https://example.com":     "wss://example.com/ws",
		"ws://example.com/custom": "ws://example.com/custom",
	}
	for in, want := range tests {
		assert.Equal(t, want, websocketURL(in), in)
	}
}
