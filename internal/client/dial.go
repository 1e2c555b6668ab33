package client

import (
	"context"
	"strings"
	"time"

	"github.com/lox/cribbage/internal/protocol"
)

// Dial connects to the coordinator with the configured transport
func Dial(ctx context.Context, cfg *Config) (protocol.Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	defer cancel()

	if cfg.Server.Transport == protocol.TransportWebSocket {
		return protocol.DialWS(ctx, websocketURL(cfg.Server.Address))
	}
	return protocol.Dial(ctx, cfg.Server.Address)
}

// websocketURL accepts a host:port or a full URL
func websocketURL(addr string) string {
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return addr
	case strings.HasPrefix(addr, "http://"):
		return "ws://" + strings.TrimPrefix(addr, "http://") + "/ws"
	case strings.HasPrefix(addr, "https://"):
		return "wss://" + strings.TrimPrefix(addr, "https://") + "/ws"
	default:
		return "ws://" + addr + "/ws"
	}
}
