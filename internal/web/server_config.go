package web

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "SNAPSCREEN_LISTEN"
	EnvDevMode    = "SNAPSCREEN_DEV"
	EnvStreamFPS  = "SNAPSCREEN_STREAM_FPS"

	defaultStreamFPS = 10
	maxStreamFPS     = 30
)

// ServerConfig holds the web remote settings. The device binary defaults to
// an empty ListenAddr (remote off); the simulator listens on :8080.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	StreamFPS  int
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	cfg := ServerConfig{ListenAddr: defaultListenAddr, StreamFPS: defaultStreamFPS}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}

	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		cfg.DevMode = parsed
	}

	if raw := os.Getenv(EnvStreamFPS); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be an integer (got %q): %w", EnvStreamFPS, raw, err)
		}
		cfg.StreamFPS = parsed
	}

	return cfg, cfg.Validate()
}

func (c ServerConfig) Validate() error {
	if c.StreamFPS < 1 || c.StreamFPS > maxStreamFPS {
		return fmt.Errorf("stream fps must be between 1 and %d (got %d)", maxStreamFPS, c.StreamFPS)
	}
	return nil
}
