package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable of the server process.
type Config struct {
	// Addr is the host:port the HTTP server listens on.
	Addr string

	// RedisURL selects the Redis persistence backend. Empty means the
	// in-memory store (standalone mode).
	RedisURL string

	// LayoutPath points to a board layout JSON file. Empty means the
	// compiled-in standard Pentagame board.
	LayoutPath string

	// HeartbeatInterval is how often sessions ping their clients.
	HeartbeatInterval time.Duration

	// ClientTimeout closes a session after this much inbound silence.
	ClientTimeout time.Duration

	// StoreWorkers bounds the number of concurrent persistence calls.
	StoreWorkers int

	// StoreQueueDepth bounds the coordinator's command mailbox.
	StoreQueueDepth int
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Addr:              "localhost:8080",
		HeartbeatInterval: 5 * time.Second,
		ClientTimeout:     30 * time.Second,
		StoreWorkers:      8,
		StoreQueueDepth:   256,
	}
}

// FromEnv builds a configuration from defaults overlaid with environment
// variables. The entrypoint loads .env beforehand so both sources look
// identical from here.
func FromEnv() (*Config, error) {
	c := Default()

	if addr := os.Getenv("PENTAGAME_ADDR"); addr != "" {
		c.Addr = addr
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.RedisURL = url
	}
	if path := os.Getenv("PENTAGAME_LAYOUT"); path != "" {
		c.LayoutPath = path
	}

	var err error
	if c.HeartbeatInterval, err = envDuration("PENTAGAME_HEARTBEAT_INTERVAL", c.HeartbeatInterval); err != nil {
		return nil, err
	}
	if c.ClientTimeout, err = envDuration("PENTAGAME_CLIENT_TIMEOUT", c.ClientTimeout); err != nil {
		return nil, err
	}
	if c.StoreWorkers, err = envInt("PENTAGAME_STORE_WORKERS", c.StoreWorkers); err != nil {
		return nil, err
	}
	if c.StoreQueueDepth, err = envInt("PENTAGAME_STORE_QUEUE", c.StoreQueueDepth); err != nil {
		return nil, err
	}

	return c, c.Validate()
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive, got %v", c.HeartbeatInterval)
	}
	if c.ClientTimeout <= c.HeartbeatInterval {
		return fmt.Errorf("client timeout %v must exceed heartbeat interval %v",
			c.ClientTimeout, c.HeartbeatInterval)
	}
	if c.StoreWorkers < 1 {
		return fmt.Errorf("store workers must be at least 1, got %d", c.StoreWorkers)
	}
	if c.StoreQueueDepth < 1 {
		return fmt.Errorf("store queue depth must be at least 1, got %d", c.StoreQueueDepth)
	}
	return nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, raw, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, raw, err)
	}
	return n, nil
}
