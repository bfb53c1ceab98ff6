// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the game server.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"GUMSHOE_ADDR" envDefault:":8080"`

	// DataDir is the root directory for template and room documents.
	DataDir string `env:"GUMSHOE_DATA_DIR" envDefault:"data"`

	// ActivityDB is the SQLite file of the activity log.
	ActivityDB string `env:"GUMSHOE_ACTIVITY_DB" envDefault:"data/activity.db"`

	// LegacyStatePath is the monolithic game-state document migrated at boot.
	LegacyStatePath string `env:"GUMSHOE_LEGACY_STATE" envDefault:"data/gameState.json"`

	// FeedInterval is how often the websocket feed polls the activity log.
	// Clients poll room state on the same cadence.
	FeedInterval time.Duration `env:"GUMSHOE_FEED_INTERVAL" envDefault:"1s"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// TemplatesDir is where template documents live.
func (c Config) TemplatesDir() string {
	return filepath.Join(c.DataDir, "templates")
}

// RoomsDir is where room documents live.
func (c Config) RoomsDir() string {
	return filepath.Join(c.DataDir, "rooms")
}
