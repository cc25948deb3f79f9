package config

import (
	"time"

	"wildlings/internal/sync"
)

// Config holds runtime settings for the wildlings CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the sync server, without trailing slash.
//   - SyncToken: shared secret sent as X-Internal-Token; empty disables it.
//   - DatabasePath: path to the local SQLite file.
//   - SyncInterval: period between background sync cycles in watch mode.
//   - SyncDebounce: quiet period after a local change before a sync fires.
//   - BatchSize: max outbox entries per push.
type Config struct {
	ServerBaseURL string
	SyncToken     string
	DatabasePath  string
	SyncInterval  time.Duration
	SyncDebounce  time.Duration
	BatchSize     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.DatabasePath = "wildlings.db"
	c.SyncInterval = sync.DefaultSyncInterval
	c.SyncDebounce = sync.DefaultSyncDebounce
	c.BatchSize = sync.DefaultBatchSize
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a JSON file (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
