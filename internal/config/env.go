package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment, after
// loading a .env file from the working directory when one exists. A missing
// .env is not an error.
//
// Recognized variables:
//
//	WILDLINGS_SERVER_URL     base URL of the sync server
//	WILDLINGS_SYNC_TOKEN     shared secret for X-Internal-Token
//	WILDLINGS_DB_PATH        path to the SQLite file
//	WILDLINGS_SYNC_INTERVAL  Go duration, e.g. "5m"
//	WILDLINGS_SYNC_DEBOUNCE  Go duration, e.g. "1500ms"
//	WILDLINGS_BATCH_SIZE     integer
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("WILDLINGS_SERVER_URL"); ok {
		cfg.ServerBaseURL = v
	}
	if v, ok := os.LookupEnv("WILDLINGS_SYNC_TOKEN"); ok {
		cfg.SyncToken = v
	}
	if v, ok := os.LookupEnv("WILDLINGS_DB_PATH"); ok {
		cfg.DatabasePath = v
	}
	if v, ok := os.LookupEnv("WILDLINGS_SYNC_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SyncInterval = d
		}
	}
	if v, ok := os.LookupEnv("WILDLINGS_SYNC_DEBOUNCE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SyncDebounce = d
		}
	}
	if v, ok := os.LookupEnv("WILDLINGS_BATCH_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
}
