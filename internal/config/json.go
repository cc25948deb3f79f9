package config

import (
	"encoding/json"
	"os"
	"time"

	"wildlings/internal/flagx"
	"wildlings/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL string         `json:"server_base_url"`
	SyncToken     string         `json:"sync_token"`
	DatabasePath  string         `json:"database_path"`
	SyncInterval  timex.Duration `json:"sync_interval"`
	SyncDebounce  timex.Duration `json:"sync_debounce"`
	BatchSize     int            `json:"batch_size"`
}

// parseJson overlays Config with values loaded from a JSON file selected
// via the -c or -config flags. When no file is given the function returns
// without touching cfg; read or unmarshal errors panic.
//
// Only fields present in the file override cfg: absent strings stay empty
// in the DTO and are skipped.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.SyncToken != "" {
		cfg.SyncToken = jc.SyncToken
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.SyncDebounce.Duration != 0 {
		cfg.SyncDebounce = time.Duration(jc.SyncDebounce.Duration)
	}
	if jc.BatchSize > 0 {
		cfg.BatchSize = jc.BatchSize
	}
}
