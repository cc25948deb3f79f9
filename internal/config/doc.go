// Package config loads runtime configuration for the wildlings CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, after loading an optional .env file.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the sync server
//	-f string   path to the SQLite file
//	-t string   sync token
//	-i int      background sync interval (seconds)
//	-b int      max outbox entries per push
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "database_path": "wildlings.db",
//	  "sync_interval": "5m",
//	  "sync_debounce": "1500ms",
//	  "batch_size": 50
//	}
package config
