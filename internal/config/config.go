// Package config loads litevecd's configuration from environment variables, in
// the style of the teacher's internal/config package: typed defaults overridden
// by a small key table (see keys.go), trimmed of the platform-keychain/secret-store
// machinery a vector database has no use for.
package config

import "time"

// Config holds every tunable of the server daemon.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Autosave AutosaveConfig
	HTTP     HTTPConfig
	Log      LogConfig
}

// ServerConfig controls the HTTP listener address.
type ServerConfig struct {
	Host string
	Port int
}

// StoreConfig controls where collection files are persisted.
type StoreConfig struct {
	Path string
}

// AutosaveConfig controls the background flush loop.
type AutosaveConfig struct {
	Interval time.Duration
}

// HTTPConfig controls request handling knobs of the HTTP adapter.
type HTTPConfig struct {
	Timeout           time.Duration
	PayloadLimitBytes int64
	CORSMaxAge        time.Duration
	CompressionLimit  int
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Store: StoreConfig{
			Path: "./storage",
		},
		Autosave: AutosaveConfig{
			Interval: 10 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			PayloadLimitBytes: 1 << 30, // 1 GiB
			CORSMaxAge:        86400 * time.Second,
			CompressionLimit:  1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration starting from defaults and applying any LITEVEC_*
// environment variable overrides present (see keys.go).
func Load() (Config, error) {
	cfg := defaults()
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
