package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kInt64
	kSeconds
)

type keySpec struct {
	env   string
	typ   keyType
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		env: "LITEVEC_HOST", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
	},
	{
		env: "LITEVEC_PORT", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		env: "LITEVEC_STORE_PATH", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Store.Path = v.(string) },
	},
	{
		env: "LITEVEC_AUTOSAVE_INTERVAL", typ: kSeconds,
		apply: func(cfg *Config, v any) { cfg.Autosave.Interval = v.(time.Duration) },
	},
	{
		env: "LITEVEC_TIMEOUT", typ: kSeconds,
		apply: func(cfg *Config, v any) { cfg.HTTP.Timeout = v.(time.Duration) },
	},
	{
		env: "LITEVEC_PAYLOAD_LIMIT", typ: kInt64,
		apply: func(cfg *Config, v any) { cfg.HTTP.PayloadLimitBytes = v.(int64) },
	},
	{
		env: "LITEVEC_CORS_MAXAGE", typ: kSeconds,
		apply: func(cfg *Config, v any) { cfg.HTTP.CORSMaxAge = v.(time.Duration) },
	},
	{
		env: "LITEVEC_COMPRESSION_LIMIT", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.HTTP.CompressionLimit = v.(int) },
	},
	{
		env: "LITEVEC_LOG_LEVEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

// applyEnvOverrides applies every LITEVEC_* environment variable present in
// specs to cfg. A value that fails to parse is logged to stderr and the default
// is kept, the same "warn and keep default" behavior as the teacher's
// applyEnvOverrides in internal/config/keys.go.
func applyEnvOverrides(cfg *Config) error {
	for _, s := range specs {
		raw, ok := os.LookupEnv(s.env)
		if !ok || raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kInt64:
			if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kSeconds:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, time.Duration(i)*time.Second)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse seconds from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
	return nil
}
