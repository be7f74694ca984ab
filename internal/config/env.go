package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// envLookup resolves variables from the process environment first and a
// .env file second. The process environment is never modified.
type envLookup struct {
	dotenv map[string]string
}

func newEnvLookup(path string) (*envLookup, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &envLookup{dotenv: map[string]string{}}, nil
		}
		return nil, err
	}
	return &envLookup{dotenv: values}, nil
}

func (e *envLookup) get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return e.dotenv[key]
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, env *envLookup) {
	setString := func(key, field string, target *string) {
		if v := env.get(key); v != "" {
			*target = v
			cfg.Sources[field] = SourceEnv
		}
	}
	setBool := func(key, field string, target *bool) {
		if v := env.get(key); v != "" {
			*target = boolFromString(v)
			cfg.Sources[field] = SourceEnv
		}
	}

	setString("KANBAN_STORE", "store_file", &cfg.StoreFile)
	setString("KANBAN_ADDR", "addr", &cfg.Addr)
	setString("KANBAN_LOG_DIR", "log_dir", &cfg.LogDir)

	// Logging configuration
	setString("KANBAN_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("KANBAN_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("KANBAN_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("KANBAN_LOG_CALLER", "log_caller", &cfg.LogCaller)
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
