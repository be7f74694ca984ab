package config

import (
	"flag"
)

// parseFlags defines the global flags on fs, parses args and records which
// flags were set.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("kanban", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.StoreFile, "store", cfg.StoreFile, "Path to the task store file")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for JSONL access logs")

	// Server
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in console logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller information in console logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"store":          "store_file",
		"log-dir":        "log_dir",
		"addr":           "addr",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagToSource[f.Name]; ok {
			cfg.Sources[field] = SourceFlag
		}
	})

	return nil
}
