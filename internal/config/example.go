package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# kanban configuration file
# Values can be overridden by environment variables (KANBAN_*) or CLI flags

# Task store file (relative to the working directory)
store_file = "tasks.json"

# HTTP listen address
addr = "127.0.0.1:8000"

# Directory for per-run JSONL access logs (supports ~ expansion); empty disables
# log_dir = "~/.kanban/logs"

# Console logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
