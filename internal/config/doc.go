// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.kanban/kanban.toml or OS-specific config directory)
// 3. Project config file (kanban.toml or .kanban.toml in the working directory)
// 4. Environment variables (KANBAN_*), with a .env file in the working
// directory filling in variables the environment does not set
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.kanban/kanban.toml (preferred)
// - Windows: %APPDATA%\kanban\kanban.toml
// - macOS: ~/Library/Application Support/kanban/kanban.toml
// - Linux/BSD: $XDG_CONFIG_HOME/kanban/kanban.toml or ~/.config/kanban/kanban.toml
//
// Project-level config locations (overrides user config):
// - ./kanban.toml (preferred)
// - ./.kanban.toml
//
// With no configuration at all the server listens on 127.0.0.1:8000 and keeps
// its tasks in ./tasks.json.
package config
