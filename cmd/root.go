// Package cmd implements the CLI command structure for kanban.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/kanban/internal/api"
	"github.com/nibzard/kanban/internal/config"
	"github.com/nibzard/kanban/internal/logging"
	"github.com/nibzard/kanban/internal/taskstore"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams. Tests swap these out.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the kanban CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("kanban", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No subcommand means serve
	subcommand := "serve"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "status":
		return statusCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "logs", "tail":
		return logsCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newLogger builds the console logger described by cfg.
func newLogger(cfg *config.Config) *log.Logger {
	opts := logging.DefaultOptions()
	opts.Level = cfg.LogLevel
	opts.Format = cfg.LogFormat
	opts.ReportTimestamp = cfg.LogTimestamps
	opts.ReportCaller = cfg.LogCaller
	return logging.New(stderr, opts)
}

// serveCommand runs the HTTP API until ctx is cancelled.
func serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("kanban serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", cfg.Addr, "HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := newLogger(cfg)
	opts := api.Options{Logger: logger}

	if cfg.LogDir != "" {
		runLog, err := logging.NewRunLogger(cfg.LogDir)
		if err != nil {
			return fmt.Errorf("opening access log: %w", err)
		}
		defer runLog.Close()
		opts.AccessLog = runLog.Logger()
		logger.Info("access log", "path", runLog.LogPath)
	}

	store := taskstore.New(cfg.StoreFile, logger.WithPrefix("store"))
	logger.Info("using store", "path", store.Path())

	return api.New(store, opts).ListenAndServe(ctx, *addr)
}

// lsCommand prints every task in the store.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("kanban ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("output", "text", "Output format (text|json|yaml)")
	fs.StringVar(output, "o", "text", "Output format (text|json|yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	format, err := parseOutputFormat(*output)
	if err != nil {
		return err
	}

	store := taskstore.New(cfg.StoreFile, newLogger(cfg))
	tasks, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	return writeTasks(stdout, tasks, format)
}

// addCommand creates a task. Input goes through the same validation as
// POST /tasks.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("kanban add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var description, assignee optionalString
	fs.Var(&description, "description", "Task description")
	fs.Var(&description, "d", "Task description")
	fs.Var(&assignee, "assignee", "Task assignee")
	fs.Var(&assignee, "a", "Task assignee")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return errors.New("usage: kanban add <title> [--description text] [--assignee name]")
	}

	payload := map[string]any{"title": positional[0]}
	if description.set {
		payload["description"] = description.value
	}
	if assignee.set {
		payload["assignee"] = assignee.value
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, invalid := api.ParseCreateRequest(body)
	if invalid != nil {
		return invalid
	}

	store := taskstore.New(cfg.StoreFile, newLogger(cfg))
	task, err := store.Create(ctx, req.NewTask())
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	fmt.Fprintf(stdout, "Created task %s: %s\n", task.ID, task.Title)
	return nil
}

// statusCommand sets the status of one task.
func statusCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: kanban status <id> <status>")
	}
	id, status := args[0], args[1]

	store := taskstore.New(cfg.StoreFile, newLogger(cfg))
	found, err := store.UpdateStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if !found {
		return fmt.Errorf("task %s not found", id)
	}
	fmt.Fprintf(stdout, "Task %s is now %q\n", id, status)
	return nil
}

// rmCommand deletes one task.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kanban rm <id>")
	}
	id := args[0]

	store := taskstore.New(cfg.StoreFile, newLogger(cfg))
	found, err := store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if !found {
		return fmt.Errorf("task %s not found", id)
	}
	fmt.Fprintf(stdout, "Deleted task %s\n", id)
	return nil
}

// logsCommand shows the latest access log.
func logsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("kanban logs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.LogDir == "" {
		return errors.New("no log directory configured (set log_dir, KANBAN_LOG_DIR or --log-dir)")
	}

	logPath, err := logging.FindLatestLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	if *follow {
		fmt.Fprintf(stderr, "Tailing: %s (Ctrl+C to stop)\n", logPath)
		return logging.FollowLog(stdout, logPath, *n, ctx.Done())
	}
	return logging.TailLog(stdout, logPath, *n)
}

// configCommand prints the effective configuration.
func configCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("kanban config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file instead")
	sources := fs.Bool("sources", false, "Show where each value came from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}
	if err := cfg.WriteTOML(stdout); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if *sources {
		fmt.Fprintln(stdout)
		writeSources(stdout, cfg)
	}
	return nil
}

func versionCommand() error {
	fmt.Fprintf(stdout, "kanban version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Kanban - a small task board API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  kanban [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve                 Run the HTTP API (default command)")
	fmt.Fprintln(w, "  ls                    List tasks")
	fmt.Fprintln(w, "  add <title>           Create a task")
	fmt.Fprintln(w, "  status <id> <status>  Change a task's status")
	fmt.Fprintln(w, "  rm <id>               Delete a task")
	fmt.Fprintln(w, "  logs                  Show the latest access log")
	fmt.Fprintln(w, "  config                Print the effective configuration")
	fmt.Fprintln(w, "  version               Show version information")
	fmt.Fprintln(w, "  help                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -o, -output string")
	fmt.Fprintln(w, "        Output format (text|json|yaml) (default \"text\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -d, -description string")
	fmt.Fprintln(w, "        Task description (default \"No description\")")
	fmt.Fprintln(w, "  -a, -assignee string")
	fmt.Fprintln(w, "        Task assignee (default \"Unassigned\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, -follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print an example config file")
	fmt.Fprintln(w, "  -sources")
	fmt.Fprintln(w, "        Show where each value came from")
}

// optionalString is a flag.Value that remembers whether it was set, so an
// explicit empty value differs from an absent one.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// parseInterspersed parses fs allowing flags after positional arguments and
// returns the positionals in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
