package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/kanban/internal/config"
	"github.com/nibzard/kanban/internal/taskstore"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return outputText, nil
	case "json":
		return outputJSON, nil
	case "yaml", "yml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

func writeTasks(w io.Writer, tasks []taskstore.Task, format outputFormat) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	default:
		printTasksByStatus(w, tasks)
		return nil
	}
}

// printTasksByStatus groups tasks under their status in order of first
// appearance, keeping stored order within a group.
func printTasksByStatus(w io.Writer, tasks []taskstore.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}

	var order []string
	groups := map[string][]taskstore.Task{}
	for _, t := range tasks {
		if _, ok := groups[t.Status]; !ok {
			order = append(order, t.Status)
		}
		groups[t.Status] = append(groups[t.Status], t)
	}

	for i, status := range order {
		if i > 0 {
			fmt.Fprintln(w)
		}
		label := status
		if label == "" {
			label = "(no status)"
		}
		fmt.Fprintf(w, "%s (%d):\n", label, len(groups[status]))
		for _, t := range groups[status] {
			printTask(w, t)
		}
	}
}

func printTask(w io.Writer, t taskstore.Task) {
	fmt.Fprintf(w, "  [%s] %s (%s)\n", t.ID, t.Title, t.Assignee)
	if t.Description != "" && t.Description != taskstore.DefaultDescription {
		fmt.Fprintf(w, "      %s\n", t.Description)
	}
}

func writeSources(w io.Writer, cfg *config.Config) {
	fields := make([]string, 0, len(cfg.Sources))
	for field := range cfg.Sources {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	fmt.Fprintln(w, "# Sources:")
	for _, field := range fields {
		fmt.Fprintf(w, "#   %-15s %s\n", field, cfg.Sources[field])
	}
}
