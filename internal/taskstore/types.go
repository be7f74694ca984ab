package taskstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults applied when a task is created.
const (
	StatusToDo         = "To Do"
	DefaultDescription = "No description"
	DefaultAssignee    = "Unassigned"
)

// ID is a task identifier.
type ID int64

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts a whole JSON number or a quoted integer.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	n, err := parseWholeNumber(string(data))
	if err != nil {
		return fmt.Errorf("invalid task id %s", data)
	}
	*id = ID(n)
	return nil
}

// parseWholeNumber accepts integers and numbers with no fractional part,
// such as 3.0 or 1e2.
func parseWholeNumber(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s is not a whole number", s)
	}
	return int64(f), nil
}

// Matches reports whether ref names this id. Both sides are compared in
// their text form, so "7" and 7 name the same task.
func (id ID) Matches(ref string) bool {
	return id.String() == normalizeRef(ref)
}

func normalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.Trim(ref, `"`)
	return ref
}

// Task is a single record in the store.
type Task struct {
	ID          ID     `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"`
	Assignee    string `json:"assignee" yaml:"assignee"`
}

// NewTask holds the caller-controlled fields of a task being created.
// Nil optional fields take their defaults.
type NewTask struct {
	Title       string
	Description *string
	Assignee    *string
}

func (n NewTask) build(id ID) Task {
	task := Task{
		ID:          id,
		Title:       n.Title,
		Description: DefaultDescription,
		Status:      StatusToDo,
		Assignee:    DefaultAssignee,
	}
	if n.Description != nil {
		task.Description = *n.Description
	}
	if n.Assignee != nil {
		task.Assignee = *n.Assignee
	}
	return task
}

// maxID returns the largest id in tasks, or 0 when tasks is empty.
func maxID(tasks []Task) ID {
	var highest ID
	for _, t := range tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}
