package taskstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LoadState describes how a store file was read.
type LoadState int

const (
	// LoadOK means the file existed and parsed.
	LoadOK LoadState = iota
	// LoadMissing means the file does not exist yet.
	LoadMissing
	// LoadRecovered means the file exists but did not parse and was read as empty.
	LoadRecovered
)

func (s LoadState) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadMissing:
		return "missing"
	case LoadRecovered:
		return "recovered"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// LoadResult is the outcome of reading a store file.
type LoadResult struct {
	Tasks []Task
	State LoadState
	// Cause holds the parse error when State is LoadRecovered.
	Cause error
}

// Load reads the store file at path. A missing or unparsable file yields an
// empty collection and no error; only other I/O failures are returned.
func Load(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Tasks: []Task{}, State: LoadMissing}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return &LoadResult{
			Tasks: []Task{},
			State: LoadRecovered,
			Cause: fmt.Errorf("parse store file: %w", err),
		}, nil
	}
	if tasks == nil {
		// "null" parses, but the store is always an array.
		tasks = []Task{}
	}

	return &LoadResult{Tasks: tasks, State: LoadOK}, nil
}

// Save rewrites the store file at path with 4-space indentation.
func Save(path string, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	// Encode adds the trailing newline.
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	return nil
}
