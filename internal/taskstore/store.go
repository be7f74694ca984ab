package taskstore

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Store is a handle on a store file. It is the only writer of that file and
// serialises every read-modify-write cycle, so concurrent callers in one
// process never lose an update.
type Store struct {
	path   string
	logger *log.Logger

	mu sync.Mutex
	// highWater is the largest id this handle has seen or assigned. Deleting
	// the newest task does not make its id available again.
	highWater ID
}

// New returns a store backed by the file at path. The file is not touched
// until the first operation. A nil logger uses the charmbracelet default.
func New(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// List returns all tasks in stored order.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Create appends a new task with the next id and status "To Do".
func (s *Store) Create(ctx context.Context, n NewTask) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.read()
	if err != nil {
		return Task{}, err
	}

	task := n.build(s.highWater + 1)
	tasks = append(tasks, task)
	if err := Save(s.path, tasks); err != nil {
		return Task{}, err
	}
	s.highWater = task.ID

	s.logger.Debug("task created", "id", task.ID, "title", task.Title)
	return task, nil
}

// UpdateStatus sets the status of the task named by ref. It reports false,
// and writes nothing, when no task matches.
func (s *Store) UpdateStatus(ctx context.Context, ref, status string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.read()
	if err != nil {
		return false, err
	}

	found := false
	for i := range tasks {
		if tasks[i].ID.Matches(ref) {
			tasks[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	if err := Save(s.path, tasks); err != nil {
		return false, err
	}

	s.logger.Debug("task status updated", "id", ref, "status", status)
	return true, nil
}

// Delete removes the task named by ref. The file is rewritten only when the
// collection shrank; otherwise Delete reports false.
func (s *Store) Delete(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.read()
	if err != nil {
		return false, err
	}

	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.ID.Matches(ref) {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return false, nil
	}

	if err := Save(s.path, kept); err != nil {
		return false, err
	}

	s.logger.Debug("task deleted", "id", ref)
	return true, nil
}

// read loads the file and advances the high-water mark. Callers hold s.mu.
func (s *Store) read() ([]Task, error) {
	res, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	if res.State == LoadRecovered {
		s.logger.Warn("store file unreadable, treating as empty", "path", s.path, "err", res.Cause)
	}
	if m := maxID(res.Tasks); m > s.highWater {
		s.highWater = m
	}
	return res.Tasks, nil
}
