package taskstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	original := []Task{
		{ID: 1, Title: "Buy milk", Description: DefaultDescription, Status: StatusToDo, Assignee: DefaultAssignee},
		{ID: 2, Title: "Café <crème> & co", Description: "über", Status: "Done", Assignee: "Zoë"},
	}
	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	res, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.State != LoadOK {
		t.Errorf("State: got %v, want %v", res.State, LoadOK)
	}
	if len(res.Tasks) != len(original) {
		t.Fatalf("Tasks count: got %d, want %d", len(res.Tasks), len(original))
	}
	for i := range original {
		if res.Tasks[i] != original[i] {
			t.Errorf("tasks[%d]: got %+v, want %+v", i, res.Tasks[i], original[i])
		}
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	if err := Save(path, []Task{{ID: 1, Title: "Café & tea", Status: StatusToDo}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "[\n    {\n        \"id\": 1,") {
		t.Errorf("expected 4-space indentation, got:\n%s", content)
	}
	if !strings.Contains(content, "Café & tea") {
		t.Errorf("expected unescaped title, got:\n%s", content)
	}
	if !strings.HasSuffix(content, "]\n") {
		t.Errorf("expected trailing newline, got %q", content[len(content)-3:])
	}
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	if err := Save(path, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[]\n" {
		t.Errorf("got %q, want %q", data, "[]\n")
	}
}

func TestLoadStates(t *testing.T) {
	tests := []struct {
		name      string
		content   *string
		wantState LoadState
		wantCount int
	}{
		{"missing", nil, LoadMissing, 0},
		{"empty array", strPtr("[]"), LoadOK, 0},
		{"null", strPtr("null"), LoadOK, 0},
		{"empty file", strPtr(""), LoadRecovered, 0},
		{"garbage", strPtr("{oops"), LoadRecovered, 0},
		{"one task", strPtr(`[{"id": 1, "title": "a", "description": null, "status": "To Do", "assignee": null}]`), LoadOK, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0644); err != nil {
					t.Fatalf("write: %v", err)
				}
			}

			res, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if res.State != tt.wantState {
				t.Errorf("State: got %v, want %v", res.State, tt.wantState)
			}
			if res.Tasks == nil {
				t.Error("Tasks: got nil, want non-nil slice")
			}
			if len(res.Tasks) != tt.wantCount {
				t.Errorf("Tasks count: got %d, want %d", len(res.Tasks), tt.wantCount)
			}
			if tt.wantState == LoadRecovered && res.Cause == nil {
				t.Error("Cause: got nil for recovered load")
			}
		})
	}
}

func TestLoadUnreadableIsAnError(t *testing.T) {
	// A directory cannot be read as a file.
	dir := t.TempDir()

	if _, err := Load(dir); err == nil {
		t.Fatal("Load: expected error for directory path")
	}
}

func TestLoadAcceptsQuotedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `[{"id": "4", "title": "legacy", "status": "To Do"}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(res.Tasks) != 1 || res.Tasks[0].ID != 4 {
		t.Errorf("Tasks: got %+v, want one task with id 4", res.Tasks)
	}
}

func TestLoadAcceptsWholeNumberIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want ID
	}{
		{"1.0", 1},
		{"12.000", 12},
		{"1e2", 100},
		{`"3"`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			content := `[{"id": ` + tt.raw + `, "title": "keep me", "status": "To Do"}]`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}

			res, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if res.State != LoadOK {
				t.Fatalf("State: got %v, want ok (cause %v)", res.State, res.Cause)
			}
			if len(res.Tasks) != 1 || res.Tasks[0].ID != tt.want {
				t.Errorf("Tasks: got %+v, want one task with id %d", res.Tasks, tt.want)
			}
		})
	}
}

func TestIDRejectsFractionalNumbers(t *testing.T) {
	for _, raw := range []string{"1.5", "-0.25", "1e400", `"two"`, "true"} {
		var id ID
		if err := id.UnmarshalJSON([]byte(raw)); err == nil {
			t.Errorf("%s: expected error, got id %d", raw, id)
		}
	}
}
