package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/kanban/internal/taskstore"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://kanban.local/schemas/"

const (
	createTaskSchema   = "create_task.schema.json"
	updateStatusSchema = "update_status.schema.json"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the offending field, empty for the document
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult collects every problem found in one payload.
type ValidationResult struct {
	Errors []*ValidationError
}

func (r *ValidationResult) Error() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// CreateRequest is a validated POST /tasks payload. Fields other than these
// (an id or a status, say) are ignored.
type CreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Assignee    *string `json:"assignee"`
}

// NewTask converts the request into the store's input type.
func (r CreateRequest) NewTask() taskstore.NewTask {
	return taskstore.NewTask{
		Title:       r.Title,
		Description: r.Description,
		Assignee:    r.Assignee,
	}
}

// StatusRequest is a validated status update payload. Any string is accepted.
type StatusRequest struct {
	Status string `json:"status"`
}

// ParseCreateRequest validates body against the create schema. Exactly one
// of the results is non-nil.
func ParseCreateRequest(body []byte) (*CreateRequest, *ValidationResult) {
	var req CreateRequest
	if res := parse(createTaskSchema, body, &req); res != nil {
		return nil, res
	}
	return &req, nil
}

// ParseStatusRequest validates body against the status schema. Exactly one
// of the results is non-nil.
func ParseStatusRequest(body []byte) (*StatusRequest, *ValidationResult) {
	var req StatusRequest
	if res := parse(updateStatusSchema, body, &req); res != nil {
		return nil, res
	}
	return &req, nil
}

func parse(schemaName string, body []byte, out any) *ValidationResult {
	schema, err := loadSchema(schemaName)
	if err != nil {
		// Embedded schemas are fixed at build time; this is a programming error.
		panic(err)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return invalidBody(err)
	}
	if dec.More() {
		return invalidBody(errors.New("unexpected data after JSON value"))
	}

	if err := schema.Validate(doc); err != nil {
		res := &ValidationResult{}
		appendSchemaErrors(res, err)
		return res
	}

	if err := json.Unmarshal(body, out); err != nil {
		return invalidBody(err)
	}
	return nil
}

func invalidBody(err error) *ValidationResult {
	return &ValidationResult{Errors: []*ValidationError{{
		Path: "body",
		Err:  fmt.Errorf("invalid JSON: %w", err),
	}}}
}

var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*jsonschema.Schema{}
)

// loadSchema compiles an embedded schema once.
func loadSchema(name string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := schemaCache[name]; ok {
		return s, nil
	}

	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := schemaBaseURL + name
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	schemaCache[name] = s
	return s, nil
}

func appendSchemaErrors(res *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		res.Errors = append(res.Errors, &ValidationError{Err: err})
		return
	}
	collectSchemaErrors(res, ve)
}

func collectSchemaErrors(res *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		res.Errors = append(res.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(res, cause)
	}
}

// jsonPointerToPath turns "/tags/0/name" into "tags[0].name".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
