package jsonstore

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed canonical.schema.json
var canonicalSchemaJSON string

var canonicalSchema = jsonschema.MustCompileString("canonical.schema.json", canonicalSchemaJSON)

// Report describes the state of a task file without modifying it.
type Report struct {
	Path       string
	Exists     bool
	ParseError error
	ShapeError error

	// Canonical is true when the file already matches the current format.
	Canonical  bool
	Violations []string

	// What the next Load would do.
	Tasks        int
	WouldRewrite bool
	Dropped      []Dropped
}

// Check inspects the file. It never writes.
func (s *Store) Check() (*Report, error) {
	r := &Report{Path: s.path}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	r.Exists = true

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		r.ParseError = err
		return r, nil
	}

	if err := canonicalSchema.Validate(raw); err != nil {
		r.Violations = schemaViolations(err)
	} else {
		r.Canonical = true
	}

	res, err := Normalize(raw)
	if err != nil {
		r.ShapeError = err
		return r, nil
	}
	r.Tasks = len(res.Tasks)
	r.WouldRewrite = res.Changed
	r.Dropped = res.Dropped
	return r, nil
}

func schemaViolations(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	collectViolations(&out, ve)
	return out
}

func collectViolations(out *[]string, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		loc := pointerToPath(ve.InstanceLocation)
		if loc == "" {
			*out = append(*out, ve.Message)
		} else {
			*out = append(*out, loc+": "+ve.Message)
		}
		return
	}
	for _, c := range ve.Causes {
		collectViolations(out, c)
	}
}

// pointerToPath turns "/0/task" into "[0].task".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var path string
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
