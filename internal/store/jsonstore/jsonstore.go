package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasks/internal/logging"
	"github.com/Makepad-fr/tasks/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// No locking; each process owns its list for one run and every save
// overwrites the whole file.

// Variant selects which front end's data file is used.
type Variant string

const (
	VariantConsole Variant = "console"
	VariantBoard   Variant = "board"
)

const (
	consoleFileName = "tasks.json"
	boardFileName   = "apptasks.json"
)

// ErrUnknownVariant is returned by DefaultPath for names it does not know.
var ErrUnknownVariant = errors.New("unknown variant")

// FileName returns the fixed data file name of a variant.
func FileName(v Variant) (string, error) {
	switch v {
	case VariantConsole:
		return consoleFileName, nil
	case VariantBoard:
		return boardFileName, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, v)
}

// DefaultPath resolves the variant's data file against the working directory.
func DefaultPath(v Variant) (string, error) {
	name, err := FileName(v)
	if err != nil {
		return "", err
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(wd, name), nil
}

// Store loads and saves one task file.
type Store struct {
	path   string
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store warnings to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a store for the file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Load reads the file and returns its tasks in canonical form.
// Malformed content is logged and yields an empty list; only I/O
// failures are returned. When the file needed normalizing, the
// canonical form is written back before returning.
func (s *Store) Load() ([]model.Task, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Task{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		s.logger.Warn("task file is not valid JSON, starting empty", "path", s.path, "err", err)
		return []model.Task{}, nil
	}

	res, err := Normalize(raw)
	if err != nil {
		s.logger.Warn("task file has an unexpected format, starting empty", "path", s.path, "err", err)
		return []model.Task{}, nil
	}

	for _, d := range res.Dropped {
		s.logger.Warn("dropping unrecognised entry", "path", s.path, "index", d.Index, "kind", d.Kind)
	}
	if res.Changed {
		s.logger.Info("converting task file to the current format", "path", s.path,
			"tasks", len(res.Tasks), "dropped", len(res.Dropped), "unwrapped", res.Unwrapped)
		if err := s.Save(res.Tasks); err != nil {
			return nil, err
		}
	}
	return res.Tasks, nil
}

// Save overwrites the file with tasks.
func (s *Store) Save(tasks []model.Task) error {
	b, err := encode(tasks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// encode writes two-space indented JSON with a trailing newline, leaving
// non-ASCII and HTML characters as they are.
func encode(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return buf.Bytes(), nil
}
