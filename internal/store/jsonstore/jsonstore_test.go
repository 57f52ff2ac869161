package jsonstore

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tasks/internal/model"
)

func newTestStore(t *testing.T, content string) (*Store, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return New(path, WithLogger(logger)), &buf
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestLoadMissingFile(t *testing.T) {
	s, _ := newTestStore(t, "")

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Task{}, tasks)
	assert.NoFileExists(t, s.Path())
}

func TestLoadBareStrings(t *testing.T) {
	s, _ := newTestStore(t, `["buy milk", "walk dog"]`)

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Task{{Text: "buy milk"}, {Text: "walk dog"}}, tasks)

	assert.Equal(t, `[
  {
    "task": "buy milk",
    "done": false
  },
  {
    "task": "walk dog",
    "done": false
  }
]
`, readFile(t, s.Path()))
}

func TestLoadWrappedList(t *testing.T) {
	s, _ := newTestStore(t, `{"tasks": [{"task": "x", "done": true}]}`)

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Task{{Text: "x", Done: true}}, tasks)

	again, err := New(s.Path()).Load()
	require.NoError(t, err)
	assert.Equal(t, tasks, again)
	assert.NotContains(t, readFile(t, s.Path()), `"tasks"`)
}

func TestLoadWrappedMatchesBare(t *testing.T) {
	inner := `["a", {"title": "b", "done": 1}, {"task": "c", "done": false}]`
	bare, _ := newTestStore(t, inner)
	wrapped, _ := newTestStore(t, `{"tasks": `+inner+`}`)

	fromBare, err := bare.Load()
	require.NoError(t, err)
	fromWrapped, err := wrapped.Load()
	require.NoError(t, err)
	assert.Equal(t, fromBare, fromWrapped)
}

func TestLoadInvalidJSONLeavesFile(t *testing.T) {
	const broken = `[{"task": "x", "done": tru`
	s, logs := newTestStore(t, broken)

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, broken, readFile(t, s.Path()))
	assert.Contains(t, logs.String(), "not valid JSON")
}

func TestLoadMalformedContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", " "},
		{"truncated", `["a",`},
		{"number", `42`},
		{"string", `"just text"`},
		{"object without tasks", `{"items": ["a"]}`},
		{"tasks not a list", `{"tasks": "a"}`},
		{"null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, logs := newTestStore(t, tt.content)
			tasks, err := s.Load()
			require.NoError(t, err)
			assert.Empty(t, tasks)
			assert.Equal(t, tt.content, readFile(t, s.Path()))
			assert.Contains(t, logs.String(), "WARN")
		})
	}
}

func TestLoadDropsUnknownElements(t *testing.T) {
	s, logs := newTestStore(t, `["a", 42, {"task": "b", "done": true}, null]`)

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Task{{Text: "a"}, {Text: "b", Done: true}}, tasks)
	assert.NotContains(t, readFile(t, s.Path()), "42")
	assert.Contains(t, logs.String(), "dropping unrecognised entry")
	assert.Contains(t, logs.String(), "kind=number")
	assert.Contains(t, logs.String(), "kind=null")
}

func TestLoadIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t, `["a", {"title": "b"}, {"task": "c", "done": "yes"}]`)

	first, err := s.Load()
	require.NoError(t, err)
	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	written := readFile(t, s.Path())

	var buf bytes.Buffer
	second, err := New(s.Path(), WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))).Load()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, written, readFile(t, s.Path()))
	assert.Empty(t, buf.String(), "canonical file must not be rewritten")

	after, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())
}

func TestRoundTrip(t *testing.T) {
	tests := [][]model.Task{
		{},
		{{Text: "a"}},
		{{Text: "買い物", Done: true}, {Text: "<b>&</b>"}, {Text: ""}, {Text: "z", Done: true}},
	}
	for _, in := range tests {
		s, _ := newTestStore(t, "")
		require.NoError(t, s.Save(in))
		out, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestSaveFormat(t *testing.T) {
	s, _ := newTestStore(t, "")
	require.NoError(t, s.Save([]model.Task{{Text: "牛乳 & <パン>", Done: true}}))
	assert.Equal(t, "[\n  {\n    \"task\": \"牛乳 & <パン>\",\n    \"done\": true\n  }\n]\n", readFile(t, s.Path()))

	require.NoError(t, s.Save(nil))
	assert.Equal(t, "[]\n", readFile(t, s.Path()))
}

func TestSaveOverwritesCorruptFile(t *testing.T) {
	s, _ := newTestStore(t, `{{{`)
	tasks, err := s.Load()
	require.NoError(t, err)

	tasks, err = model.Add(tasks, "fresh")
	require.NoError(t, err)
	require.NoError(t, s.Save(tasks))

	reloaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Task{{Text: "fresh"}}, reloaded)
}

func TestSaveErrorPropagates(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing-dir", "tasks.json"))
	err := s.Save([]model.Task{{Text: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write file")
}

func TestLoadRewriteErrorPropagates(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a"]`), 0o444))

	_, err := New(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write file")
}

func TestFileNameAndDefaultPath(t *testing.T) {
	name, err := FileName(VariantConsole)
	require.NoError(t, err)
	assert.Equal(t, "tasks.json", name)

	name, err = FileName(VariantBoard)
	require.NoError(t, err)
	assert.Equal(t, "apptasks.json", name)

	_, err = DefaultPath("gui")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	p, err := DefaultPath(VariantBoard)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p))
	assert.Equal(t, "apptasks.json", filepath.Base(p))
}
