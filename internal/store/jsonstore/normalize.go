package jsonstore

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Makepad-fr/tasks/internal/model"
)

// Keys recognised when reading older files. "task" is the canonical text key,
// "title" is what the first releases wrote, "tasks" wrapped the whole list.
const (
	keyText       = "task"
	keyLegacyText = "title"
	keyDone       = "done"
	keyWrapper    = "tasks"
)

// ErrShape is returned when the decoded document is neither a list nor a wrapped list.
var ErrShape = errors.New("unexpected top-level shape")

// Dropped describes a list element that could not become a task.
type Dropped struct {
	Index int
	Kind  string
}

// Result is the outcome of one normalization pass.
type Result struct {
	Tasks     []model.Task
	Changed   bool
	Unwrapped bool
	Dropped   []Dropped
}

// Normalize coerces a decoded JSON document into canonical tasks.
// raw is the value produced by json.Unmarshal into an `any`.
func Normalize(raw any) (Result, error) {
	var res Result

	if obj, ok := raw.(map[string]any); ok {
		inner, ok := obj[keyWrapper].([]any)
		if !ok {
			return res, fmt.Errorf("%w: object without a %q list", ErrShape, keyWrapper)
		}
		raw = inner
		res.Unwrapped = true
		res.Changed = true
	}

	items, ok := raw.([]any)
	if !ok {
		return res, fmt.Errorf("%w: %s", ErrShape, kindOf(raw))
	}

	res.Tasks = make([]model.Task, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			res.Tasks = append(res.Tasks, model.Task{Text: v})
			res.Changed = true
		case map[string]any:
			t, canonical := taskFromObject(v)
			res.Tasks = append(res.Tasks, t)
			if !canonical {
				res.Changed = true
			}
		default:
			res.Dropped = append(res.Dropped, Dropped{Index: i, Kind: kindOf(item)})
			res.Changed = true
		}
	}
	return res, nil
}

// taskFromObject reports canonical=true only when obj already has exactly
// a string "task" and a bool "done".
func taskFromObject(obj map[string]any) (model.Task, bool) {
	_, textIsString := obj[keyText].(string)
	text := scalarText(obj[keyText])
	if text == "" {
		text = scalarText(obj[keyLegacyText])
	}
	done, doneIsBool := obj[keyDone].(bool)
	if !doneIsBool {
		done = truthy(obj[keyDone])
	}

	canonical := textIsString && doneIsBool && len(obj) == 2
	return model.Task{Text: text, Done: done}, canonical
}

// scalarText returns strings as they are and spells out truthy numbers and
// booleans. Everything else, including 0 and false, yields "".
func scalarText(v any) string {
	if !truthy(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// truthy follows the usual dynamic-language rules: zero values and empty
// containers are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
