package model

import (
	"errors"
	"fmt"
	"strings"
)

// Task is the canonical record every on-disk shape is normalized into.
// The JSON key for Text stays "task" so files written by older versions
// load without a rewrite.
type Task struct {
	Text string `json:"task"`
	Done bool   `json:"done"`
}

// ErrEmptyText is returned when an add or edit would store a blank description.
var ErrEmptyText = errors.New("task text is empty")

// IndexError reports a 0-based index outside the current list.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of range: have %d, got %d", e.Len, e.Index+1)
}

func checkIndex(tasks []Task, i int) error {
	if i < 0 || i >= len(tasks) {
		return &IndexError{Index: i, Len: len(tasks)}
	}
	return nil
}

// Add appends a new pending task. The text is trimmed first.
func Add(tasks []Task, text string) ([]Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return tasks, ErrEmptyText
	}
	return append(tasks, Task{Text: text}), nil
}

// Complete marks the task at i as done.
func Complete(tasks []Task, i int) error {
	if err := checkIndex(tasks, i); err != nil {
		return err
	}
	tasks[i].Done = true
	return nil
}

// Toggle flips the done flag of the task at i.
func Toggle(tasks []Task, i int) error {
	if err := checkIndex(tasks, i); err != nil {
		return err
	}
	tasks[i].Done = !tasks[i].Done
	return nil
}

// Edit replaces the text of the task at i.
func Edit(tasks []Task, i int, text string) error {
	if err := checkIndex(tasks, i); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	tasks[i].Text = text
	return nil
}

// RemoveAt deletes the task at i, keeping the order of the rest.
func RemoveAt(tasks []Task, i int) ([]Task, error) {
	if err := checkIndex(tasks, i); err != nil {
		return tasks, err
	}
	out := make([]Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...), nil
}

// RemoveCompleted drops every done task and reports how many went.
func RemoveCompleted(tasks []Task) ([]Task, int) {
	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	return kept, len(tasks) - len(kept)
}

// Stats counts done and pending tasks.
func Stats(tasks []Task) (done, pending int) {
	for _, t := range tasks {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return
}
