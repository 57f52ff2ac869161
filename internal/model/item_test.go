package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	tasks, err := Add(nil, "  buy milk ")
	require.NoError(t, err)
	assert.Equal(t, []Task{{Text: "buy milk"}}, tasks)

	tasks, err = Add(tasks, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Len(t, tasks, 1)
}

func TestCompleteAndToggle(t *testing.T) {
	tasks := []Task{{Text: "a"}, {Text: "b"}}

	require.NoError(t, Complete(tasks, 1))
	assert.True(t, tasks[1].Done)
	require.NoError(t, Complete(tasks, 1))
	assert.True(t, tasks[1].Done, "complete is not a toggle")

	require.NoError(t, Toggle(tasks, 1))
	assert.False(t, tasks[1].Done)
}

func TestIndexErrors(t *testing.T) {
	tasks := []Task{{Text: "a"}}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"complete negative", func() error { return Complete(tasks, -1) }},
		{"toggle past end", func() error { return Toggle(tasks, 1) }},
		{"edit past end", func() error { return Edit(tasks, 3, "x") }},
		{"remove past end", func() error { _, err := RemoveAt(tasks, 1); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			var ie *IndexError
			require.True(t, errors.As(err, &ie), "got %v", err)
			assert.Equal(t, 1, ie.Len)
		})
	}
	assert.Equal(t, []Task{{Text: "a"}}, tasks)
}

func TestIndexErrorMessageIsOneBased(t *testing.T) {
	err := &IndexError{Index: 4, Len: 2}
	assert.Equal(t, "index out of range: have 2, got 5", err.Error())
}

func TestEdit(t *testing.T) {
	tasks := []Task{{Text: "old", Done: true}}

	assert.ErrorIs(t, Edit(tasks, 0, " "), ErrEmptyText)
	assert.Equal(t, "old", tasks[0].Text)

	require.NoError(t, Edit(tasks, 0, " new "))
	assert.Equal(t, Task{Text: "new", Done: true}, tasks[0])
}

func TestRemoveAtKeepsOrder(t *testing.T) {
	tasks := []Task{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	out, err := RemoveAt(tasks, 1)
	require.NoError(t, err)
	assert.Equal(t, []Task{{Text: "a"}, {Text: "c"}}, out)
	assert.Equal(t, "b", tasks[1].Text, "input slice is not modified")
}

func TestRemoveCompleted(t *testing.T) {
	tasks := []Task{{Text: "a", Done: true}, {Text: "b"}, {Text: "c", Done: true}, {Text: "d"}}
	kept, removed := RemoveCompleted(tasks)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []Task{{Text: "b"}, {Text: "d"}}, kept)

	done, pending := Stats(tasks)
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, pending)
}
