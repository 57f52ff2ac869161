// Package board is the full-screen task board: an entry line, the task
// list and add/edit/delete/toggle actions, each saved as soon as it happens.
package board

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasks/internal/model"
	"github.com/Makepad-fr/tasks/internal/ui"
)

// Store is the persistence the board needs.
type Store interface {
	Load() ([]model.Task, error)
	Save([]model.Task) error
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// listItem adapts a task to bubbles/list.Item.
type listItem struct {
	task model.Task
}

func (i listItem) Title() string       { return i.task.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.task.Text }

// itemDelegate renders one task per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, it list.Item) {
	li, ok := it.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	box := t.Muted.Render(t.BoxUnchecked)
	text := li.task.Text
	if li.task.Done {
		box = t.Success.Render(t.BoxChecked)
		text = t.DoneText.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	fmt.Fprintf(w, "%s%d. %s %s", prefix, index+1, box, text)
}

var keys = struct {
	add, edit, del, toggle, quit key.Binding
}{
	add:    key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a/enter", "add")),
	edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	del:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
	quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model of the board.
type Model struct {
	store     Store
	tasks     []model.Task
	list      list.Model
	input     textinput.Model
	mode      mode
	editIndex int
	status    string
	err       error
}

// New builds a board over tasks already loaded from store.
func New(store Store, tasks []model.Task) Model {
	l := list.New(toItems(tasks), itemDelegate{}, 80, 20)
	l.Title = "Tasks"
	l.Styles.Title = ui.Current().Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	bindings := func() []key.Binding {
		return []key.Binding{keys.add, keys.edit, keys.del, keys.toggle, keys.quit}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	ti := textinput.New()
	ti.Prompt = "> "
	// No limit: a shorter one would cut long tasks when they are edited.
	ti.CharLimit = 0

	return Model{store: store, tasks: tasks, list: l, input: ti}
}

func toItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, listItem{task: t})
	}
	return items
}

// Tasks returns the board's current list.
func (m Model) Tasks() []model.Task { return m.tasks }

// Err returns the save error that ended the board, if any.
func (m Model) Err() error { return m.err }

// Status returns the last status line.
func (m Model) Status() string { return m.status }

// Run loads the tasks and shows the board until the user quits.
func Run(store Store, opts ...tea.ProgramOption) error {
	tasks, err := store.Load()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	final, err := tea.NewProgram(New(store, tasks), opts...).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.err
	}
	return nil
}

func (m Model) Init() tea.Cmd { return nil }

// commit saves next and, only when that worked, makes it the board's list.
func (m *Model) commit(next []model.Task, status string) tea.Cmd {
	if err := m.store.Save(next); err != nil {
		m.err = fmt.Errorf("save: %w", err)
		m.status = m.err.Error()
		return tea.Quit
	}
	m.tasks = next
	m.status = status
	return m.list.SetItems(toItems(next))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wm, ok := msg.(tea.WindowSizeMsg); ok {
		h := wm.Height - 6
		if h < 3 {
			h = 3
		}
		m.list.SetSize(wm.Width-4, h)
		m.input.Width = wm.Width - 8
		return m, nil
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	i := m.list.Index()
	switch {
	case key.Matches(km, keys.quit):
		return m, tea.Quit

	case key.Matches(km, keys.add):
		m.mode = adding
		m.status = ""
		m.input.SetValue("")
		m.input.Placeholder = "New task..."
		return m, m.input.Focus()

	case key.Matches(km, keys.edit):
		if i < 0 || i >= len(m.tasks) {
			return m, nil
		}
		m.mode = editing
		m.editIndex = i
		m.status = ""
		m.input.SetValue(m.tasks[i].Text)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit task..."
		return m, m.input.Focus()

	case key.Matches(km, keys.del):
		next, err := model.RemoveAt(m.tasks, i)
		if err != nil {
			return m, nil
		}
		cmd := m.commit(next, "deleted")
		if m.err == nil && i >= len(next) && len(next) > 0 {
			m.list.Select(len(next) - 1)
		}
		return m, cmd

	case key.Matches(km, keys.toggle):
		next := slices.Clone(m.tasks)
		if err := model.Toggle(next, i); err != nil {
			return m, nil
		}
		cmd := m.commit(next, "updated")
		m.list.Select(i)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			m.closeInput()
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	var (
		next   []model.Task
		err    error
		status string
		sel    int
	)
	switch m.mode {
	case adding:
		next, err = model.Add(slices.Clone(m.tasks), text)
		status, sel = "added", len(next)-1
	case editing:
		next = slices.Clone(m.tasks)
		err = model.Edit(next, m.editIndex, text)
		status, sel = "updated", m.editIndex
	}
	if err != nil {
		m.status = "task text cannot be empty"
		return m, nil
	}
	m.closeInput()
	cmd := m.commit(next, status)
	if m.err == nil {
		m.list.Select(sel)
	}
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	done, pending := model.Stats(m.tasks)
	header := fmt.Sprintf("%s %d  %s %d  %s",
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Muted.Render(ui.ProgressBar(done, done+pending, 20)))

	parts := []string{header, m.list.View()}
	if m.mode != browsing {
		title := "Add task"
		if m.mode == editing {
			title = "Edit task"
		}
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		parts = append(parts, bar.Render(title+"\n"+m.input.View()))
	}
	if m.status != "" {
		style := t.Muted
		if m.err != nil {
			style = t.Error
		}
		parts = append(parts, style.Render(m.status))
	}
	return ui.Panel([]string{strings.Join(parts, "\n")})
}
