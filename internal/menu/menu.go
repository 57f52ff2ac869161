// Package menu runs the numbered console menu over a task store.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasks/internal/logging"
	"github.com/Makepad-fr/tasks/internal/model"
	"github.com/Makepad-fr/tasks/internal/ui"
)

// Store is the persistence the menu needs.
type Store interface {
	Load() ([]model.Task, error)
	Save([]model.Task) error
}

// Loop owns the task list for one interactive session.
type Loop struct {
	store  Store
	in     *bufio.Scanner
	out    io.Writer
	logger *log.Logger
	tasks  []model.Task
}

// New wires a loop reading choices from in and printing to out.
func New(store Store, in io.Reader, out io.Writer, logger *log.Logger) *Loop {
	if logger == nil {
		logger = logging.Discard()
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	return &Loop{store: store, in: sc, out: out, logger: logger}
}

// MaxLineBytes is the longest input line the menu accepts.
const MaxLineBytes = 1 << 20

// errQuit ends the loop when input runs out.
var errQuit = errors.New("input closed")

// Run loads the tasks and serves the menu until the user quits or input ends.
// A failed save or an unreadable input line ends the session with that error.
func (l *Loop) Run() error {
	tasks, err := l.store.Load()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	l.tasks = tasks

	for {
		l.showMenu()
		choice, err := l.prompt("Choose an option: ")
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = l.add()
		case "2":
			l.show()
		case "3":
			err = l.complete()
		case "4":
			err = l.deleteCompleted()
		case "5":
			err = l.edit()
		case "6":
			fmt.Fprintln(l.out, "Bye.")
			return nil
		default:
			ui.Fail(l.out, "invalid choice, enter a number from 1 to 6")
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (l *Loop) showMenu() {
	t := ui.Current()
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, t.Title.Render("=== Tasks ==="))
	for i, item := range []string{
		"Add a task",
		"Show tasks",
		"Complete a task",
		"Delete completed tasks",
		"Edit a task",
		"Quit",
	} {
		fmt.Fprintf(l.out, "%d. %s\n", i+1, item)
	}
}

// prompt prints msg and reads one trimmed line. It returns errQuit at end of
// input and a wrapped scanner error when the line could not be read.
func (l *Loop) prompt(msg string) (string, error) {
	fmt.Fprint(l.out, msg)
	if !l.in.Scan() {
		fmt.Fprintln(l.out)
		if err := l.in.Err(); err != nil {
			ui.Fail(l.out, "could not read input: "+err.Error())
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errQuit
	}
	return strings.TrimSpace(l.in.Text()), nil
}

func (l *Loop) save() error {
	if err := l.store.Save(l.tasks); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (l *Loop) add() error {
	text, err := l.prompt("Task to add: ")
	if err != nil {
		return err
	}
	tasks, err := model.Add(l.tasks, text)
	if err != nil {
		ui.Fail(l.out, "task text is empty, nothing added")
		return nil
	}
	l.tasks = tasks
	if err := l.save(); err != nil {
		return err
	}
	l.logger.Debug("task added", "index", len(l.tasks))
	ui.OK(l.out, fmt.Sprintf("added %q", strings.TrimSpace(text)))
	return nil
}

func (l *Loop) show() {
	if len(l.tasks) == 0 {
		fmt.Fprintln(l.out, "No tasks.")
		return
	}
	t := ui.Current()
	fmt.Fprintln(l.out, t.Muted.Render("--- tasks ---"))
	for i, task := range l.tasks {
		status := t.Pending.Render(t.SymPending + " pending")
		if task.Done {
			status = t.Success.Render(t.SymDone + " done")
		}
		fmt.Fprintf(l.out, "%d. %s - %s\n", i+1, task.Text, status)
	}
	fmt.Fprintln(l.out, t.Muted.Render("-------------"))
}

// pickIndex asks for a 1-based task number and returns it 0-based.
// ok is false when the input was invalid and has already been reported.
func (l *Loop) pickIndex(msg string) (idx int, ok bool, err error) {
	raw, err := l.prompt(msg)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		ui.Fail(l.out, "not a number: "+raw)
		return 0, false, nil
	}
	if n < 1 || n > len(l.tasks) {
		ui.Fail(l.out, fmt.Sprintf("task number out of range, enter 1 to %d", len(l.tasks)))
		return 0, false, nil
	}
	return n - 1, true, nil
}

func (l *Loop) complete() error {
	if len(l.tasks) == 0 {
		fmt.Fprintln(l.out, "No tasks.")
		return nil
	}
	i, ok, err := l.pickIndex("Task number to complete: ")
	if !ok {
		return err
	}
	if err := model.Complete(l.tasks, i); err != nil {
		return err
	}
	if err := l.save(); err != nil {
		return err
	}
	ui.OK(l.out, fmt.Sprintf("completed %q", l.tasks[i].Text))
	return nil
}

func (l *Loop) deleteCompleted() error {
	if done, _ := model.Stats(l.tasks); done == 0 {
		fmt.Fprintln(l.out, "No completed tasks.")
		return nil
	}
	answer, err := l.prompt("Delete all completed tasks? (y/n): ")
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "y" {
		fmt.Fprintln(l.out, "Cancelled.")
		return nil
	}
	kept, removed := model.RemoveCompleted(l.tasks)
	l.tasks = kept
	if err := l.save(); err != nil {
		return err
	}
	ui.OK(l.out, fmt.Sprintf("deleted %d completed task(s)", removed))
	return nil
}

func (l *Loop) edit() error {
	if len(l.tasks) == 0 {
		fmt.Fprintln(l.out, "No tasks.")
		return nil
	}
	i, ok, err := l.pickIndex("Task number to edit: ")
	if !ok {
		return err
	}
	text, err := l.prompt(fmt.Sprintf("New text (current: %s): ", l.tasks[i].Text))
	if err != nil {
		return err
	}
	if err := model.Edit(l.tasks, i, text); err != nil {
		ui.Fail(l.out, "task text is empty, edit cancelled")
		return nil
	}
	if err := l.save(); err != nil {
		return err
	}
	ui.OK(l.out, "task updated")
	return nil
}
