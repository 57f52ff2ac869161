package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasks/internal/board"
	"github.com/Makepad-fr/tasks/internal/logging"
	"github.com/Makepad-fr/tasks/internal/menu"
	"github.com/Makepad-fr/tasks/internal/model"
	"github.com/Makepad-fr/tasks/internal/store/jsonstore"
	"github.com/Makepad-fr/tasks/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool // list grouped by pending/done
	Logger *log.Logger

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// RunBoard replaces the interactive board; tests use it to avoid a terminal.
	RunBoard func(board.Store) error
}

func (o *Options) fill() {
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.RunBoard == nil {
		o.RunBoard = func(s board.Store) error { return board.Run(s) }
	}
}

type runner struct {
	opt Options
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	opt.fill()
	r := &runner{opt: opt}

	if len(args) == 0 {
		PrintHelp(opt.Err)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0

	case "ls":
		return r.doList()

	case "add":
		if len(a) == 0 {
			return r.usage("usage: tasks add <text...>")
		}
		return r.doAdd(strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			return r.usage("usage: tasks done <index>")
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			return r.usage("done: not a number: " + a[0])
		}
		return r.doToggle(n)

	case "edit":
		if len(a) < 2 {
			return r.usage("usage: tasks edit <index> <text...>")
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			return r.usage("edit: not a number: " + a[0])
		}
		return r.doEdit(n, strings.Join(a[1:], " "))

	case "rm":
		if len(a) != 1 {
			return r.usage("usage: tasks rm <index>")
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			return r.usage("rm: not a number: " + a[0])
		}
		return r.doRemove(n)

	case "clear":
		if len(a) != 0 {
			return r.usage("usage: tasks clear")
		}
		return r.doClear()

	case "check":
		variant := jsonstore.VariantConsole
		if len(a) == 1 {
			variant = jsonstore.Variant(a[0])
		} else if len(a) > 1 {
			return r.usage("usage: tasks check [console|board]")
		}
		return r.doCheck(variant)

	case "menu":
		return r.doMenu()

	case "board":
		return r.doBoard()
	}

	ui.Fail(opt.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Err)
	PrintHelp(opt.Err)
	return 2
}

// PrintHelp writes the usage text.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tasks - a small task list

Usage:
  tasks [flags] <subcommand> [args]

Subcommands:
  add <text...>          Add a new task (text can be multiple words)
  ls                     List tasks (-group splits pending and done)
  done <index>           Toggle done for the task at 1-based index
  edit <index> <text...> Replace the text of a task
  rm <index>             Remove the task at 1-based index
  clear                  Delete every completed task
  check [console|board]  Report whether a data file is in the current format
  menu                   Interactive numbered menu (tasks.json)
  board                  Full-screen board (apptasks.json)

Flags:
  -group  -theme classic|neon|mono  -log-level  -log-format  -log-timestamps

Examples:
  tasks add "Buy milk"
  tasks ls
  tasks done 2
  tasks rm 3
`)
}

func (r *runner) usage(msg string) int {
	ui.Fail(r.opt.Err, msg)
	return 2
}

func (r *runner) fail(msg string, err error) int {
	ui.Fail(r.opt.Err, msg+": "+err.Error())
	return 1
}

func (r *runner) open(v jsonstore.Variant) (*jsonstore.Store, error) {
	p, err := jsonstore.DefaultPath(v)
	if err != nil {
		return nil, err
	}
	return jsonstore.New(p, jsonstore.WithLogger(r.opt.Logger)), nil
}

// mutate loads the console file, applies fn and saves the result.
// fn returns a usage-level error for bad input; nothing is saved then.
func (r *runner) mutate(fn func([]model.Task) ([]model.Task, error)) int {
	s, err := r.open(jsonstore.VariantConsole)
	if err != nil {
		return r.fail("open", err)
	}
	tasks, err := s.Load()
	if err != nil {
		return r.fail("load", err)
	}
	tasks, err = fn(tasks)
	if err != nil {
		ui.Fail(r.opt.Err, err.Error())
		var ie *model.IndexError
		if errors.As(err, &ie) {
			ui.Hint(r.opt.Err, "Hint: run `tasks ls` to see valid indexes")
		}
		return 2
	}
	if err := s.Save(tasks); err != nil {
		return r.fail("save", err)
	}
	return 0
}

func (r *runner) doList() int {
	s, err := r.open(jsonstore.VariantConsole)
	if err != nil {
		return r.fail("open", err)
	}
	tasks, err := s.Load()
	if err != nil {
		return r.fail("load", err)
	}
	fmt.Fprintln(r.opt.Out, listPanel(tasks, r.opt.Group))
	return 0
}

func (r *runner) doAdd(text string) int {
	code := r.mutate(func(tasks []model.Task) ([]model.Task, error) {
		return model.Add(tasks, text)
	})
	if code == 0 {
		ui.OK(r.opt.Out, "added")
	}
	return code
}

func (r *runner) doToggle(userIndex int) int {
	code := r.mutate(func(tasks []model.Task) ([]model.Task, error) {
		return tasks, model.Toggle(tasks, userIndex-1)
	})
	if code == 0 {
		ui.OK(r.opt.Out, "toggled")
	}
	return code
}

func (r *runner) doEdit(userIndex int, text string) int {
	code := r.mutate(func(tasks []model.Task) ([]model.Task, error) {
		return tasks, model.Edit(tasks, userIndex-1, text)
	})
	if code == 0 {
		ui.OK(r.opt.Out, "updated")
	}
	return code
}

func (r *runner) doRemove(userIndex int) int {
	code := r.mutate(func(tasks []model.Task) ([]model.Task, error) {
		return model.RemoveAt(tasks, userIndex-1)
	})
	if code == 0 {
		ui.OK(r.opt.Out, "removed")
	}
	return code
}

func (r *runner) doClear() int {
	var removed int
	code := r.mutate(func(tasks []model.Task) ([]model.Task, error) {
		var kept []model.Task
		kept, removed = model.RemoveCompleted(tasks)
		return kept, nil
	})
	if code == 0 {
		ui.OK(r.opt.Out, fmt.Sprintf("cleared %d completed", removed))
	}
	return code
}

func (r *runner) doCheck(v jsonstore.Variant) int {
	s, err := r.open(v)
	if err != nil {
		return r.usage("check: " + err.Error())
	}
	rep, err := s.Check()
	if err != nil {
		return r.fail("check", err)
	}
	fmt.Fprintln(r.opt.Out, checkPanel(rep))
	if rep.Exists && !rep.Canonical {
		return 1
	}
	return 0
}

func (r *runner) doMenu() int {
	s, err := r.open(jsonstore.VariantConsole)
	if err != nil {
		return r.fail("open", err)
	}
	if err := menu.New(s, r.opt.In, r.opt.Out, r.opt.Logger).Run(); err != nil {
		return r.fail("menu", err)
	}
	return 0
}

func (r *runner) doBoard() int {
	s, err := r.open(jsonstore.VariantBoard)
	if err != nil {
		return r.fail("open", err)
	}
	if err := r.opt.RunBoard(s); err != nil {
		return r.fail("board", err)
	}
	return 0
}
