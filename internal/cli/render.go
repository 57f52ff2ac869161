package cli

import (
	"fmt"

	"github.com/Makepad-fr/tasks/internal/model"
	"github.com/Makepad-fr/tasks/internal/store/jsonstore"
	"github.com/Makepad-fr/tasks/internal/ui"
)

func listPanel(tasks []model.Task, group bool) string {
	t := ui.Current()
	d, p := model.Stats(tasks)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Tasks"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(tasks),
	)

	lines := []string{header, t.Muted.Render(ui.ProgressBar(d, d+p, 28)), ""}
	if group {
		lines = append(lines, groupLines(tasks)...)
	} else {
		lines = append(lines, flatLines(tasks, allIndexes(len(tasks)))...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `tasks add \"Buy milk\"`"))
	return ui.Panel(lines)
}

func allIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// flatLines renders the tasks at idx, numbered by their position in tasks.
func flatLines(tasks []model.Task, idx []int) []string {
	t := ui.Current()
	if len(idx) == 0 {
		return []string{t.Muted.Render("no tasks")}
	}
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		task := tasks[i]
		box, style := t.BoxUnchecked, t.Muted
		if task.Done {
			box, style = t.BoxChecked, t.Success
		}
		text := task.Text
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			t.Muted.Render(fmt.Sprintf("%2d.", i+1)), style.Render(box), text))
	}
	return out
}

func groupLines(tasks []model.Task) []string {
	t := ui.Current()
	var pend, done []int
	for i, task := range tasks {
		if task.Done {
			done = append(done, i)
		} else {
			pend = append(pend, i)
		}
	}
	section := func(title string, idx []int) []string {
		lines := []string{t.Accent.Render(title)}
		if len(idx) == 0 {
			return append(lines, t.Muted.Render("(none)"))
		}
		return append(lines, flatLines(tasks, idx)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

func checkPanel(r *jsonstore.Report) string {
	t := ui.Current()
	lines := []string{t.Title.Render("Check") + " " + r.Path}
	switch {
	case !r.Exists:
		lines = append(lines, t.Muted.Render("no data file yet; the first save creates it"))
	case r.ParseError != nil:
		lines = append(lines,
			t.Error.Render("not valid JSON: "+r.ParseError.Error()),
			t.Muted.Render("loading starts empty; the next save replaces the file"))
	case r.ShapeError != nil:
		lines = append(lines,
			t.Error.Render(r.ShapeError.Error()),
			t.Muted.Render("loading starts empty; the next save replaces the file"))
	case r.Canonical:
		lines = append(lines, t.Success.Render(fmt.Sprintf("%s current format, %d task(s)", t.SymOK, r.Tasks)))
	default:
		lines = append(lines, t.Pending.Render(fmt.Sprintf("legacy format, %d task(s) after conversion", r.Tasks)))
		for _, v := range r.Violations {
			lines = append(lines, t.Muted.Render("  "+v))
		}
		for _, d := range r.Dropped {
			lines = append(lines, t.Error.Render(fmt.Sprintf("  entry %d (%s) will be dropped", d.Index, d.Kind)))
		}
		if r.WouldRewrite {
			lines = append(lines, t.Muted.Render("the next load rewrites the file"))
		}
	}
	return ui.Panel(lines)
}
