package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const minBarWidth = 5

// ProgressBar draws done out of total as a bar of width cells followed by a
// percentage. done is clamped to [0, total]; an empty list reads as 0%.
func ProgressBar(done, total, width int) string {
	width = max(width, minBarWidth)
	filled, pct := 0, 0
	if total > 0 {
		done = min(max(done, 0), total)
		filled = done * width / total
		pct = done * 100 / total
	}
	return fmt.Sprintf("%s%s %3d%%",
		strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct)
}

// Panel frames lines with the current theme's border.
func Panel(lines []string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}

// Hint prints a muted follow-up line.
func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Muted.Render(msg))
}
