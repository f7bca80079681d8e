package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders a ParseError against the source it came from, Rust-like:
// a `-->` location line, the offending source line, and a caret marker.
// Trimmed down from the teacher's CompilerError/Suggestion builder — our
// error kinds carry only a position and a message, no suggestions or notes.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter scoped to one source file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders err as a multi-line, colored diagnostic.
func (r *Reporter) Format(err *ParseError) string {
	var b strings.Builder

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	b.WriteString(fmt.Sprintf("%s: %s\n", red("error"), err.Msg))

	width := lineNumberWidth(err.Line)
	indent := strings.Repeat(" ", width)
	b.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, err.Line, err.Col))
	b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Line >= 1 && err.Line <= len(r.lines) {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, err.Line)), dim("│"), r.lines[err.Line-1]))
		marker := strings.Repeat(" ", max0(err.Col-1)) + red("^")
		b.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), marker))
	}

	return b.String()
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		w = 3
	}
	return w
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
