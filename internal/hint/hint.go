// Package hint renders errors for people at a terminal.
package hint

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vegasq/filterx/engine"
	"github.com/vegasq/filterx/query"
	"github.com/vegasq/filterx/reader"
)

var (
	errorColor   = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF6B6B"}
	nameColor    = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#5FD7FF"}
	successColor = lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02D98E"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
)

// Renderer colours errors when its writer is a terminal and writes plain
// text otherwise.
type Renderer struct {
	kind, name, suggestion, muted lipgloss.Style
}

func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		kind:       r.NewStyle().Foreground(errorColor).Bold(true),
		name:       r.NewStyle().Foreground(nameColor),
		suggestion: r.NewStyle().Foreground(successColor).Bold(true),
		muted:      r.NewStyle().Foreground(mutedColor),
	}
}

// Render formats err as one or more lines, without a trailing newline.
func (r *Renderer) Render(err error) string {
	var b strings.Builder
	b.WriteString(r.kind.Render("Error:"))
	b.WriteByte(' ')

	var (
		ee *engine.Error
		se *query.SyntaxError
		fe *reader.FormatError
	)
	switch {
	case errors.As(err, &se):
		b.WriteString(r.kind.Render("syntax error"))
		b.WriteString(": ")
		b.WriteString(se.Msg)
		for _, line := range strings.Split(se.Caret(), "\n") {
			b.WriteString("\n  ")
			b.WriteString(r.muted.Render(line))
		}
	case errors.As(err, &ee):
		b.WriteString(r.kind.Render(ee.Kind.Error()))
		b.WriteString(": ")
		b.WriteString(ee.Msg)
		if ee.Err != nil {
			b.WriteString(": ")
			b.WriteString(ee.Err.Error())
		}
		if len(ee.Columns) > 0 {
			names := make([]string, len(ee.Columns))
			for i, c := range ee.Columns {
				names[i] = r.name.Render(c)
			}
			b.WriteString("\n  valid columns: ")
			b.WriteString(strings.Join(names, ", "))
		}
		if ee.Suggestion != "" {
			b.WriteString("\n  did you mean ")
			b.WriteString(r.suggestion.Render(ee.Suggestion))
			b.WriteString("?")
		}
	case errors.As(err, &fe):
		b.WriteString(err.Error())
		if fe.Hint != "" {
			b.WriteString("\n  hint: ")
			b.WriteString(r.suggestion.Render(fe.Hint))
		}
	default:
		b.WriteString(err.Error())
	}
	return b.String()
}
