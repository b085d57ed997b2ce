package hint

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/filterx/engine"
	"github.com/vegasq/filterx/query"
	"github.com/vegasq/filterx/reader"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "unknown column",
			err:  &engine.Error{Kind: engine.ErrUnknownColumn, Msg: `column "x" not found`, Columns: []string{"a", "b"}},
			want: []string{"Error: unknown column: column \"x\" not found", "valid columns: a, b"},
		},
		{
			name: "suggestion",
			err:  &engine.Error{Kind: engine.ErrUnknownFunction, Msg: `function "uper" not found`, Suggestion: "upper"},
			want: []string{"unknown function", "did you mean upper?"},
		},
		{
			name: "wrapped runtime",
			err:  fmt.Errorf("run: %w", &engine.Error{Kind: engine.ErrRuntime, Msg: "query execution failed", Err: errors.New("boom")}),
			want: []string{"execution failed: query execution failed: boom"},
		},
		{
			name: "syntax",
			err:  &query.SyntaxError{Source: "a >", Offset: 3, Msg: "unexpected end of input"},
			want: []string{"syntax error: unexpected end of input", "  a >\n     ^"},
		},
		{
			name: "format hint",
			err:  &reader.FormatError{Format: "fasta", Line: 1, Msg: "bad header", Hint: "use the fastq command"},
			want: []string{"fasta: line 1: bad header", "hint: use the fastq command"},
		},
		{
			name: "plain",
			err:  errors.New("failed to open file"),
			want: []string{"Error: failed to open file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out := New(&buf).Render(tt.err)
			require.False(t, strings.HasSuffix(out, "\n"))
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}
