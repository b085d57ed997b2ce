package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/filterx/frame"
)

// Formatter defines the interface for tabular output formatters.
type Formatter interface {
	// Format writes every row of f.
	Format(f *frame.Frame) error

	// SetOutput changes the output writer.
	SetOutput(w io.Writer)
}

// Options configure the output side of a run.
type Options struct {
	// Path is the destination file; "" and "-" mean stdout.
	Path string
	Type Type
	// Format is csv, jsonl or table.
	Format    string
	Separator string
	Header    bool
}

func (o Options) Validate() error {
	switch o.Format {
	case "", "csv", "jsonl", "table":
	default:
		return fmt.Errorf("unknown output format %q, use csv, jsonl or table", o.Format)
	}
	if o.Format != "jsonl" && o.Format != "table" && o.Separator == "" {
		return fmt.Errorf("output separator must not be empty")
	}
	if strings.ContainsAny(o.Separator, "\n\r") {
		return fmt.Errorf("output separator must not contain a line break")
	}
	return nil
}

// NewFormatter returns the formatter selected by opts.
func NewFormatter(w io.Writer, opts Options) (Formatter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch opts.Format {
	case "jsonl":
		return NewJSONFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	default:
		return NewCSVFormatter(w, opts.Separator, opts.Header), nil
	}
}
