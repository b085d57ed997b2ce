package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vegasq/filterx/frame"
)

// CSVFormatter outputs rows as delimited text. Fields are never quoted;
// nulls are written as empty fields and floats with three decimals.
type CSVFormatter struct {
	writer    io.Writer
	separator string
	header    bool
}

// NewCSVFormatter creates a delimited text formatter.
func NewCSVFormatter(w io.Writer, separator string, header bool) *CSVFormatter {
	return &CSVFormatter{writer: w, separator: separator, header: header}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the header row, when enabled, followed by every row of f.
func (c *CSVFormatter) Format(f *frame.Frame) error {
	bw := bufio.NewWriter(c.writer)
	if c.header && f.Width() > 0 {
		c.writeLine(bw, f.Names())
	}

	cols := f.Columns()
	record := make([]string, len(cols))
	for i := 0; i < f.Height(); i++ {
		for j, s := range cols {
			record[j] = frame.FormatValue(s.Value(i))
		}
		c.writeLine(bw, record)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush delimited output: %w", err)
	}
	return nil
}

func (c *CSVFormatter) writeLine(bw *bufio.Writer, fields []string) {
	for i, v := range fields {
		if i > 0 {
			bw.WriteString(c.separator)
		}
		bw.WriteString(v)
	}
	bw.WriteByte('\n')
}
