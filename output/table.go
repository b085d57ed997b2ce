package output

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/filterx/frame"
)

// TableFormatter renders rows as an aligned text table.
type TableFormatter struct {
	writer io.Writer
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

func (t *TableFormatter) Format(f *frame.Frame) error {
	table := newTable(t.writer, f.Names())
	cols := f.Columns()
	for i := 0; i < f.Height(); i++ {
		row := make([]string, len(cols))
		for j, s := range cols {
			row[j] = frame.FormatValue(s.Value(i))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

// WriteSchema prints the index, name and type of every field.
func WriteSchema(w io.Writer, schema []frame.Field) error {
	table := newTable(w, []string{"index", "name", "type"})
	for i, f := range schema {
		table.Append([]string{strconv.Itoa(i), f.Name, f.Type.String()})
	}
	table.Render()
	return nil
}

// WriteTable renders a header and string rows with the same style as
// TableFormatter.
func WriteTable(w io.Writer, header []string, rows [][]string) {
	table := newTable(w, header)
	table.AppendBulk(rows)
	table.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
