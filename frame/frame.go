package frame

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnNotFound is returned when a plan references a missing column.
var ErrColumnNotFound = errors.New("column not found")

// Frame is an ordered collection of equally sized series.
type Frame struct {
	columns []*Series
	height  int
}

// New builds a frame. All series must share one length and have unique names.
func New(columns ...*Series) (*Frame, error) {
	f := &Frame{columns: columns}
	seen := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		if _, dup := seen[c.name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.name)
		}
		seen[c.name] = struct{}{}
		if i == 0 {
			f.height = c.Len()
		} else if c.Len() != f.height {
			return nil, fmt.Errorf("column %q has length %d, expected %d", c.name, c.Len(), f.height)
		}
	}
	return f, nil
}

// FromRows builds a frame from row-major data, inferring column types.
func FromRows(names []string, rows [][]any) (*Frame, error) {
	cols := make([]*Series, len(names))
	for j, name := range names {
		values := make([]any, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		cols[j] = InferSeries(name, values)
	}
	return New(cols...)
}

func (f *Frame) Height() int { return f.height }
func (f *Frame) Width() int { return len(f.columns) }

// Columns returns the frame's series in order. The slice must not be modified.
func (f *Frame) Columns() []*Series { return f.columns }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.name
	}
	return names
}

// Schema returns name and type for every column.
func (f *Frame) Schema() []Field {
	fields := make([]Field, len(f.columns))
	for i, c := range f.columns {
		fields[i] = c.Field()
	}
	return fields
}

// Column returns the series with the given name.
func (f *Frame) Column(name string) (*Series, error) {
	if i := f.index(name); i >= 0 {
		return f.columns[i], nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrColumnNotFound, name, strings.Join(f.Names(), ", "))
}

func (f *Frame) index(name string) int {
	for i, c := range f.columns {
		if c.name == name {
			return i
		}
	}
	return -1
}

// Row returns the values of row i in column order.
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.columns))
	for j, c := range f.columns {
		row[j] = c.values[i]
	}
	return row
}

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n >= f.height {
		return f
	}
	if n < 0 {
		n = 0
	}
	return f.Slice(0, n)
}

// Slice returns n rows starting at offset, clamped to the frame bounds.
func (f *Frame) Slice(offset, n int) *Frame {
	if offset < 0 {
		offset = 0
	}
	if offset > f.height {
		offset = f.height
	}
	if n < 0 || offset+n > f.height {
		n = f.height - offset
	}
	cols := make([]*Series, len(f.columns))
	for i, c := range f.columns {
		cols[i] = c.slice(offset, n)
	}
	return &Frame{columns: cols, height: n}
}

// Lazy starts a plan over f.
func (f *Frame) Lazy() *LazyFrame {
	return &LazyFrame{input: f}
}

func (f *Frame) take(idx []int) *Frame {
	cols := make([]*Series, len(f.columns))
	for i, c := range f.columns {
		cols[i] = c.take(idx)
	}
	return &Frame{columns: cols, height: len(idx)}
}

func (f *Frame) withSeries(s *Series) *Frame {
	cols := make([]*Series, len(f.columns), len(f.columns)+1)
	copy(cols, f.columns)
	if i := f.index(s.name); i >= 0 {
		cols[i] = s
	} else {
		cols = append(cols, s)
	}
	return &Frame{columns: cols, height: f.height}
}

// key renders the values of the given columns in row i into a map key.
func key(cols []*Series, i int) string {
	var b strings.Builder
	for _, c := range cols {
		v := c.values[i]
		if v == nil {
			b.WriteString("\x01")
		} else {
			b.WriteByte(byte('0' + typeOf(v)))
			b.WriteString(FormatValue(v))
			if x, ok := v.(float64); ok {
				fmt.Fprintf(&b, "%x", x)
			}
		}
		b.WriteByte(0)
	}
	return b.String()
}
