package reader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vegasq/filterx/frame"
)

// CSVOptions configure the delimited text loader.
type CSVOptions struct {
	// Separator splits fields. Empty means detect it from the first lines.
	Separator string
	// Comment marks lines that are not data. Empty disables comments.
	Comment string
	Header  bool
	// Skip drops leading lines before the header.
	Skip int
	// Limit caps the number of data rows read; 0 reads everything.
	Limit int
	// Nulls are field values read as null in addition to the empty field.
	Nulls []string
	// Columns fixes the column names. A header line, if any, is ignored.
	Columns []string
	// Types fixes the type of the named columns instead of inferring it.
	Types map[string]frame.DataType
	// NoQuote reads '"' as an ordinary character. Otherwise a field may be
	// quoted so that it can hold the separator.
	NoQuote bool
}

func (o CSVOptions) Validate() error {
	if o.Skip < 0 {
		return fmt.Errorf("skip must not be negative, got %d", o.Skip)
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", o.Limit)
	}
	if strings.ContainsAny(o.Separator, "\r\n") {
		return errors.New("separator must not contain a line break")
	}
	return nil
}

// ParseSeparator maps the command line spelling of a separator to the
// separator itself. "" and "auto" request detection.
func ParseSeparator(s string) (string, error) {
	switch s {
	case "", "auto":
		return "", nil
	case `\t`, "t", "tab":
		return "\t", nil
	case "space":
		return " ", nil
	case `\n`, "\n":
		return "", fmt.Errorf("invalid separator %q", s)
	}
	return s, nil
}

// Table is a loaded delimited file.
type Table struct {
	Frame     *frame.Frame
	Separator string
	// HasHeader is set when columns are named by a header line or by a
	// fixed schema rather than numbered column_1..column_n.
	HasHeader bool
	// Comments holds the comment lines in input order, without line breaks.
	Comments []string
}

const detectLines = 20

var separatorCandidates = []string{"\t", "|", ":", " ", ","}

// LoadCSV reads delimited text. Column types are inferred as Int, then
// Float, else String unless fixed by opts.Types.
func LoadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	s, err := scan(r, opts)
	if err != nil {
		return nil, err
	}
	var names []string
	if opts.Header && len(s.lines) > 0 {
		fields, err := splitFields(s.lines[0], s.sep, !opts.NoQuote)
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		names = dedupe(fields)
		s.lines = s.lines[1:]
	}
	if opts.Columns != nil {
		names = opts.Columns
	}
	if names == nil {
		n := 0
		if len(s.lines) > 0 {
			fields, err := splitFields(s.lines[0], s.sep, !opts.NoQuote)
			if err != nil {
				return nil, fmt.Errorf("row 1: %w", err)
			}
			n = len(fields)
		}
		names = DefaultColumnNames(n)
	}
	return s.table(names, opts)
}

// DefaultColumnNames returns column_1 ... column_n.
func DefaultColumnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "column_" + strconv.Itoa(i+1)
	}
	return names
}

// scanned is delimited input split into data lines and comments.
type scanned struct {
	lines    []string
	comments []string
	sep      string
}

func scan(r io.Reader, opts CSVOptions) (*scanned, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	want := -1
	if opts.Limit > 0 {
		want = opts.Limit
		if opts.Header {
			want++
		}
	}

	s := &scanned{}
	br := bufio.NewReaderSize(r, readBufferSize)
	for n := 0; want < 0 || len(s.lines) < want; n++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read line %d: %w", n+1, err)
		}
		if line == "" && err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case n < opts.Skip, line == "":
		case opts.Comment != "" && strings.HasPrefix(line, opts.Comment):
			s.comments = append(s.comments, line)
		default:
			s.lines = append(s.lines, line)
		}
		if err != nil {
			break
		}
	}

	s.sep = opts.Separator
	if s.sep == "" {
		s.sep = detectSeparator(s.lines, !opts.NoQuote)
	}
	return s, nil
}

// detectSeparator returns the first candidate that splits every sampled
// line into the same number of fields, falling back to a comma.
func detectSeparator(lines []string, quoted bool) string {
	sample := lines[:min(len(lines), detectLines+1)]
	if len(sample) == 0 {
		return ","
	}
	count := func(line, sep string) int {
		fields, err := splitFields(line, sep, quoted)
		if err != nil {
			return -1
		}
		return len(fields) - 1
	}
	for _, sep := range separatorCandidates {
		n := count(sample[0], sep)
		if n <= 0 {
			continue
		}
		consistent := true
		for _, line := range sample[1:] {
			if count(line, sep) != n {
				consistent = false
				break
			}
		}
		if consistent {
			return sep
		}
	}
	return ","
}

func (s *scanned) table(names []string, opts CSVOptions) (*Table, error) {
	lines := s.lines
	if opts.Limit > 0 && len(lines) > opts.Limit {
		lines = lines[:opts.Limit]
	}

	raw := make([][]any, len(names))
	for j := range raw {
		raw[j] = make([]any, len(lines))
	}
	quoted := !opts.NoQuote
	for i, line := range lines {
		fields, err := splitFields(line, s.sep, quoted)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		for j := range names {
			if j < len(fields) && fields[j] != "" && !slices.Contains(opts.Nulls, fields[j]) {
				raw[j][i] = fields[j]
			}
		}
	}

	series := make([]*frame.Series, len(names))
	for j, name := range names {
		dt, fixed := opts.Types[name]
		if !fixed {
			dt = inferType(raw[j])
		}
		if err := parseColumn(raw[j], dt); err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		series[j] = frame.NewSeries(name, dt, raw[j])
	}
	f, err := frame.New(series...)
	if err != nil {
		return nil, err
	}
	return &Table{
		Frame:     f,
		Separator: s.sep,
		HasHeader: opts.Header || opts.Columns != nil,
		Comments:  s.comments,
	}, nil
}

// splitFields splits one line on sep. With quoted set and a single
// character separator, fields follow RFC 4180 quoting; a stray quote
// inside an unquoted field is kept as is.
func splitFields(line, sep string, quoted bool) ([]string, error) {
	if !quoted || !strings.Contains(line, `"`) {
		return strings.Split(line, sep), nil
	}
	comma, size := utf8.DecodeRuneInString(sep)
	if size != len(sep) || comma == '"' || comma == utf8.RuneError {
		return strings.Split(line, sep), nil
	}
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.Read()
}

func inferType(values []any) frame.DataType {
	isInt, isFloat, seen := true, true, false
	for _, v := range values {
		if v == nil {
			continue
		}
		seen = true
		s := v.(string)
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if !isInt {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
				break
			}
		}
	}
	switch {
	case !seen:
		return frame.String
	case isInt:
		return frame.Int
	case isFloat:
		return frame.Float
	}
	return frame.String
}

// parseColumn converts raw string fields to dt in place.
func parseColumn(values []any, dt frame.DataType) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		s := v.(string)
		switch dt {
		case frame.Int:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("row %d: cannot parse %q as an integer", i+1, s)
			}
			values[i] = n
		case frame.Float:
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("row %d: cannot parse %q as a float", i+1, s)
			}
			values[i] = x
		case frame.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("row %d: cannot parse %q as a boolean", i+1, s)
			}
			values[i] = b
		}
	}
	return nil
}

// dedupe suffixes repeated header names so every column name is unique.
func dedupe(names []string) []string {
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			n = "column_" + strconv.Itoa(i+1)
		}
		if k, ok := seen[n]; ok {
			seen[n] = k + 1
			n = fmt.Sprintf("%s_duplicated_%d", n, k)
		} else {
			seen[n] = 0
		}
		names[i] = n
	}
	return names
}
