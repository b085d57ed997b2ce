package engine

import (
	"slices"

	"github.com/grafana/regexp"

	"github.com/vegasq/filterx/frame"
)

// SourceType identifies the input format behind a Source.
type SourceType int

const (
	SourceCSV SourceType = iota
	SourceFasta
	SourceFastq
	SourceSAM
	SourceVCF
	SourceGXF
	SourceParquet
)

func (t SourceType) String() string {
	switch t {
	case SourceCSV:
		return "csv"
	case SourceFasta:
		return "fasta"
	case SourceFastq:
		return "fastq"
	case SourceSAM:
		return "sam"
	case SourceVCF:
		return "vcf"
	case SourceGXF:
		return "gxf"
	case SourceParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// IsStream reports whether records of this type are evaluated chunk by
// chunk rather than as one table.
func (t SourceType) IsStream() bool { return t == SourceFasta || t == SourceFastq }

// Source wraps a Plan with the column bookkeeping the evaluator needs.
// Its column list always equals the names the plan would produce.
type Source struct {
	plan             Plan
	typ              SourceType
	hasHeader        bool
	initColumns      []string
	columns          []string
	applyImmediately bool
}

// NewSource returns a Source whose filters are applied immediately.
func NewSource(plan Plan, typ SourceType, columns []string, hasHeader bool) *Source {
	return &Source{
		plan:             plan,
		typ:              typ,
		hasHeader:        hasHeader,
		initColumns:      slices.Clone(columns),
		columns:          slices.Clone(columns),
		applyImmediately: true,
	}
}

// NewStreamSource returns an empty placeholder Source for a streaming
// input. Stream rebinds it to every chunk.
func NewStreamSource(typ SourceType, columns []string) *Source {
	cols := make([]*frame.Series, len(columns))
	for i, c := range columns {
		cols[i] = frame.NewSeries(c, frame.String, nil)
	}
	f, err := frame.New(cols...)
	if err != nil {
		f, _ = frame.New()
	}
	return NewSource(NewPlan(f), typ, columns, true)
}

func (s *Source) Type() SourceType { return s.typ }
func (s *Source) HasHeader() bool  { return s.hasHeader }
func (s *Source) Plan() Plan       { return s.plan }

// Columns returns the current column names.
func (s *Source) Columns() []string { return slices.Clone(s.columns) }

// InitialColumns returns the column names the source was created with.
func (s *Source) InitialColumns() []string { return slices.Clone(s.initColumns) }

// Schema executes the plan on its first row and reports the result types.
func (s *Source) Schema() ([]frame.Field, error) {
	f, err := s.plan.Fetch(1)
	if err != nil {
		return nil, runtimeErr(err)
	}
	return f.Schema(), nil
}

// ColumnType returns the type a current column would have, or frame.Null
// when the plan produces no rows.
func (s *Source) ColumnType(name string) (frame.DataType, error) {
	schema, err := s.Schema()
	if err != nil {
		return frame.Null, err
	}
	for _, f := range schema {
		if f.Name == name {
			return f.Type, nil
		}
	}
	return frame.Null, unknownColumnErr(name, s.columns)
}

// HasColumn reports whether name is a current column.
func (s *Source) HasColumn(name string) bool { return slices.Contains(s.columns, name) }

// ResolveColumn maps name to a current column. Names that do not match
// exactly are tried as an anchored regular expression that must select
// exactly one column.
func (s *Source) ResolveColumn(name string) (string, error) {
	if s.HasColumn(name) {
		return name, nil
	}
	re, err := regexp.Compile("^(?:" + name + ")$")
	if err == nil {
		var match string
		n := 0
		for _, c := range s.columns {
			if re.MatchString(c) {
				match = c
				n++
			}
		}
		if n == 1 {
			return match, nil
		}
	}
	return "", unknownColumnErr(name, s.columns)
}

// CheckColumns resolves every name, failing on the first unknown one.
func (s *Source) CheckColumns(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		c, err := s.ResolveColumn(n)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// IndexToColumn maps a 0-based column index to its name.
func (s *Source) IndexToColumn(i int) (string, error) {
	if i < 0 || i >= len(s.columns) {
		return "", typeErr("column index %d out of range, source has %d columns", i, len(s.columns))
	}
	return s.columns[i], nil
}

// ApplyImmediately reports whether Filter changes the plan.
func (s *Source) ApplyImmediately() bool { return s.applyImmediately }

// SetApplyImmediately toggles filter application and returns the previous
// setting.
func (s *Source) SetApplyImmediately(v bool) bool {
	prev := s.applyImmediately
	s.applyImmediately = v
	return prev
}

// Filter adds pred to the plan, unless filters are currently deferred.
func (s *Source) Filter(pred frame.Expr) {
	if !s.applyImmediately {
		return
	}
	s.plan = s.plan.Filter(pred)
}

// WithColumn adds or replaces the column named by expr. newName must be
// set when the column did not exist before.
func (s *Source) WithColumn(expr frame.Expr, newName string) {
	s.plan = s.plan.WithColumns(expr)
	if newName != "" && !s.HasColumn(newName) {
		s.columns = append(s.columns, newName)
	}
}

// Select keeps exactly the named columns, in order.
func (s *Source) Select(names []string) error {
	cols, err := s.CheckColumns(names)
	if err != nil {
		return err
	}
	exprs := make([]frame.Expr, len(cols))
	for i, c := range cols {
		exprs[i] = frame.Col(c)
	}
	s.plan = s.plan.Select(exprs...)
	s.columns = cols
	return nil
}

// Drop removes the named columns.
func (s *Source) Drop(names []string) error {
	cols, err := s.CheckColumns(names)
	if err != nil {
		return err
	}
	s.plan = s.plan.Drop(cols...)
	s.columns = slices.DeleteFunc(s.columns, func(c string) bool { return slices.Contains(cols, c) })
	return nil
}

// Rename renames one column. The new name must not already exist.
func (s *Source) Rename(from, to string) error {
	col, err := s.ResolveColumn(from)
	if err != nil {
		return err
	}
	if s.HasColumn(to) {
		return typeErr("cannot rename %q to %q: column already exists", col, to)
	}
	s.plan = s.plan.Rename([]string{col}, []string{to})
	s.columns[slices.Index(s.columns, col)] = to
	return nil
}

func (s *Source) Sort(names []string, descending bool) error {
	cols, err := s.CheckColumns(names)
	if err != nil {
		return err
	}
	s.plan = s.plan.Sort(cols, frame.SortOptions{Descending: descending})
	return nil
}

func (s *Source) Unique(names []string, keep frame.KeepStrategy) error {
	cols, err := s.CheckColumns(names)
	if err != nil {
		return err
	}
	s.plan = s.plan.Unique(cols, keep)
	return nil
}

func (s *Source) Slice(offset int64, n int) { s.plan = s.plan.Slice(offset, n) }
func (s *Source) Tail(n int)                { s.plan = s.plan.Tail(n) }

// setPlan replaces the plan without touching the column list; the new plan
// must produce the same columns.
func (s *Source) setPlan(p Plan) { s.plan = p }

// Collect executes the plan.
func (s *Source) Collect() (*frame.Frame, error) {
	f, err := s.plan.Collect()
	if err != nil {
		return nil, runtimeErr(err)
	}
	return f, nil
}

// Finish executes the plan and rebinds the source to the materialised
// result.
func (s *Source) Finish() (*frame.Frame, error) {
	f, err := s.Collect()
	if err != nil {
		return nil, err
	}
	s.plan = NewPlan(f)
	s.columns = f.Names()
	return f, nil
}
