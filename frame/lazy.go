package frame

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// KeepStrategy selects which row survives Unique.
type KeepStrategy int

const (
	KeepFirst KeepStrategy = iota
	KeepLast
	KeepNone
	KeepAny
)

func (k KeepStrategy) String() string {
	switch k {
	case KeepFirst:
		return "first"
	case KeepLast:
		return "last"
	case KeepNone:
		return "none"
	default:
		return "any"
	}
}

// SortOptions controls Sort. Nulls always sort last.
type SortOptions struct {
	Descending bool
}

type operation interface {
	apply(f *Frame) (*Frame, error)
	String() string
}

// LazyFrame is an immutable query plan over an input frame.
type LazyFrame struct {
	input *Frame
	ops   []operation
}

func (lf *LazyFrame) with(op operation) *LazyFrame {
	ops := make([]operation, len(lf.ops), len(lf.ops)+1)
	copy(ops, lf.ops)
	return &LazyFrame{input: lf.input, ops: append(ops, op)}
}

// Filter keeps rows for which pred is true. Null counts as false.
func (lf *LazyFrame) Filter(pred Expr) *LazyFrame { return lf.with(filterOp{pred: pred}) }

// Select replaces the columns with the outputs of exprs.
func (lf *LazyFrame) Select(exprs ...Expr) *LazyFrame { return lf.with(selectOp{exprs: exprs}) }

// WithColumns adds or replaces columns. All exprs see the same input.
func (lf *LazyFrame) WithColumns(exprs ...Expr) *LazyFrame {
	return lf.with(withColumnsOp{exprs: exprs})
}

// Drop removes columns.
func (lf *LazyFrame) Drop(names ...string) *LazyFrame { return lf.with(dropOp{names: names}) }

// Rename renames old[i] to new[i].
func (lf *LazyFrame) Rename(old, new []string) *LazyFrame {
	return lf.with(renameOp{old: old, new: new})
}

// Sort orders rows by the given columns. Equal keys keep their input order.
func (lf *LazyFrame) Sort(by []string, opts SortOptions) *LazyFrame {
	return lf.with(sortOp{by: by, opts: opts})
}

// Unique removes duplicate rows by subset, preserving input order.
func (lf *LazyFrame) Unique(subset []string, keep KeepStrategy) *LazyFrame {
	return lf.with(uniqueOp{subset: subset, keep: keep})
}

// Slice keeps n rows from offset. A negative offset counts from the end.
func (lf *LazyFrame) Slice(offset int64, n int) *LazyFrame {
	return lf.with(sliceOp{offset: offset, n: n})
}

// Tail keeps the last n rows.
func (lf *LazyFrame) Tail(n int) *LazyFrame { return lf.with(tailOp{n: n}) }

// GroupByCount groups by keys in first-appearance order and adds a count
// column named countName. The output holds only the keys and the count.
func (lf *LazyFrame) GroupByCount(keys []string, countName string) *LazyFrame {
	return lf.with(groupCountOp{keys: keys, countName: countName})
}

// SemiJoin keeps rows whose key columns match some row of right.
func (lf *LazyFrame) SemiJoin(right *LazyFrame, on []string) *LazyFrame {
	return lf.with(semiJoinOp{right: right, on: on})
}

// Collect executes the plan.
func (lf *LazyFrame) Collect() (*Frame, error) {
	return lf.run(lf.input)
}

// Fetch executes the plan over the first n input rows only.
func (lf *LazyFrame) Fetch(n int) (*Frame, error) {
	return lf.run(lf.input.Head(n))
}

// Describe renders the plan, one operation per line.
func (lf *LazyFrame) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SCAN [%s]", strings.Join(lf.input.Names(), ", "))
	for _, op := range lf.ops {
		b.WriteString("\n  ")
		b.WriteString(op.String())
	}
	return b.String()
}

func (lf *LazyFrame) run(f *Frame) (*Frame, error) {
	var err error
	for _, op := range lf.ops {
		if f, err = op.apply(f); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return f, nil
}

type filterOp struct{ pred Expr }

func (op filterOp) String() string { return "FILTER " + op.pred.String() }
func (op filterOp) apply(f *Frame) (*Frame, error) {
	mask, err := op.pred.Evaluate(f)
	if err != nil {
		return nil, err
	}
	if mask.dtype != Bool && mask.dtype != Null {
		return nil, fmt.Errorf("filter predicate must be boolean, got %s", mask.dtype)
	}
	idx := make([]int, 0, f.height)
	for i := 0; i < f.height; i++ {
		if b, _ := at(mask, i).(bool); b {
			idx = append(idx, i)
		}
	}
	return f.take(idx), nil
}

type selectOp struct{ exprs []Expr }

func (op selectOp) String() string { return "SELECT " + joinExprs(op.exprs) }
func (op selectOp) apply(f *Frame) (*Frame, error) {
	cols := make([]*Series, len(op.exprs))
	for i, e := range op.exprs {
		s, err := e.Evaluate(f)
		if err != nil {
			return nil, err
		}
		cols[i] = s
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.height = f.height
	}
	return out, nil
}

type withColumnsOp struct{ exprs []Expr }

func (op withColumnsOp) String() string { return "WITH_COLUMNS " + joinExprs(op.exprs) }
func (op withColumnsOp) apply(f *Frame) (*Frame, error) {
	out := f
	for _, e := range op.exprs {
		s, err := e.Evaluate(f)
		if err != nil {
			return nil, err
		}
		if s.Len() != f.height {
			return nil, fmt.Errorf("column %q has length %d, expected %d", s.name, s.Len(), f.height)
		}
		out = out.withSeries(s)
	}
	return out, nil
}

type dropOp struct{ names []string }

func (op dropOp) String() string { return "DROP " + strings.Join(op.names, ", ") }
func (op dropOp) apply(f *Frame) (*Frame, error) {
	for _, n := range op.names {
		if _, err := f.Column(n); err != nil {
			return nil, err
		}
	}
	cols := make([]*Series, 0, len(f.columns))
	for _, c := range f.columns {
		if !slices.Contains(op.names, c.name) {
			cols = append(cols, c)
		}
	}
	return &Frame{columns: cols, height: f.height}, nil
}

type renameOp struct{ old, new []string }

func (op renameOp) String() string {
	return fmt.Sprintf("RENAME %v -> %v", op.old, op.new)
}
func (op renameOp) apply(f *Frame) (*Frame, error) {
	cols := slices.Clone(f.columns)
	for i, o := range op.old {
		j := f.index(o)
		if j < 0 {
			_, err := f.Column(o)
			return nil, err
		}
		cols[j] = cols[j].Rename(op.new[i])
	}
	return New(cols...)
}

type sortOp struct {
	by   []string
	opts SortOptions
}

func (op sortOp) String() string {
	return fmt.Sprintf("SORT BY [%s] descending=%t", strings.Join(op.by, ", "), op.opts.Descending)
}
func (op sortOp) apply(f *Frame) (*Frame, error) {
	keys := make([]*Series, len(op.by))
	for i, name := range op.by {
		s, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		keys[i] = s
	}
	idx := make([]int, f.height)
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		for _, k := range keys {
			x, y := k.values[idx[a]], k.values[idx[b]]
			switch {
			case x == nil && y == nil:
				continue
			case x == nil:
				return false
			case y == nil:
				return true
			}
			c, err := compareValues(x, y)
			if err != nil {
				sortErr = err
				return false
			}
			if c != 0 {
				if op.opts.Descending {
					return c > 0
				}
				return c < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return f.take(idx), nil
}

type uniqueOp struct {
	subset []string
	keep   KeepStrategy
}

func (op uniqueOp) String() string {
	return fmt.Sprintf("UNIQUE [%s] keep=%s", strings.Join(op.subset, ", "), op.keep)
}
func (op uniqueOp) apply(f *Frame) (*Frame, error) {
	keys, err := columns(f, op.subset)
	if err != nil {
		return nil, err
	}
	first := make(map[string]int)
	last := make(map[string]int)
	count := make(map[string]int)
	rowKeys := make([]string, f.height)
	for i := 0; i < f.height; i++ {
		k := key(keys, i)
		rowKeys[i] = k
		if _, ok := first[k]; !ok {
			first[k] = i
		}
		last[k] = i
		count[k]++
	}
	idx := make([]int, 0, len(first))
	for i, k := range rowKeys {
		var keepRow bool
		switch op.keep {
		case KeepFirst, KeepAny:
			keepRow = first[k] == i
		case KeepLast:
			keepRow = last[k] == i
		case KeepNone:
			keepRow = count[k] == 1
		}
		if keepRow {
			idx = append(idx, i)
		}
	}
	return f.take(idx), nil
}

type sliceOp struct {
	offset int64
	n      int
}

func (op sliceOp) String() string { return fmt.Sprintf("SLICE offset=%d len=%d", op.offset, op.n) }
func (op sliceOp) apply(f *Frame) (*Frame, error) {
	offset := op.offset
	if offset < 0 {
		offset += int64(f.height)
	}
	if offset < 0 {
		offset = 0
	}
	if offset > int64(f.height) {
		offset = int64(f.height)
	}
	return f.Slice(int(offset), op.n), nil
}

type tailOp struct{ n int }

func (op tailOp) String() string { return fmt.Sprintf("TAIL %d", op.n) }
func (op tailOp) apply(f *Frame) (*Frame, error) {
	if op.n >= f.height {
		return f, nil
	}
	return f.Slice(f.height-op.n, op.n), nil
}

type groupCountOp struct {
	keys      []string
	countName string
}

func (op groupCountOp) String() string {
	return fmt.Sprintf("GROUP BY [%s] AGG count() AS %s", strings.Join(op.keys, ", "), op.countName)
}
func (op groupCountOp) apply(f *Frame) (*Frame, error) {
	keys, err := columns(f, op.keys)
	if err != nil {
		return nil, err
	}
	groups := make(map[string]int)
	var firstRows []int
	var counts []any
	for i := 0; i < f.height; i++ {
		k := key(keys, i)
		g, ok := groups[k]
		if !ok {
			g = len(firstRows)
			groups[k] = g
			firstRows = append(firstRows, i)
			counts = append(counts, int64(0))
		}
		counts[g] = counts[g].(int64) + 1
	}
	cols := make([]*Series, 0, len(keys)+1)
	for _, k := range keys {
		cols = append(cols, k.take(firstRows))
	}
	cols = append(cols, &Series{name: op.countName, dtype: Int, values: counts})
	return New(cols...)
}

type semiJoinOp struct {
	right *LazyFrame
	on    []string
}

func (op semiJoinOp) String() string {
	return fmt.Sprintf("SEMI JOIN ON [%s] (\n%s)", strings.Join(op.on, ", "), op.right.Describe())
}
func (op semiJoinOp) apply(f *Frame) (*Frame, error) {
	right, err := op.right.Collect()
	if err != nil {
		return nil, err
	}
	rkeys, err := columns(right, op.on)
	if err != nil {
		return nil, err
	}
	lkeys, err := columns(f, op.on)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, right.height)
	for i := 0; i < right.height; i++ {
		set[key(rkeys, i)] = struct{}{}
	}
	idx := make([]int, 0, f.height)
	for i := 0; i < f.height; i++ {
		if _, ok := set[key(lkeys, i)]; ok {
			idx = append(idx, i)
		}
	}
	return f.take(idx), nil
}

func columns(f *Frame, names []string) ([]*Series, error) {
	out := make([]*Series, len(names))
	for i, n := range names {
		s, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
