package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFrame(t *testing.T, names []string, rows [][]any) *Frame {
	t.Helper()
	f, err := FromRows(names, rows)
	require.NoError(t, err)
	return f
}

func column(t *testing.T, f *Frame, name string) []any {
	t.Helper()
	s, err := f.Column(name)
	require.NoError(t, err)
	return s.Values()
}

func TestNewRejectsInvalidFrames(t *testing.T) {
	_, err := New(NewSeries("a", Int, []any{1}), NewSeries("a", Int, []any{2}))
	assert.ErrorContains(t, err, "duplicate column")

	_, err = New(NewSeries("a", Int, []any{1, 2}), NewSeries("b", Int, []any{1}))
	assert.ErrorContains(t, err, "length")
}

func TestFromRowsInfersTypes(t *testing.T) {
	f := mustFrame(t, []string{"i", "f", "s", "mixed", "empty"}, [][]any{
		{1, 1.5, "a", 1, nil},
		{2, 2, "b", "x", nil},
	})

	want := map[string]DataType{"i": Int, "f": Float, "s": String, "mixed": String, "empty": Null}
	for _, field := range f.Schema() {
		assert.Equal(t, want[field.Name], field.Type, field.Name)
	}
	assert.Equal(t, []any{1.5, 2.0}, column(t, f, "f"))
	assert.Equal(t, []any{"1", "x"}, column(t, f, "mixed"))
	assert.Equal(t, []string{"i", "f", "s", "mixed", "empty"}, f.Names())
}

func TestArithmetic(t *testing.T) {
	f := mustFrame(t, []string{"x", "y", "fl", "s"}, [][]any{
		{7, 2, 0.5, "a"},
		{-7, 0, 1.5, "b"},
		{4, nil, 2.0, "c"},
	})

	tests := []struct {
		name  string
		expr  Expr
		dtype DataType
		want  []any
	}{
		{"int division truncates", Div(Col("x"), Col("y")), Int, []any{int64(3), nil, nil}},
		{"modulo by zero is null", Binary(OpMod, Col("x"), Col("y")), Int, []any{int64(1), nil, nil}},
		{"mixed promotes to float", Add(Col("x"), Col("fl")), Float, []any{7.5, -5.5, 6.0}},
		{"literal broadcast", Mul(Col("x"), Lit(2)), Int, []any{int64(14), int64(-14), int64(8)}},
		{"string concatenation", Add(Col("s"), Lit("!")), String, []any{"a!", "b!", "c!"}},
		{"negation", Neg(Col("x")), Int, []any{int64(-7), int64(7), int64(-4)}},
		{"abs", Abs(Col("x")), Int, []any{int64(7), int64(7), int64(4)}},
		{"comparison", Gt(Col("x"), Col("y")), Bool, []any{true, false, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.Lazy().Select(Alias(tt.expr, "r")).Collect()
			require.NoError(t, err)
			s, err := out.Column("r")
			require.NoError(t, err)
			assert.Equal(t, tt.dtype, s.Type())
			assert.Equal(t, tt.want, s.Values())
		})
	}

	_, err := f.Lazy().Select(Add(Col("s"), Col("x"))).Collect()
	assert.ErrorContains(t, err, "cannot apply")
	_, err = f.Lazy().Filter(Gt(Col("s"), Col("x"))).Collect()
	assert.ErrorContains(t, err, "cannot compare")
}

func TestFilterKeepsOnlyTrueRows(t *testing.T) {
	f := mustFrame(t, []string{"id", "v"}, [][]any{{1, 5}, {2, nil}, {3, -1}, {4, 8}})
	out, err := f.Lazy().Filter(Gt(Col("v"), Lit(0))).Collect()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(4)}, column(t, out, "id"))

	_, err = f.Lazy().Filter(Col("v")).Collect()
	assert.ErrorContains(t, err, "must be boolean")
}

func TestSort(t *testing.T) {
	f := mustFrame(t, []string{"id", "g", "v"}, [][]any{
		{1, "b", 2},
		{2, "a", nil},
		{3, "b", 1},
		{4, "a", 2},
		{5, "a", 2},
	})

	tests := []struct {
		name string
		by   []string
		desc bool
		want []any
	}{
		{"ascending, nulls last, stable", []string{"v"}, false, []any{int64(3), int64(1), int64(4), int64(5), int64(2)}},
		{"descending, nulls last, stable", []string{"v"}, true, []any{int64(1), int64(4), int64(5), int64(3), int64(2)}},
		{"multi-key", []string{"g", "v"}, false, []any{int64(4), int64(5), int64(2), int64(3), int64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.Lazy().Sort(tt.by, SortOptions{Descending: tt.desc}).Collect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, out, "id"))
		})
	}
}

func TestUnique(t *testing.T) {
	f := mustFrame(t, []string{"id", "k"}, [][]any{{1, "a"}, {2, "b"}, {3, "a"}, {4, "c"}, {5, "b"}})

	tests := []struct {
		keep KeepStrategy
		want []any
	}{
		{KeepFirst, []any{int64(1), int64(2), int64(4)}},
		{KeepLast, []any{int64(3), int64(4), int64(5)}},
		{KeepNone, []any{int64(4)}},
		{KeepAny, []any{int64(1), int64(2), int64(4)}},
	}
	for _, tt := range tests {
		t.Run(tt.keep.String(), func(t *testing.T) {
			out, err := f.Lazy().Unique([]string{"k"}, tt.keep).Collect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, out, "id"))
		})
	}
}

func TestSliceAndTail(t *testing.T) {
	f := mustFrame(t, []string{"id"}, [][]any{{1}, {2}, {3}, {4}, {5}})

	tests := []struct {
		name string
		lf   *LazyFrame
		want []any
	}{
		{"window", f.Lazy().Slice(1, 2), []any{int64(2), int64(3)}},
		{"negative offset counts from the end", f.Lazy().Slice(-2, 5), []any{int64(4), int64(5)}},
		{"offset past the end", f.Lazy().Slice(10, 2), []any{}},
		{"tail", f.Lazy().Tail(2), []any{int64(4), int64(5)}},
		{"tail longer than frame", f.Lazy().Tail(10), []any{int64(1), int64(2), int64(3), int64(4), int64(5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.lf.Collect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, out, "id"))
		})
	}
}

func TestGroupByCountAndSemiJoin(t *testing.T) {
	f := mustFrame(t, []string{"id", "k"}, [][]any{{1, "a"}, {2, "b"}, {3, "a"}, {4, "c"}, {5, "a"}})

	counts, err := f.Lazy().GroupByCount([]string{"k"}, "count").Collect()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, column(t, counts, "k"))
	assert.Equal(t, []any{int64(3), int64(1), int64(1)}, column(t, counts, "count"))

	frequent := f.Lazy().
		GroupByCount([]string{"k"}, "count").
		Filter(GtEq(Col("count"), Lit(2))).
		Select(Col("k"))
	out, err := f.Lazy().SemiJoin(frequent, []string{"k"}).Collect()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(3), int64(5)}, column(t, out, "id"))
	assert.Equal(t, []string{"id", "k"}, out.Names())
}

func TestColumnOperations(t *testing.T) {
	f := mustFrame(t, []string{"a", "b", "c"}, [][]any{{1, "x", true}})

	out, err := f.Lazy().Drop("b").Rename([]string{"c"}, []string{"flag"}).WithColumns(Alias(Lit(9), "d")).Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "flag", "d"}, out.Names())

	_, err = f.Lazy().Drop("missing").Collect()
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, err = f.Lazy().Rename([]string{"missing"}, []string{"x"}).Collect()
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, err = f.Lazy().Select(Col("missing")).Collect()
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestPlanIsImmutable(t *testing.T) {
	f := mustFrame(t, []string{"v"}, [][]any{{1}, {2}, {3}})
	base := f.Lazy().Filter(Gt(Col("v"), Lit(1)))
	narrowed := base.Filter(Lt(Col("v"), Lit(3)))

	a, err := base.Collect()
	require.NoError(t, err)
	b, err := narrowed.Collect()
	require.NoError(t, err)
	assert.Equal(t, 2, a.Height())
	assert.Equal(t, 1, b.Height())
	assert.Contains(t, narrowed.Describe(), "FILTER")
}

func TestFetchRunsOverLeadingRows(t *testing.T) {
	f := mustFrame(t, []string{"v"}, [][]any{{5}, {1}, {7}})
	out, err := f.Lazy().Filter(Gt(Col("v"), Lit(2))).Fetch(2)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(5)}, column(t, out, "v"))
}

func TestCast(t *testing.T) {
	f := mustFrame(t, []string{"s", "n", "fl"}, [][]any{
		{"1", 1, 1.9},
		{"x", 300, math.NaN()},
		{"2.5", -1, nil},
	})

	tests := []struct {
		name string
		expr Expr
		want []any
	}{
		{"string to int", Cast(Col("s"), Int), []any{int64(1), nil, int64(2)}},
		{"float to int truncates", Cast(Col("fl"), Int), []any{int64(1), nil, nil}},
		{"range", CastRange(Col("n"), 0, 255), []any{int64(1), nil, nil}},
		{"int to string", Cast(Col("n"), String), []any{"1", "300", "-1"}},
		{"int to float", Cast(Col("n"), Float), []any{1.0, 300.0, -1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.Lazy().Select(Alias(tt.expr, "r")).Collect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, out, "r"))
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{int64(-3), "-3"},
		{1.5, "1.500"},
		{math.NaN(), "NaN"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
