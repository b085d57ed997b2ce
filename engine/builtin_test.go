package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/filterx/bio"
)

func TestOcc(t *testing.T) {
	rows := [][]any{{"A", int64(1)}, {"A", int64(2)}, {"B", int64(3)}}
	tests := []struct {
		expr string
		want []any
	}{
		{"occ(k, 2)", []any{int64(1), int64(2)}},
		{"occ_gte(k, 2)", []any{int64(1), int64(2)}},
		{"occ_lte(k, 1)", []any{int64(3)}},
		{"occ(k, 3)", []any{}},
		{"occ(k, v, 1)", []any{int64(1), int64(2), int64(3)}},
		{"v > 1; occ(k, 2)", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			vm, _ := newTestVM(t, SourceCSV, []string{"k", "v"}, rows)
			require.NoError(t, vm.Eval(tt.expr))
			assert.Equal(t, []string{"k", "v"}, vm.Source().Columns())
			f := collect(t, vm)
			assert.Equal(t, []string{"k", "v"}, f.Names())
			assert.ElementsMatch(t, tt.want, columnValues(t, f, "v"))
		})
	}
}

func TestOccCountColumnDoesNotClash(t *testing.T) {
	rows := [][]any{{"A", int64(1)}, {"A", int64(2)}, {"B", int64(3)}}
	vm, _ := newTestVM(t, SourceCSV, []string{"k", "count"}, rows)
	require.NoError(t, vm.Eval("occ(k, 2)"))
	assert.Equal(t, []any{int64(1), int64(2)}, columnValues(t, collect(t, vm), "count"))
}

func TestOccErrors(t *testing.T) {
	tests := []struct {
		expr string
		kind error
	}{
		{"occ(k)", ErrArity},
		{"occ(k, 0)", ErrType},
		{"occ(k, k, 2)", ErrType},
		{"occ(k, 'x')", ErrType},
		{"occ(nope, 2)", ErrUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			vm, _ := newTestVM(t, SourceCSV, []string{"k"}, [][]any{{"A"}})
			assert.ErrorIs(t, vm.Eval(tt.expr), tt.kind)
		})
	}
}

func TestDup(t *testing.T) {
	rows := [][]any{{"A", int64(1)}, {"B", int64(2)}, {"A", int64(3)}, {"C", int64(4)}}
	tests := []struct {
		expr string
		want []any
	}{
		{"dup(k)", []any{int64(1), int64(2), int64(4)}},
		{"dup_last(k)", []any{int64(2), int64(3), int64(4)}},
		{"dup_none(k)", []any{int64(2), int64(4)}},
		{"dup(k, v)", []any{int64(1), int64(2), int64(3), int64(4)}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			vm, _ := newTestVM(t, SourceCSV, []string{"k", "v"}, rows)
			require.NoError(t, vm.Eval(tt.expr))
			assert.Equal(t, tt.want, columnValues(t, collect(t, vm), "v"))
		})
	}

	vm, _ := newTestVM(t, SourceCSV, []string{"k", "v"}, rows)
	require.NoError(t, vm.Eval("dup_any(k)"))
	assert.Len(t, columnValues(t, collect(t, vm), "v"), 3)

	vm, _ = newTestVM(t, SourceCSV, []string{"k", "v"}, rows)
	assert.ErrorIs(t, vm.Eval("dup(k, k)"), ErrType)
}

func TestSort(t *testing.T) {
	rows := [][]any{{"b", int64(2)}, {"a", int64(2)}, {"c", int64(1)}}
	tests := []struct {
		expr string
		want []any
	}{
		{"sort(v)", []any{"c", "b", "a"}},
		{"Sort(v)", []any{"b", "a", "c"}},
		{"sorT(k)", []any{"a", "b", "c"}},
		{"sort(v, k)", []any{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			vm, _ := newTestVM(t, SourceCSV, []string{"k", "v"}, rows)
			require.NoError(t, vm.Eval(tt.expr))
			assert.Equal(t, tt.want, columnValues(t, collect(t, vm), "k"))
		})
	}
}

func TestInplaceMatchesFunctional(t *testing.T) {
	rows := [][]any{{"acGt", int64(-1)}, {"Tt", int64(2)}, {nil, nil}}
	tests := []struct {
		name       string
		functional string
		inplace    string
		column     string
	}{
		{"upper", "alias(s) = upper(s)", "upper_(s)", "s"},
		{"lower", "s = lower(s)", "lower_(s)", "s"},
		{"rev", "alias(s) = rev(s)", "rev_(s)", "s"},
		{"strip", "alias(s) = strip(s, 'at')", "strip_(s, 'at')", "s"},
		{"replace", "alias(s) = replace(s, 't', 'u')", "replace_(s, 't', 'u')", "s"},
		{"slice", "alias(s) = slice(s, 2, 2)", "slice_(s, 2, 2)", "s"},
		{"trim", "alias(s) = trim(s, 1, 1)", "trim_(s, 1, 1)", "s"},
		{"hpc", "alias(s) = hpc(s)", "hpc_(s)", "s"},
		{"abs", "alias(n) = abs(n)", "abs_(n)", "n"},
		{"fill", "alias(n) = fill(n, 0)", "fill_(n, 0)", "n"},
		{"cast", "alias(n) = cast_str(n)", "cast_str_(n)", "n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fvm, _ := newTestVM(t, SourceCSV, []string{"s", "n"}, rows)
			require.NoError(t, fvm.Eval(tt.functional))
			ivm, _ := newTestVM(t, SourceCSV, []string{"s", "n"}, rows)
			require.NoError(t, ivm.Eval(tt.inplace))

			assert.Equal(t, fvm.Source().Columns(), ivm.Source().Columns())
			assert.Equal(t,
				columnValues(t, collect(t, fvm), tt.column),
				columnValues(t, collect(t, ivm), tt.column))
		})
	}
}

func TestFunctionalDoesNotMutate(t *testing.T) {
	vm, filters := newCountingVM(t, []string{"s"}, [][]any{{"ab"}})
	stmts, err := vm.compile("upper(s)")
	require.NoError(t, err)
	v, err := vm.eval(exprOf(t, stmts[0]))
	require.NoError(t, err)

	ne, ok := v.(NamedExpr)
	require.True(t, ok, "got %T", v)
	assert.Equal(t, "s", ne.Name)
	assert.Equal(t, 0, *filters)
	assert.Equal(t, []any{"ab"}, columnValues(t, collect(t, vm), "s"))
}

func TestStringBuiltins(t *testing.T) {
	rows := [][]any{{"  ACGTAC  ", "chr1:100-200"}}
	tests := []struct {
		name string
		expr string
		want any
	}{
		{"strip", "alias(r) = strip(s, ' ')", "ACGTAC"},
		{"lstrip", "alias(r) = lstrip(s, ' A')", "CGTAC  "},
		{"rstrip", "alias(r) = rstrip(s, ' C')", "  ACGTA"},
		{"replace", "alias(r) = replace(s, 'AC', 'x')", "  xGTx  "},
		{"replace_one", "alias(r) = replace_one(s, 'AC', 'x')", "  xGTAC  "},
		{"slice prefix", "alias(r) = slice(s, 4)", "  AC"},
		{"slice range", "alias(r) = slice(s, 3, 3)", "ACG"},
		{"slice past end", "alias(r) = slice(s, 20, 3)", ""},
		{"trim", "alias(r) = trim(s, 2, 3)", "ACGTA"},
		{"trim everything", "alias(r) = trim(s, 5, 5)", ""},
		{"extract group", "alias(r) = extract(loc, ':([0-9]+)-')", "100"},
		{"extract miss", "alias(r) = extract(loc, 'chrX')", nil},
		{"len chars", "alias(r) = len(s)", int64(10)},
		{"rev", "alias(r) = rev(loc)", "002-001:1rhc"},
		{"width", "alias(r) = width(loc, 5)", "chr1:\n100-2\n00"},
		{"width zero", "alias(r) = width(loc, 0)", "chr1:100-200"},
		{"col by string", "alias(r) = col('loc')", "chr1:100-200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, _ := newTestVM(t, SourceCSV, []string{"s", "loc"}, rows)
			require.NoError(t, vm.Eval(tt.expr))
			assert.Equal(t, []any{tt.want}, columnValues(t, collect(t, vm), "r"))
		})
	}
}

func TestColumnBuiltins(t *testing.T) {
	rows := [][]any{{"1", 2.5, nil}, {"x", math.NaN(), int64(3)}, {"7", -1.0, int64(4)}}
	tests := []struct {
		name   string
		expr   string
		column string
		want   []any
	}{
		{"cast int", "alias(r) = cast_int(s)", "r", []any{int64(1), nil, int64(7)}},
		{"cast u8 range", "alias(r) = cast_u8(f)", "r", []any{int64(2), nil, nil}},
		{"cast float", "alias(r) = cast_f64(n)", "r", []any{nil, 3.0, 4.0}},
		{"fill null", "alias(r) = fill_null(n, 0)", "r", []any{int64(0), int64(3), int64(4)}},
		{"fill nan", "alias(r) = fill_nan(f, 0.0)", "r", []any{2.5, 0.0, -1.0}},
		{"abs", "alias(r) = abs(f)", "r", nil},
		{"is_null", "is_null(n)", "s", []any{"1"}},
		{"is_not_null", "is_not_null(n)", "s", []any{"x", "7"}},
		{"is_na", "is_na(f)", "s", []any{"x"}},
		{"is_not_na", "is_not_na(f)", "s", []any{"1", "7"}},
		{"drop_null column", "drop_null(n)", "s", []any{"x", "7"}},
		{"drop_null all", "drop_null()", "s", []any{"x", "7"}},
		{"head default", "head()", "s", []any{"1", "x", "7"}},
		{"head", "head(2)", "s", []any{"1", "x"}},
		{"limit", "limit(1)", "s", []any{"1"}},
		{"tail", "tail(1)", "s", []any{"7"}},
		{"row slice", "slice(1, 1)", "s", []any{"x"}},
		{"select", "select(n, s)", "s", []any{"1", "x", "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, _ := newTestVM(t, SourceCSV, []string{"s", "f", "n"}, rows)
			require.NoError(t, vm.Eval(tt.expr))
			got := columnValues(t, collect(t, vm), tt.column)
			if tt.want == nil {
				require.Len(t, got, 3)
				assert.Equal(t, 2.5, got[0])
				assert.True(t, math.IsNaN(got[1].(float64)))
				assert.Equal(t, 1.0, got[2])
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColWithoutHeader(t *testing.T) {
	f := [][]any{{"a", int64(1)}, {"b", int64(2)}}
	vm, _ := newTestVM(t, SourceCSV, []string{"column_1", "column_2"}, f)
	vm.source.hasHeader = false
	require.NoError(t, vm.Eval("col(2) > 1"))
	assert.Equal(t, []any{"b"}, columnValues(t, collect(t, vm), "column_1"))

	assert.ErrorIs(t, vm.Eval("col(9) > 1"), ErrUnknownColumn)
}

func TestArityCheckedBeforeArguments(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"too few", "rename(a > 1)"},
		{"too few inplace", "replace_(a > 1, 'x')"},
		{"too many", "upper(a > 1, b > 1)"},
		{"zero-arity builtin", "header(a > 1)"},
		{"unknown argument function", "trim(nothing_here(a))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, filters := newCountingVM(t, []string{"a", "b"}, abRows)
			err := vm.Eval(tt.expr)
			require.ErrorIs(t, err, ErrArity)
			assert.Equal(t, 0, *filters)
			assert.Equal(t, []string{"a", "b"}, vm.Source().Columns())
		})
	}
}

func TestCallResolution(t *testing.T) {
	tests := []struct {
		name       string
		expr       string
		kind       error
		suggestion string
	}{
		{"unknown", "alias(x) = uper(a)", ErrUnknownFunction, "upper"},
		{"unknown no suggestion", "alias(x) = zzzzzz(a)", ErrUnknownFunction, ""},
		{"no inplace form", "len_(a)", ErrSyntaxMismatch, ""},
		{"unknown cast", "alias(x) = cast_decimal(a)", ErrType, ""},
		{"bare cast", "alias(x) = cast(a)", ErrType, ""},
		{"wrong argument kind", "alias(x) = upper(1)", ErrType, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, _ := newTestVM(t, SourceCSV, []string{"a"}, [][]any{{"x"}})
			err := vm.Eval(tt.expr)
			require.ErrorIs(t, err, tt.kind)
			var ee *Error
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.suggestion, ee.Suggestion)
		})
	}
}

func TestCallSiteCache(t *testing.T) {
	vm, _ := newTestVM(t, SourceCSV, []string{"a"}, [][]any{{"x"}})
	require.NoError(t, vm.Eval("alias(b) = upper(a)"))
	n := len(vm.calls)
	require.NotZero(t, n)
	require.NoError(t, vm.Eval("alias(b) = upper(a)"))
	assert.Len(t, vm.calls, n)
}

func TestRegistry(t *testing.T) {
	r := Builtins()
	for _, name := range []string{"c", "drop", "Sort", "dup_none", "fill_null", "to_fa", "to_fq", "fmt", "f", "occ_lte", "is_not_na"} {
		_, ok := r.Get(name)
		assert.True(t, ok, name)
	}
	_, ok := r.Get("SORT")
	assert.False(t, ok)

	list := r.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Group, list[i].Group)
	}
	assert.Equal(t, "revcomp", r.Suggest("revcmp"))
	assert.Equal(t, "", r.Suggest("qqqqqqqqqq"))
}

func TestGCRejectsProtein(t *testing.T) {
	vm, _ := newTestVM(t, SourceFasta, []string{"name", "seq"}, [][]any{{"p", "MKV"}})
	vm.opts.SeqType = bio.Protein
	assert.ErrorIs(t, vm.Eval("alias(g) = gc(seq)"), ErrType)
}
