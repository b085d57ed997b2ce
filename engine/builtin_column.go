package engine

import (
	"math"
	"strconv"

	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/output"
)

var castTypes = map[string]func(frame.Expr) frame.Expr{
	"int":    func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.Int) },
	"i64":    func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.Int) },
	"i32":    func(e frame.Expr) frame.Expr { return frame.CastRange(e, math.MinInt32, math.MaxInt32) },
	"i16":    func(e frame.Expr) frame.Expr { return frame.CastRange(e, math.MinInt16, math.MaxInt16) },
	"i8":     func(e frame.Expr) frame.Expr { return frame.CastRange(e, math.MinInt8, math.MaxInt8) },
	"u64":    func(e frame.Expr) frame.Expr { return frame.CastRange(e, 0, math.MaxInt64) },
	"u32":    func(e frame.Expr) frame.Expr { return frame.CastRange(e, 0, math.MaxUint32) },
	"u16":    func(e frame.Expr) frame.Expr { return frame.CastRange(e, 0, math.MaxUint16) },
	"u8":     func(e frame.Expr) frame.Expr { return frame.CastRange(e, 0, math.MaxUint8) },
	"float":  func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.Float) },
	"f64":    func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.Float) },
	"f32":    func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.Float) },
	"string": func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.String) },
	"str":    func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.String) },
	"bool":   func(e frame.Expr) frame.Expr { return frame.Cast(e, frame.Bool) },
}

func columnBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "alias", Group: GroupColumn, MinArgs: 1, MaxArgs: 1,
			Doc: "Name a new column as an assignment target: alias(new) = expr.",
			fn:  builtinAlias,
		},
		{
			Name: "col", Aliases: []string{"c"}, Group: GroupColumn, Expression: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Refer to a column by name or by 0-based index.",
			fn:  builtinCol,
		},
		{
			Name: "select", Group: GroupColumn, MinArgs: 1, MaxArgs: Variadic,
			Doc: "Keep only the given columns, in the given order.",
			fn:  builtinSelect,
		},
		{
			Name: "rm", Aliases: []string{"drop"}, Group: GroupColumn, MinArgs: 1, MaxArgs: Variadic,
			Doc: "Remove columns.",
			fn:  builtinDrop,
		},
		{
			Name: "rename", Group: GroupColumn, MinArgs: 2, MaxArgs: 2,
			Doc: "Rename a column: rename(old, new).",
			fn:  builtinRename,
		},
		{
			Name: "sort", Aliases: []string{"Sort", "sorT"}, Group: GroupColumn, MinArgs: 1, MaxArgs: Variadic,
			Doc: "Stable sort by columns, ascending; Sort sorts descending.",
			fn:  builtinSort,
		},
		{
			Name: "dup", Aliases: []string{"dup_none", "dup_last", "dup_any"}, Group: GroupColumn, MinArgs: 1, MaxArgs: Variadic,
			Doc: "Remove duplicate rows by columns, keeping the first (dup), last (dup_last), any (dup_any) or none (dup_none).",
			fn:  builtinDup,
		},
		{
			Name: "cast", Group: GroupColumn, Expression: true, Inplace: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Convert a column: cast_int, cast_float, cast_str, cast_bool, cast_i8 ... cast_u64. Unconvertible values become null.",
			fn:  builtinCast,
		},
		{
			Name: "fill", Aliases: []string{"fill_null"}, Group: GroupColumn, Expression: true, Inplace: true, MinArgs: 2, MaxArgs: 2,
			Doc: "Replace nulls with a constant: fill(col, value).",
			fn:  builtinFill,
		},
		{
			Name: "fill_nan", Group: GroupColumn, Expression: true, Inplace: true, MinArgs: 2, MaxArgs: 2,
			Doc: "Replace NaN with a constant: fill_nan(col, value).",
			fn:  builtinFill,
		},
		{
			Name: "is_null", Aliases: []string{"is_not_null"}, Group: GroupColumn, MinArgs: 1, MaxArgs: 1,
			Doc: "Keep rows where the column is (not) null.",
			fn:  builtinIsNull,
		},
		{
			Name: "is_na", Aliases: []string{"is_not_na"}, Group: GroupColumn, MinArgs: 1, MaxArgs: 1,
			Doc: "Keep rows where the column is (not) NaN.",
			fn:  builtinIsNull,
		},
		{
			Name: "drop_null", Group: GroupColumn, Inplace: true, MinArgs: 0, MaxArgs: 1,
			Doc: "Drop rows with a null in the column, or in any column when called without arguments.",
			fn:  builtinDropNull,
		},
		{
			Name: "header", Group: GroupColumn, MinArgs: 0, MaxArgs: 0,
			Doc: "Print the column index, name and type, then stop.",
			fn:  builtinHeader,
		},
		{
			Name: "abs", Group: GroupNumber, Expression: true, Inplace: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Absolute value.",
			fn:  builtinAbs,
		},
	}
}

func builtinAlias(vm *VM, inv *invocation) (Value, error) {
	n, err := aliasName(inv.args[0])
	if err != nil {
		return nil, err
	}
	return Name{ID: n}, nil
}

// builtinCol maps an integer to a column. Without a header, col(i) is
// column_i; with a header it is the i-th initial column.
func builtinCol(vm *VM, inv *invocation) (Value, error) {
	v, err := vm.arg(inv, 0)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case Int:
		if !vm.source.HasHeader() {
			name := "column_" + strconv.FormatInt(int64(x), 10)
			if !vm.source.HasColumn(name) {
				return nil, unknownColumnErr(name, vm.source.Columns())
			}
			return Name{ID: name}, nil
		}
		cols := vm.source.InitialColumns()
		if x < 0 || int(x) >= len(cols) {
			return nil, typeErr("col: index %d out of range, input has %d columns", x, len(cols))
		}
		return Name{ID: cols[x]}, nil
	case Name, Str:
		n, _ := ColumnName(x)
		c, err := vm.source.ResolveColumn(n)
		if err != nil {
			return nil, err
		}
		return Name{ID: c}, nil
	}
	return nil, typeErr("col: argument must be a column name or index, got %s %s", kind(v), v)
}

func builtinSelect(vm *VM, inv *invocation) (Value, error) {
	names, err := vm.columnNames(inv, 0, len(inv.args))
	if err != nil {
		return nil, err
	}
	return None{}, vm.source.Select(names)
}

func builtinDrop(vm *VM, inv *invocation) (Value, error) {
	names, err := vm.columnNames(inv, 0, len(inv.args))
	if err != nil {
		return nil, err
	}
	return None{}, vm.source.Drop(names)
}

func builtinRename(vm *VM, inv *invocation) (Value, error) {
	if vm.source.Type().IsStream() {
		return nil, typeErr("rename is not supported for %s input", vm.source.Type())
	}
	old, err := vm.columnNames(inv, 0, 1)
	if err != nil {
		return nil, err
	}
	v, err := vm.arg(inv, 1)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case Name, Str:
	default:
		return nil, typeErr("rename: new name must be a name or string, got %s %s", kind(v), v)
	}
	n, _ := ColumnName(v)
	return None{}, vm.source.Rename(old[0], n)
}

func builtinSort(vm *VM, inv *invocation) (Value, error) {
	names, err := vm.columnNames(inv, 0, len(inv.args))
	if err != nil {
		return nil, err
	}
	return None{}, vm.source.Sort(names, inv.name == "Sort")
}

func builtinDup(vm *VM, inv *invocation) (Value, error) {
	names, err := vm.columnNames(inv, 0, len(inv.args))
	if err != nil {
		return nil, err
	}
	keep := frame.KeepFirst
	switch inv.name {
	case "dup_none":
		keep = frame.KeepNone
	case "dup_last":
		keep = frame.KeepLast
	case "dup_any":
		keep = frame.KeepAny
	}
	return None{}, vm.source.Unique(names, keep)
}

func builtinCast(vm *VM, inv *invocation) (Value, error) {
	if inv.cast == "" {
		return nil, typeErr("cast needs a target type, use cast_<type>(col), for example cast_int(col)")
	}
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return vm.result(inv, name, castTypes[inv.cast](e))
}

func builtinFill(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	v, err := vm.literalArg(inv, 1)
	if err != nil {
		return nil, err
	}
	if inv.name == "fill_nan" {
		return vm.result(inv, name, frame.FillNaN(e, v))
	}
	return vm.result(inv, name, frame.FillNull(e, v))
}

func builtinIsNull(vm *VM, inv *invocation) (Value, error) {
	_, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	var pred frame.Expr
	switch inv.name {
	case "is_null":
		pred = frame.IsNull(e)
	case "is_not_null":
		pred = frame.IsNotNull(e)
	case "is_na":
		pred = frame.IsNaN(e)
	default:
		pred = frame.IsNotNaN(e)
	}
	vm.source.Filter(pred)
	return NamedExpr{Node: pred}, nil
}

func builtinDropNull(vm *VM, inv *invocation) (Value, error) {
	var cols []string
	if len(inv.args) == 1 {
		name, _, err := vm.column(inv, 0)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, typeErr("drop_null: argument must be a column")
		}
		cols = []string{name}
	} else {
		cols = vm.source.Columns()
	}
	if len(cols) == 0 {
		return None{}, nil
	}
	pred := frame.IsNotNull(frame.Col(cols[0]))
	for _, c := range cols[1:] {
		pred = frame.And(pred, frame.IsNotNull(frame.Col(c)))
	}
	vm.source.Filter(pred)
	return None{}, nil
}

func builtinHeader(vm *VM, inv *invocation) (Value, error) {
	schema, err := vm.source.Schema()
	if err != nil {
		return nil, err
	}
	if err := output.WriteSchema(vm.out, schema); err != nil {
		return nil, runtimeErr(err)
	}
	vm.status.Printed = true
	vm.status.Stop = true
	return None{}, nil
}

func builtinAbs(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return vm.result(inv, name, frame.Abs(e))
}
