package engine

import (
	"math"

	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/query"
)

var binaryOps = map[query.Operator]frame.BinaryOp{
	query.Add:    frame.OpAdd,
	query.Sub:    frame.OpSub,
	query.Mult:   frame.OpMul,
	query.Div:    frame.OpDiv,
	query.Mod:    frame.OpMod,
	query.BitAnd: frame.OpAnd,
	query.BitOr:  frame.OpOr,
}

var compareOps = map[query.CmpOp]frame.BinaryOp{
	query.Eq:    frame.OpEq,
	query.NotEq: frame.OpNotEq,
	query.Lt:    frame.OpLt,
	query.LtE:   frame.OpLtEq,
	query.Gt:    frame.OpGt,
	query.GtE:   frame.OpGtEq,
}

func (vm *VM) unary(u *query.UnaryOp) (Value, error) {
	if u.Op != query.USub {
		return nil, syntaxErr("unsupported unary operator %s, only - is supported", u.Op)
	}
	v, err := vm.eval(u.Operand)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case Int:
		if x == math.MinInt64 {
			return nil, typeErr("integer overflow: -(%s)", x)
		}
		return -x, nil
	case Float:
		return -x, nil
	case Name, NamedExpr:
		e, err := vm.columnExpr(x)
		if err != nil {
			return nil, err
		}
		return NamedExpr{Node: frame.Neg(e)}, nil
	}
	return nil, typeErr("cannot negate %s %s", kind(v), v)
}

func (vm *VM) binary(b *query.BinOp) (Value, error) {
	if _, ok := binaryOps[b.Op]; !ok {
		return nil, syntaxErr("unsupported binary operator %s, supported: + - * / %% & |", b.Op)
	}
	l, err := vm.eval(b.Left)
	if err != nil {
		return nil, err
	}
	r, err := vm.eval(b.Right)
	if err != nil {
		return nil, err
	}
	return vm.arith(b.Op, l, r)
}

// arith folds two constants, or builds a deferred expression when either
// side refers to a column.
func (vm *VM) arith(op query.Operator, l, r Value) (Value, error) {
	fop, ok := binaryOps[op]
	if !ok {
		return nil, syntaxErr("unsupported binary operator %s, supported: + - * / %% & |", op)
	}
	if IsConst(l) && IsConst(r) {
		return fold(op, l, r)
	}
	le, err := vm.operand(op, l, r)
	if err != nil {
		return nil, err
	}
	re, err := vm.operand(op, r, l)
	if err != nil {
		return nil, err
	}
	return NamedExpr{Node: frame.Binary(fop, le, re)}, nil
}

func (vm *VM) operand(op query.Operator, v, other Value) (frame.Expr, error) {
	switch v.(type) {
	case Name, NamedExpr:
		return vm.columnExpr(v)
	case Int, Float, Str, Bool, Null:
		return ToExpr(v)
	}
	return nil, operationErr(op, v, other)
}

func operationErr(op query.Operator, l, r Value) error {
	return typeErr("can't perform %s operation between left: %s and right: %s", op.Describe(), l, r)
}

func fold(op query.Operator, l, r Value) (Value, error) {
	switch a := l.(type) {
	case Int:
		switch b := r.(type) {
		case Int:
			return foldInt(op, a, b)
		case Float:
			return foldFloat(op, Float(a), b, l, r)
		}
	case Float:
		switch b := r.(type) {
		case Int:
			return foldFloat(op, a, Float(b), l, r)
		case Float:
			return foldFloat(op, a, b, l, r)
		}
	case Str:
		if b, ok := r.(Str); ok && op == query.Add {
			return a + b, nil
		}
	}
	return nil, operationErr(op, l, r)
}

func foldInt(op query.Operator, a, b Int) (Value, error) {
	switch op {
	case query.Add:
		c := a + b
		if (a^c)&(b^c) < 0 {
			return nil, overflowErr(op, a, b)
		}
		return c, nil
	case query.Sub:
		c := a - b
		if (a^b)&(a^c) < 0 {
			return nil, overflowErr(op, a, b)
		}
		return c, nil
	case query.Mult:
		c := a * b
		if a != 0 && (c/a != b || (a == -1 && b == math.MinInt64)) {
			return nil, overflowErr(op, a, b)
		}
		return c, nil
	case query.Div:
		if b == 0 {
			return nil, typeErr("division by zero: %s / %s", a, b)
		}
		if a == math.MinInt64 && b == -1 {
			return nil, overflowErr(op, a, b)
		}
		return a / b, nil
	case query.Mod:
		if b == 0 {
			return nil, typeErr("modulo by zero: %s %% %s", a, b)
		}
		return a % b, nil
	case query.BitAnd:
		return a & b, nil
	case query.BitOr:
		return a | b, nil
	}
	return nil, operationErr(op, a, b)
}

func overflowErr(op query.Operator, a, b Int) error {
	return typeErr("integer overflow in %s operation between left: %s and right: %s", op.Describe(), a, b)
}

func foldFloat(op query.Operator, a, b Float, l, r Value) (Value, error) {
	switch op {
	case query.Add:
		return a + b, nil
	case query.Sub:
		return a - b, nil
	case query.Mult:
		return a * b, nil
	case query.Div:
		if b == 0 {
			return nil, typeErr("division by zero: %s / %s", l, r)
		}
		return a / b, nil
	}
	return nil, operationErr(op, l, r)
}

// compare evaluates a single comparison, adds it to the plan as a filter
// and returns the predicate.
func (vm *VM) compare(c *query.Compare) (Value, error) {
	if len(c.Ops) != 1 || len(c.Comparators) != 1 {
		return nil, syntaxErr("only one comparison operator is supported, combine comparisons with `and` or `or`")
	}
	op := c.Ops[0]
	switch op {
	case query.In, query.NotIn:
		return vm.compareIn(c.Left, op, c.Comparators[0])
	case query.Is, query.IsNot:
		return nil, syntaxErr("`%s` is not supported, use is_null or is_not_null", op)
	}

	l, err := vm.eval(c.Left)
	if err != nil {
		return nil, err
	}
	r, err := vm.eval(c.Comparators[0])
	if err != nil {
		return nil, err
	}

	var pred frame.Expr
	_, lnull := l.(Null)
	_, rnull := r.(Null)
	switch {
	case lnull && rnull:
		return nil, typeErr("cannot compare None with None")
	case lnull || rnull:
		other := l
		if lnull {
			other = r
		}
		e, err := vm.columnExpr(other)
		if err != nil {
			return nil, err
		}
		switch op {
		case query.Eq:
			pred = frame.IsNull(e)
		case query.NotEq:
			pred = frame.IsNotNull(e)
		default:
			return nil, typeErr("only == and != can be used with None, got %s", op)
		}
	default:
		if !isColumnRef(l) && !isColumnRef(r) {
			return nil, syntaxErr("comparison %s needs a column on at least one side", c)
		}
		le, err := vm.comparand(l)
		if err != nil {
			return nil, err
		}
		re, err := vm.comparand(r)
		if err != nil {
			return nil, err
		}
		pred = frame.Binary(compareOps[op], le, re)
	}
	vm.source.Filter(pred)
	return NamedExpr{Node: pred}, nil
}

// comparand lifts one side of a comparison. Names must be existing columns.
func (vm *VM) comparand(v Value) (frame.Expr, error) {
	switch x := v.(type) {
	case Name:
		return vm.columnExpr(x)
	case NamedExpr, Int, Float, Str, Bool:
		return ToExpr(x)
	}
	return nil, typeErr("%s %s cannot be compared", kind(v), v)
}

// columnExpr resolves a Name against the source; other column-like values
// are lifted as they are.
func (vm *VM) columnExpr(v Value) (frame.Expr, error) {
	switch x := v.(type) {
	case Name:
		c, err := vm.source.ResolveColumn(x.ID)
		if err != nil {
			return nil, err
		}
		return frame.Col(c), nil
	case NamedExpr:
		return x.Node, nil
	}
	return nil, typeErr("expected a column, got %s %s", kind(v), v)
}

// compareIn supports 'str' in column (substring match) and
// column in (values...) (set membership).
func (vm *VM) compareIn(left query.Expr, op query.CmpOp, right query.Expr) (Value, error) {
	l, err := vm.eval(left)
	if err != nil {
		return nil, err
	}
	r, err := vm.eval(right)
	if err != nil {
		return nil, err
	}

	var pred frame.Expr
	switch lv := l.(type) {
	case Str:
		if !isColumnRef(r) {
			return nil, syntaxErr("`'str' %s x` needs a column on the right, got %s", op, r)
		}
		e, err := vm.columnExpr(r)
		if err != nil {
			return nil, err
		}
		pred = frame.Contains(e, string(lv))
	case Name, NamedExpr:
		list, ok := r.(List)
		if !ok {
			return nil, syntaxErr("`column %s x` needs a tuple of values on the right, got %s", op, r)
		}
		if len(list) == 0 {
			return nil, typeErr("`%s` needs at least one value", op)
		}
		e, err := vm.columnExpr(lv)
		if err != nil {
			return nil, err
		}
		values, err := vm.memberValues(lv, list)
		if err != nil {
			return nil, err
		}
		pred = frame.IsIn(e, values)
	default:
		return nil, syntaxErr("`%s` supports 'str' in column or column in (values, ...), got %s", op, l)
	}
	if op == query.NotIn {
		pred = frame.Not(pred)
	}
	vm.source.Filter(pred)
	return NamedExpr{Node: pred}, nil
}

// memberValues converts a tuple to plain values. The values must share one
// kind, and for a plain column that kind must match the column type.
func (vm *VM) memberValues(col Value, list List) ([]any, error) {
	numeric := false
	text := false
	values := make([]any, len(list))
	for i, v := range list {
		switch v.(type) {
		case Int, Float:
			numeric = true
		case Str:
			text = true
		case Bool, Null:
		default:
			return nil, typeErr("tuple values must be constants, got %s %s", kind(v), v)
		}
		values[i], _ = scalar(v)
	}
	if numeric && text {
		return nil, typeErr("tuple %s mixes numbers and strings", list)
	}
	n, ok := col.(Name)
	if !ok {
		return values, nil
	}
	c, err := vm.source.ResolveColumn(n.ID)
	if err != nil {
		return nil, err
	}
	dt, err := vm.source.ColumnType(c)
	if err != nil {
		return nil, err
	}
	switch {
	case dt.IsNumeric() && text:
		return nil, typeErr("column %q is %s but tuple holds strings", c, dt)
	case dt == frame.String && numeric:
		return nil, typeErr("column %q is %s but tuple holds numbers", c, dt)
	}
	return values, nil
}

// boolOp evaluates `a and b` / `a or b`. Operand filters are deferred and
// the combined predicate is applied once.
func (vm *VM) boolOp(b *query.BoolOp) (Value, error) {
	if len(b.Values) != 2 {
		return nil, syntaxErr("%s expects two operands, got %d", b.Op, len(b.Values))
	}
	for _, v := range b.Values {
		switch v.(type) {
		case *query.Compare, *query.BoolOp:
		default:
			return nil, syntaxErr("operands of `%s` must be comparisons, got %s", b.Op, v)
		}
	}

	prev := vm.source.SetApplyImmediately(false)
	l, r, err := func() (Value, Value, error) {
		defer vm.source.SetApplyImmediately(prev)
		l, err := vm.eval(b.Values[0])
		if err != nil {
			return nil, nil, err
		}
		r, err := vm.eval(b.Values[1])
		if err != nil {
			return nil, nil, err
		}
		return l, r, nil
	}()
	if err != nil {
		return nil, err
	}

	le, err := ToExpr(l)
	if err != nil {
		return nil, err
	}
	re, err := ToExpr(r)
	if err != nil {
		return nil, err
	}
	var pred frame.Expr
	if b.Op == query.And {
		pred = frame.And(le, re)
	} else {
		pred = frame.Or(le, re)
	}
	vm.source.Filter(pred)
	return NamedExpr{Node: pred}, nil
}
