package frame

import (
	"fmt"
	"math"
	"strings"
)

// Expr is a deferred column computation. Evaluate returns a series with the
// frame's height named after Name.
type Expr interface {
	Evaluate(f *Frame) (*Series, error)
	Name() string
	String() string
}

// BinaryOp enumerates the operators understood by Binary.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
)

var opSymbols = [...]string{"+", "-", "*", "/", "%", "&", "|", "==", "!=", "<", "<=", ">", ">="}

func (op BinaryOp) String() string {
	if int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// IsComparison reports whether op yields a boolean predicate.
func (op BinaryOp) IsComparison() bool {
	return op >= OpEq
}

type colExpr struct{ name string }

// Col references a column by name.
func Col(name string) Expr { return colExpr{name: name} }

func (e colExpr) Name() string   { return e.name }
func (e colExpr) String() string { return fmt.Sprintf("col(%q)", e.name) }
func (e colExpr) Evaluate(f *Frame) (*Series, error) {
	return f.Column(e.name)
}

type litExpr struct{ value any }

// Lit is a constant broadcast to the frame height. nil is a null literal.
func Lit(v any) Expr { return litExpr{value: normalize(v)} }

func (e litExpr) Name() string { return "literal" }
func (e litExpr) String() string {
	if s, ok := e.value.(string); ok {
		return fmt.Sprintf("lit(%q)", s)
	}
	return fmt.Sprintf("lit(%v)", e.value)
}
func (e litExpr) Evaluate(f *Frame) (*Series, error) {
	values := make([]any, f.height)
	for i := range values {
		values[i] = e.value
	}
	return &Series{name: e.Name(), dtype: typeOf(e.value), values: values}, nil
}

type aliasExpr struct {
	inner Expr
	name  string
}

// Alias renames the output of e.
func Alias(e Expr, name string) Expr {
	if a, ok := e.(aliasExpr); ok {
		e = a.inner
	}
	return aliasExpr{inner: e, name: name}
}

func (e aliasExpr) Name() string   { return e.name }
func (e aliasExpr) String() string { return fmt.Sprintf("%s.alias(%q)", e.inner, e.name) }
func (e aliasExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	return s.Rename(e.name), nil
}

type binaryExpr struct {
	op          BinaryOp
	left, right Expr
}

// Binary combines two expressions. The output takes the left operand's name.
func Binary(op BinaryOp, left, right Expr) Expr {
	return binaryExpr{op: op, left: left, right: right}
}

func Add(l, r Expr) Expr   { return Binary(OpAdd, l, r) }
func Sub(l, r Expr) Expr   { return Binary(OpSub, l, r) }
func Mul(l, r Expr) Expr   { return Binary(OpMul, l, r) }
func Div(l, r Expr) Expr   { return Binary(OpDiv, l, r) }
func Eq(l, r Expr) Expr    { return Binary(OpEq, l, r) }
func NotEq(l, r Expr) Expr { return Binary(OpNotEq, l, r) }
func Gt(l, r Expr) Expr    { return Binary(OpGt, l, r) }
func GtEq(l, r Expr) Expr  { return Binary(OpGtEq, l, r) }
func Lt(l, r Expr) Expr    { return Binary(OpLt, l, r) }
func LtEq(l, r Expr) Expr  { return Binary(OpLtEq, l, r) }
func And(l, r Expr) Expr   { return Binary(OpAnd, l, r) }
func Or(l, r Expr) Expr    { return Binary(OpOr, l, r) }

func (e binaryExpr) Name() string { return e.left.Name() }
func (e binaryExpr) String() string {
	return fmt.Sprintf("[(%s) %s (%s)]", e.left, e.op, e.right)
}

func (e binaryExpr) Evaluate(f *Frame) (*Series, error) {
	l, err := e.left.Evaluate(f)
	if err != nil {
		return nil, err
	}
	r, err := e.right.Evaluate(f)
	if err != nil {
		return nil, err
	}
	dtype, err := resultType(e.op, l.dtype, r.dtype)
	if err != nil {
		return nil, err
	}
	n := max(l.Len(), r.Len())
	values := make([]any, n)
	for i := range values {
		a, b := at(l, i), at(r, i)
		if a == nil || b == nil {
			continue
		}
		v, err := applyBinary(e.op, dtype, a, b)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Series{name: e.Name(), dtype: dtype, values: values}, nil
}

func at(s *Series, i int) any {
	if s.Len() == 1 {
		return s.values[0]
	}
	return s.values[i]
}

func resultType(op BinaryOp, lt, rt DataType) (DataType, error) {
	if op.IsComparison() {
		switch {
		case lt == Null || rt == Null, lt == rt, lt.IsNumeric() && rt.IsNumeric():
			return Bool, nil
		}
		return Null, fmt.Errorf("cannot compare %s with %s", lt, rt)
	}
	if lt == Null {
		return rt, nil
	}
	if rt == Null {
		return lt, nil
	}
	switch op {
	case OpAnd, OpOr:
		if lt == rt && (lt == Bool || lt == Int) {
			return lt, nil
		}
	case OpAdd:
		if lt == String && rt == String {
			return String, nil
		}
		fallthrough
	default:
		if lt.IsNumeric() && rt.IsNumeric() {
			if lt == Int && rt == Int {
				return Int, nil
			}
			return Float, nil
		}
	}
	return Null, fmt.Errorf("cannot apply %s to %s and %s", op, lt, rt)
}

func applyBinary(op BinaryOp, dtype DataType, a, b any) (any, error) {
	if op.IsComparison() {
		c, err := compareValues(a, b)
		if err != nil {
			return nil, err
		}
		switch op {
		case OpEq:
			return c == 0, nil
		case OpNotEq:
			return c != 0, nil
		case OpLt:
			return c < 0, nil
		case OpLtEq:
			return c <= 0, nil
		case OpGt:
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	}
	switch dtype {
	case Bool:
		x, y := a.(bool), b.(bool)
		if op == OpAnd {
			return x && y, nil
		}
		return x || y, nil
	case String:
		return a.(string) + b.(string), nil
	case Int:
		x, y := a.(int64), b.(int64)
		switch op {
		case OpAdd:
			return x + y, nil
		case OpSub:
			return x - y, nil
		case OpMul:
			return x * y, nil
		case OpDiv:
			if y == 0 {
				return nil, nil
			}
			return x / y, nil
		case OpMod:
			if y == 0 {
				return nil, nil
			}
			return x % y, nil
		case OpAnd:
			return x & y, nil
		case OpOr:
			return x | y, nil
		}
	case Float:
		x, y := toFloat(a), toFloat(b)
		switch op {
		case OpAdd:
			return x + y, nil
		case OpSub:
			return x - y, nil
		case OpMul:
			return x * y, nil
		case OpDiv:
			return x / y, nil
		case OpMod:
			return math.Mod(x, y), nil
		}
	}
	return nil, fmt.Errorf("cannot apply %s to %v and %v", op, a, b)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}

// compareValues orders two non-null values of compatible types.
func compareValues(a, b any) (int, error) {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			default:
				return 1, nil
			}
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmpOrdered(x, y), nil
		}
		if y, ok := b.(float64); ok {
			return cmpOrdered(float64(x), y), nil
		}
	case float64:
		if _, ok := b.(int64); ok || typeOf(b) == Float {
			return cmpOrdered(x, toFloat(b)), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %v with %v", a, b)
}

func cmpOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

type negExpr struct{ inner Expr }

// Neg negates a numeric expression.
func Neg(e Expr) Expr { return negExpr{inner: e} }

func (e negExpr) Name() string   { return e.inner.Name() }
func (e negExpr) String() string { return fmt.Sprintf("-(%s)", e.inner) }
func (e negExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	if s.dtype != Null && !s.dtype.IsNumeric() {
		return nil, fmt.Errorf("cannot negate %s column %q", s.dtype, s.name)
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		switch x := v.(type) {
		case int64:
			values[i] = -x
		case float64:
			values[i] = -x
		}
	}
	return &Series{name: s.name, dtype: s.dtype, values: values}, nil
}

type notExpr struct{ inner Expr }

// Not inverts a boolean expression.
func Not(e Expr) Expr { return notExpr{inner: e} }

func (e notExpr) Name() string   { return e.inner.Name() }
func (e notExpr) String() string { return fmt.Sprintf("not(%s)", e.inner) }
func (e notExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	if s.dtype != Bool && s.dtype != Null {
		return nil, fmt.Errorf("cannot apply not to %s column %q", s.dtype, s.name)
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		if b, ok := v.(bool); ok {
			values[i] = !b
		}
	}
	return &Series{name: s.name, dtype: Bool, values: values}, nil
}
