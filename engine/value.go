package engine

import (
	"strconv"
	"strings"

	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/query"
)

// Value is the result of evaluating one syntax tree node. The set of
// implementations is closed: Int, Float, Bool, Str, Name, NamedExpr, List,
// Null, Na and None.
type Value interface {
	String() string
	value()
}

type (
	Int   int64
	Float float64
	Bool  bool
	Str   string

	// Name is an unresolved column reference.
	Name struct {
		ID  string
		Ctx query.NameContext
	}

	// NamedExpr is a deferred computation, optionally bound to the column
	// it was derived from.
	NamedExpr struct {
		Name string
		Node frame.Expr
	}

	List []Value

	// Null and Na are missing-data literals.
	Null struct{}
	Na   struct{}

	// None means no value was produced, as for statements that only mutate
	// the row source.
	None struct{}
)

func (Int) value()       {}
func (Float) value()     {}
func (Bool) value()      {}
func (Str) value()       {}
func (Name) value()      {}
func (NamedExpr) value() {}
func (List) value()      {}
func (Null) value()      {}
func (Na) value()        {}
func (None) value()      {}

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Bool) String() string  { return strconv.FormatBool(bool(v)) }
func (v Str) String() string   { return "'" + string(v) + "'" }
func (v Name) String() string  { return v.ID }
func (v NamedExpr) String() string {
	if v.Node == nil {
		return v.Name
	}
	return v.Node.String()
}
func (Null) String() string { return "null" }
func (Na) String() string   { return "na" }
func (None) String() string { return "None" }

func (v List) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// kind names a value's variant for error messages.
func kind(v Value) string {
	switch v.(type) {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case Name:
		return "name"
	case NamedExpr:
		return "expression"
	case List:
		return "list"
	case Null:
		return "null"
	case Na:
		return "na"
	default:
		return "none"
	}
}

// IsConst reports whether v is an Int, Float or Str literal.
func IsConst(v Value) bool {
	switch v.(type) {
	case Int, Float, Str:
		return true
	}
	return false
}

// IsColumn reports whether v can name a column: a Name, a NamedExpr or a
// string literal.
func IsColumn(v Value) bool {
	switch v.(type) {
	case Name, NamedExpr, Str:
		return true
	}
	return false
}

// isColumnRef is IsColumn without string literals.
func isColumnRef(v Value) bool {
	switch v.(type) {
	case Name, NamedExpr:
		return true
	}
	return false
}

// ColumnName returns the column a value refers to.
func ColumnName(v Value) (string, error) {
	switch x := v.(type) {
	case Name:
		return x.ID, nil
	case Str:
		return string(x), nil
	case NamedExpr:
		if x.Name != "" {
			return x.Name, nil
		}
		return "", typeErr("expression %s is not bound to a column", x)
	}
	return "", typeErr("expected a column, got %s %s", kind(v), v)
}

// ToExpr lifts a value into a plan expression. Literals become constant
// nodes and names become column references.
func ToExpr(v Value) (frame.Expr, error) {
	switch x := v.(type) {
	case Int:
		return frame.Lit(int64(x)), nil
	case Float:
		return frame.Lit(float64(x)), nil
	case Bool:
		return frame.Lit(bool(x)), nil
	case Str:
		return frame.Lit(string(x)), nil
	case Name:
		return frame.Col(x.ID), nil
	case NamedExpr:
		return x.Node, nil
	case Null, Na:
		return frame.Lit(nil), nil
	case None:
		return nil, typeErr("function returned no value")
	}
	return nil, typeErr("%s %s cannot be used as an expression", kind(v), v)
}

// scalar converts a literal value to the plain Go value stored in frames.
func scalar(v Value) (any, bool) {
	switch x := v.(type) {
	case Int:
		return int64(x), true
	case Float:
		return float64(x), true
	case Bool:
		return bool(x), true
	case Str:
		return string(x), true
	case Null, Na:
		return nil, true
	}
	return nil, false
}
