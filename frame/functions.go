package frame

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

type nullExpr struct {
	inner  Expr
	negate bool
}

// IsNull is true for null entries.
func IsNull(e Expr) Expr { return nullExpr{inner: e} }

// IsNotNull is true for non-null entries.
func IsNotNull(e Expr) Expr { return nullExpr{inner: e, negate: true} }

func (e nullExpr) Name() string { return e.inner.Name() }
func (e nullExpr) String() string {
	if e.negate {
		return fmt.Sprintf("%s.is_not_null()", e.inner)
	}
	return fmt.Sprintf("%s.is_null()", e.inner)
}
func (e nullExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		values[i] = (v == nil) != e.negate
	}
	return &Series{name: s.name, dtype: Bool, values: values}, nil
}

type nanExpr struct {
	inner  Expr
	negate bool
}

// IsNaN is true for float NaN entries and null for null entries.
func IsNaN(e Expr) Expr { return nanExpr{inner: e} }

// IsNotNaN is the negation of IsNaN.
func IsNotNaN(e Expr) Expr { return nanExpr{inner: e, negate: true} }

func (e nanExpr) Name() string { return e.inner.Name() }
func (e nanExpr) String() string {
	if e.negate {
		return fmt.Sprintf("%s.is_not_nan()", e.inner)
	}
	return fmt.Sprintf("%s.is_nan()", e.inner)
}
func (e nanExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	if s.dtype != Null && !s.dtype.IsNumeric() {
		return nil, fmt.Errorf("is_nan is not defined for %s column %q", s.dtype, s.name)
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		if v == nil {
			continue
		}
		x, _ := v.(float64)
		values[i] = math.IsNaN(x) != e.negate
	}
	return &Series{name: s.name, dtype: Bool, values: values}, nil
}

type isInExpr struct {
	inner Expr
	set   []any
}

// IsIn is true when the entry equals one of values.
func IsIn(e Expr, values []any) Expr {
	set := make([]any, len(values))
	for i, v := range values {
		set[i] = normalize(v)
	}
	return isInExpr{inner: e, set: set}
}

func (e isInExpr) Name() string   { return e.inner.Name() }
func (e isInExpr) String() string { return fmt.Sprintf("%s.is_in(%v)", e.inner, e.set) }
func (e isInExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		if v == nil {
			values[i] = false
			continue
		}
		found := false
		for _, want := range e.set {
			if c, err := compareValues(v, want); err == nil && c == 0 {
				found = true
				break
			}
		}
		values[i] = found
	}
	return &Series{name: s.name, dtype: Bool, values: values}, nil
}

type containsExpr struct {
	inner   Expr
	pattern string
}

// Contains is true when a string entry contains pattern literally.
func Contains(e Expr, pattern string) Expr { return containsExpr{inner: e, pattern: pattern} }

func (e containsExpr) Name() string { return e.inner.Name() }
func (e containsExpr) String() string {
	return fmt.Sprintf("%s.str.contains(%q)", e.inner, e.pattern)
}
func (e containsExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	if s.dtype != String && s.dtype != Null {
		return nil, fmt.Errorf("contains requires a string column, %q is %s", s.name, s.dtype)
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		if x, ok := v.(string); ok {
			values[i] = strings.Contains(x, e.pattern)
		}
	}
	return &Series{name: s.name, dtype: Bool, values: values}, nil
}

// MapFunc transforms one non-null value. Returning nil produces a null.
type MapFunc func(v any) (any, error)

type mapExpr struct {
	inner Expr
	label string
	out   DataType
	fn    MapFunc
}

// Map applies fn to every non-null entry of e; the result has type out, or
// an inferred type when out is Null. label is only used when printing plans.
func Map(e Expr, label string, out DataType, fn MapFunc) Expr {
	return mapExpr{inner: e, label: label, out: out, fn: fn}
}

// MapString applies fn to every string entry.
func MapString(e Expr, label string, fn func(string) string) Expr {
	return Map(e, label, String, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s requires a string value, got %s", label, typeOf(v))
		}
		return fn(s), nil
	})
}

func (e mapExpr) Name() string   { return e.inner.Name() }
func (e mapExpr) String() string { return fmt.Sprintf("%s.%s()", e.inner, e.label) }
func (e mapExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		if v == nil {
			continue
		}
		out, err := e.fn(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.label, err)
		}
		values[i] = normalize(out)
	}
	if e.out == Null {
		return InferSeries(s.name, values), nil
	}
	return NewSeries(s.name, e.out, values), nil
}

type fillExpr struct {
	inner Expr
	value any
	nan   bool
}

// FillNull replaces nulls with value.
func FillNull(e Expr, value any) Expr { return fillExpr{inner: e, value: normalize(value)} }

// FillNaN replaces NaN with value.
func FillNaN(e Expr, value any) Expr { return fillExpr{inner: e, value: normalize(value), nan: true} }

func (e fillExpr) Name() string { return e.inner.Name() }
func (e fillExpr) String() string {
	if e.nan {
		return fmt.Sprintf("%s.fill_nan(%v)", e.inner, e.value)
	}
	return fmt.Sprintf("%s.fill_null(%v)", e.inner, e.value)
}
func (e fillExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		values[i] = v
		if e.nan {
			if x, ok := v.(float64); ok && math.IsNaN(x) {
				values[i] = e.value
			}
		} else if v == nil {
			values[i] = e.value
		}
	}
	return InferSeries(s.name, values), nil
}

type formatExpr struct {
	pieces []string
	args   []Expr
}

// Format renders pieces[0] args[0] pieces[1] args[1] ... for every row.
// len(pieces) must be len(args)+1. Nulls render as empty strings.
func Format(pieces []string, args []Expr) Expr {
	return formatExpr{pieces: pieces, args: args}
}

func (e formatExpr) Name() string { return "format" }
func (e formatExpr) String() string {
	parts := make([]string, len(e.args))
	for i, a := range e.args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("format(%q, %s)", strings.Join(e.pieces, "{}"), strings.Join(parts, ", "))
}
func (e formatExpr) Evaluate(f *Frame) (*Series, error) {
	if len(e.pieces) != len(e.args)+1 {
		return nil, fmt.Errorf("format has %d placeholders but %d arguments", len(e.pieces)-1, len(e.args))
	}
	args := make([]*Series, len(e.args))
	for i, a := range e.args {
		s, err := a.Evaluate(f)
		if err != nil {
			return nil, err
		}
		args[i] = s
	}
	values := make([]any, f.height)
	var b strings.Builder
	for i := range values {
		b.Reset()
		b.WriteString(e.pieces[0])
		for j, s := range args {
			b.WriteString(FormatValue(at(s, i)))
			b.WriteString(e.pieces[j+1])
		}
		values[i] = b.String()
	}
	return &Series{name: e.Name(), dtype: String, values: values}, nil
}

// Len counts characters, or bytes when bytes is true.
func Len(e Expr, bytes bool) Expr {
	return Map(e, "len", Int, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			s = FormatValue(v)
		}
		if bytes {
			return int64(len(s)), nil
		}
		return int64(utf8.RuneCountInString(s)), nil
	})
}

// Abs returns the absolute value of a numeric expression.
func Abs(e Expr) Expr {
	return Map(e, "abs", Null, func(v any) (any, error) {
		switch x := v.(type) {
		case int64:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		case float64:
			return math.Abs(x), nil
		}
		return nil, fmt.Errorf("abs requires a numeric value, got %s", typeOf(v))
	})
}

// Upper and Lower change the case of string entries.
func Upper(e Expr) Expr { return MapString(e, "to_uppercase", strings.ToUpper) }
func Lower(e Expr) Expr { return MapString(e, "to_lowercase", strings.ToLower) }
