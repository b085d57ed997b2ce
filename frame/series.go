package frame

import (
	"fmt"
	"math"
	"strconv"
)

// DataType is the logical type of a Series.
type DataType int

const (
	Null DataType = iota
	Bool
	Int
	Float
	String
)

// String returns the name used in schema listings.
func (t DataType) String() string {
	switch t {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "i64"
	case Float:
		return "f64"
	case String:
		return "str"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// IsNumeric reports whether t is Int or Float.
func (t DataType) IsNumeric() bool {
	return t == Int || t == Float
}

// Field is one entry of a frame schema.
type Field struct {
	Name string
	Type DataType
}

// Series is a named, typed column.
type Series struct {
	name   string
	dtype  DataType
	values []any
}

// NewSeries creates a series. Values are normalized to int64, float64,
// string or bool; unsupported dynamic types are stringified.
func NewSeries(name string, dtype DataType, values []any) *Series {
	for i, v := range values {
		values[i] = normalize(v)
	}
	coerce(values, dtype)
	return &Series{name: name, dtype: dtype, values: values}
}

// InferSeries creates a series whose type is derived from its values.
func InferSeries(name string, values []any) *Series {
	for i, v := range values {
		values[i] = normalize(v)
	}
	dtype := inferType(values)
	coerce(values, dtype)
	return &Series{name: name, dtype: dtype, values: values}
}

// coerce makes mixed int/float columns uniformly float and mixed
// scalar columns uniformly string.
func coerce(values []any, dtype DataType) {
	for i, v := range values {
		if v == nil {
			continue
		}
		switch dtype {
		case Float:
			if x, ok := v.(int64); ok {
				values[i] = float64(x)
			}
		case String:
			if _, ok := v.(string); !ok {
				values[i] = FormatValue(v)
			}
		}
	}
}

func (s *Series) Name() string { return s.name }
func (s *Series) Type() DataType { return s.dtype }
func (s *Series) Len() int { return len(s.values) }
func (s *Series) Value(i int) any { return s.values[i] }
func (s *Series) IsNull(i int) bool { return s.values[i] == nil }
func (s *Series) Values() []any { return s.values }
func (s *Series) Field() Field { return Field{Name: s.name, Type: s.dtype} }
func (s *Series) String() string { return fmt.Sprintf("%s[%s; %d]", s.name, s.dtype, len(s.values)) }

// Rename returns a series sharing s's values under a new name.
func (s *Series) Rename(n string) *Series {
	return &Series{name: n, dtype: s.dtype, values: s.values}
}

// NullCount returns the number of null entries.
func (s *Series) NullCount() int {
	n := 0
	for _, v := range s.values {
		if v == nil {
			n++
		}
	}
	return n
}

func (s *Series) take(idx []int) *Series {
	out := make([]any, len(idx))
	for i, j := range idx {
		out[i] = s.values[j]
	}
	return &Series{name: s.name, dtype: s.dtype, values: out}
}

func (s *Series) slice(offset, n int) *Series {
	return &Series{name: s.name, dtype: s.dtype, values: s.values[offset : offset+n]}
}

func normalize(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, string, bool:
		return v
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return float64(x)
		}
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func typeOf(v any) DataType {
	switch v.(type) {
	case int64:
		return Int
	case float64:
		return Float
	case string:
		return String
	case bool:
		return Bool
	default:
		return Null
	}
}

func inferType(values []any) DataType {
	t := Null
	for _, v := range values {
		vt := typeOf(v)
		switch {
		case vt == Null || vt == t:
		case t == Null:
			t = vt
		case t.IsNumeric() && vt.IsNumeric():
			t = Float
		default:
			return String
		}
	}
	return t
}

// FormatValue renders a value the way filterx writes it to delimited output.
// Floats use three decimals; nulls render as an empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', 3, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(v)
	}
}
