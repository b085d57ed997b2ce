package frame

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"
)

// Cast converts e to the given type. Values that cannot be converted become
// null, as do integers outside [lo, hi] when bounds are given with CastRange.
func Cast(e Expr, to DataType) Expr {
	return castExpr{inner: e, to: to, lo: math.MinInt64, hi: math.MaxInt64}
}

// CastRange casts to Int and rejects values outside [lo, hi].
func CastRange(e Expr, lo, hi int64) Expr {
	return castExpr{inner: e, to: Int, lo: lo, hi: hi}
}

type castExpr struct {
	inner  Expr
	to     DataType
	lo, hi int64
}

func (e castExpr) Name() string   { return e.inner.Name() }
func (e castExpr) String() string { return fmt.Sprintf("%s.cast(%s)", e.inner, e.to) }

func (e castExpr) Evaluate(f *Frame) (*Series, error) {
	s, err := e.inner.Evaluate(f)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for i, v := range s.values {
		if v == nil {
			continue
		}
		values[i] = e.convert(v)
	}
	return &Series{name: s.name, dtype: e.to, values: values}, nil
}

func (e castExpr) convert(v any) any {
	switch e.to {
	case Int:
		var (
			n   int64
			err error
		)
		switch x := v.(type) {
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil
			}
			n = int64(x)
		case string:
			n, err = strconv.ParseInt(x, 10, 64)
			if err != nil {
				var fl float64
				fl, err = strconv.ParseFloat(x, 64)
				n = int64(fl)
			}
		default:
			n, err = cast.ToInt64E(v)
		}
		if err != nil || n < e.lo || n > e.hi {
			return nil
		}
		return n
	case Float:
		fl, err := cast.ToFloat64E(v)
		if err != nil {
			return nil
		}
		return fl
	case Bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil
		}
		return b
	case String:
		str, err := cast.ToStringE(v)
		if err != nil {
			return nil
		}
		return str
	}
	return nil
}
