// Package frame is a small columnar query engine used by filterx.
//
// A Frame is an ordered set of equally sized, named Series. Computations over
// a frame are described with Expr nodes that are only evaluated when a
// LazyFrame is collected:
//
//	lf := f.Lazy().
//	    Filter(frame.Gt(frame.Col("age"), frame.Lit(int64(30)))).
//	    WithColumns(frame.Alias(frame.Upper(frame.Col("name")), "NAME"))
//	out, err := lf.Collect()
//
// # Types
//
// Values inside a Series are stored as interface values with a fixed set of
// dynamic types: int64, float64, string and bool. A nil entry is a null.
// Floats may hold NaN, which is distinct from null.
//
// # Plans
//
// A LazyFrame is immutable; every method returns a new plan that shares the
// previous operations. Operations run in the order they were added when
// Collect or Fetch is called.
package frame
