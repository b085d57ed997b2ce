// Package query parses filterx expressions.
//
// The language is a small subset of Python expression syntax:
//   - literals: integers, floats, 'strings' or "strings", True, False, None
//   - names, calls with positional arguments, attributes, tuples
//   - arithmetic and bitwise operators: + - * / // % ** & | ^ and unary - + ~
//   - comparisons: == != < <= > >= in, not in, is, is not
//   - boolean connectives: and, or, not
//   - statements: expressions, assignments (alias(x) = expr) and
//     augmented assignments (x += 1)
//
// A program is a sequence of statements separated by ';':
//
//	stmts, err := query.Parse("len(seq) > 100; alias(gc) = gc(seq)")
//	if err != nil {
//	    var se *query.SyntaxError
//	    if errors.As(err, &se) {
//	        fmt.Println(se.Caret())
//	    }
//	}
//
// The parser accepts more than filterx evaluates (for example chained
// comparisons or the ** operator); the evaluator rejects those shapes with
// a descriptive error.
//
// # Limits
//
// Input is bounded by MaxExpressionLength, MaxTokens and
// MaxExpressionDepth to keep hostile expressions from exhausting memory or
// the stack.
package query
