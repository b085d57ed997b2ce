package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is any syntax tree node. Pos is the byte offset of the node's first token.
type Node interface {
	Pos() int
	String() string
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// ConstKind is the dynamic type of a Constant.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstBool
	ConstNone
)

// Constant is a literal.
type Constant struct {
	Kind   ConstKind
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Offset int
}

// NameContext tells whether a name is read or assigned.
type NameContext int

const (
	Load NameContext = iota
	Store
)

func (c NameContext) String() string {
	if c == Store {
		return "Store"
	}
	return "Load"
}

// Name is an identifier.
type Name struct {
	ID     string
	Ctx    NameContext
	Offset int
}

// UnaryOperator enumerates prefix operators.
type UnaryOperator int

const (
	USub UnaryOperator = iota
	UAdd
	Not
	Invert
)

func (op UnaryOperator) String() string {
	return [...]string{"-", "+", "not", "~"}[op]
}

// UnaryOp is a prefix operation.
type UnaryOp struct {
	Op      UnaryOperator
	Operand Expr
	Offset  int
}

// Operator enumerates binary arithmetic and bitwise operators.
type Operator int

const (
	Add Operator = iota
	Sub
	Mult
	Div
	FloorDiv
	Mod
	Pow
	BitAnd
	BitOr
	BitXor
)

var operatorSymbols = [...]string{"+", "-", "*", "/", "//", "%", "**", "&", "|", "^"}
var operatorNames = [...]string{"add", "sub", "mul", "div", "floordiv", "mod", "pow", "bitand", "bitor", "bitxor"}

func (op Operator) String() string { return operatorSymbols[op] }

// Describe returns a label such as "add(+)" used in error messages.
func (op Operator) Describe() string {
	return fmt.Sprintf("%s(%s)", operatorNames[op], operatorSymbols[op])
}

// BinOp is a binary arithmetic or bitwise operation.
type BinOp struct {
	Left   Expr
	Op     Operator
	Right  Expr
	Offset int
}

// BoolOperator is and / or.
type BoolOperator int

const (
	And BoolOperator = iota
	Or
)

func (op BoolOperator) String() string {
	if op == Or {
		return "or"
	}
	return "and"
}

// BoolOp joins operands with and / or. The parser always produces two operands,
// nesting longer chains to the left.
type BoolOp struct {
	Op     BoolOperator
	Values []Expr
	Offset int
}

// CmpOp enumerates comparison operators.
type CmpOp int

const (
	Eq CmpOp = iota
	NotEq
	Lt
	LtE
	Gt
	GtE
	In
	NotIn
	Is
	IsNot
)

var cmpSymbols = [...]string{"==", "!=", "<", "<=", ">", ">=", "in", "not in", "is", "is not"}

func (op CmpOp) String() string { return cmpSymbols[op] }

// Compare is a comparison; Python style chains hold more than one operator.
type Compare struct {
	Left        Expr
	Ops         []CmpOp
	Comparators []Expr
	Offset      int
}

// Call is a function call with positional arguments.
type Call struct {
	Func   Expr
	Args   []Expr
	Offset int
}

// FuncName returns the called name, or "" when the callee is not a plain name.
func (c *Call) FuncName() string {
	if n, ok := c.Func.(*Name); ok {
		return n.ID
	}
	return ""
}

// Tuple is a parenthesised, comma separated list.
type Tuple struct {
	Elts   []Expr
	Offset int
}

// Attribute is value.attr.
type Attribute struct {
	Value  Expr
	Attr   string
	Offset int
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	Value Expr
}

// Assign is target = value. Chained assignments hold several targets.
type Assign struct {
	Targets []Expr
	Value   Expr
	Offset  int
}

// AugAssign is target op= value.
type AugAssign struct {
	Target Expr
	Op     Operator
	Value  Expr
	Offset int
}

func (*Constant) exprNode()  {}
func (*Name) exprNode()      {}
func (*UnaryOp) exprNode()   {}
func (*BinOp) exprNode()     {}
func (*BoolOp) exprNode()    {}
func (*Compare) exprNode()   {}
func (*Call) exprNode()      {}
func (*Tuple) exprNode()     {}
func (*Attribute) exprNode() {}

func (*ExprStmt) stmtNode()  {}
func (*Assign) stmtNode()    {}
func (*AugAssign) stmtNode() {}

func (n *Constant) Pos() int  { return n.Offset }
func (n *Name) Pos() int      { return n.Offset }
func (n *UnaryOp) Pos() int   { return n.Offset }
func (n *BinOp) Pos() int     { return n.Offset }
func (n *BoolOp) Pos() int    { return n.Offset }
func (n *Compare) Pos() int   { return n.Offset }
func (n *Call) Pos() int      { return n.Offset }
func (n *Tuple) Pos() int     { return n.Offset }
func (n *Attribute) Pos() int { return n.Offset }
func (n *ExprStmt) Pos() int  { return n.Value.Pos() }
func (n *Assign) Pos() int    { return n.Offset }
func (n *AugAssign) Pos() int { return n.Offset }

func (n *Constant) String() string {
	switch n.Kind {
	case ConstInt:
		return strconv.FormatInt(n.Int, 10)
	case ConstFloat:
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	case ConstString:
		return "'" + n.Str + "'"
	case ConstBool:
		if n.Bool {
			return "True"
		}
		return "False"
	}
	return "None"
}

func (n *Name) String() string { return n.ID }

func (n *UnaryOp) String() string {
	if n.Op == Not {
		return "not " + n.Operand.String()
	}
	return n.Op.String() + n.Operand.String()
}

func (n *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

func (n *BoolOp) String() string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, " "+n.Op.String()+" ") + ")"
}

func (n *Compare) String() string {
	var b strings.Builder
	b.WriteString(n.Left.String())
	for i, op := range n.Ops {
		fmt.Fprintf(&b, " %s %s", op, n.Comparators[i])
	}
	return b.String()
}

func (n *Call) String() string {
	return n.Func.String() + "(" + joinNodes(n.Args) + ")"
}

func (n *Tuple) String() string {
	if len(n.Elts) == 1 {
		return "(" + n.Elts[0].String() + ",)"
	}
	return "(" + joinNodes(n.Elts) + ")"
}

func (n *Attribute) String() string { return n.Value.String() + "." + n.Attr }
func (n *ExprStmt) String() string  { return n.Value.String() }

func (n *Assign) String() string {
	return joinNodes(n.Targets) + " = " + n.Value.String()
}

func (n *AugAssign) String() string {
	return fmt.Sprintf("%s %s= %s", n.Target, n.Op, n.Value)
}

func joinNodes(nodes []Expr) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
