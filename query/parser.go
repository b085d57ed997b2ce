package query

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Source string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Caret renders the source with a marker under the offending byte.
func (e *SyntaxError) Caret() string {
	off := min(max(e.Offset, 0), len(e.Source))
	return e.Source + "\n" + strings.Repeat(" ", off) + "^"
}

// Parser builds a syntax tree from tokens
type Parser struct {
	src    string
	tokens []Token
	pos    int
	depth  depthCounter
}

// NewParser creates a new parser
func NewParser(src string, tokens []Token) *Parser {
	return &Parser{src: src, tokens: tokens}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: len(p.src)}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: len(p.src)}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != tokType {
		return tok, p.errorf(tok, "expected %v, got %s", tokType, describe(tok))
	}
	p.advance()
	return tok, nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Offset: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenError:
		return fmt.Sprintf("invalid token %q", tok.Value)
	case TokenString:
		return fmt.Sprintf("string %q", tok.Value)
	}
	return fmt.Sprintf("%q", tok.Value)
}

func tokenize(src string) ([]Token, error) {
	if err := ValidateExpression(src); err != nil {
		return nil, err
	}
	tokens := Tokenize(src)
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		return nil, &SyntaxError{Source: src, Offset: last.Pos, Msg: describe(last)}
	}
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Split cuts a program into its ';' separated statements. Semicolons inside
// string literals do not split. Empty statements are dropped.
func Split(src string) ([]string, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	var out []string
	start := 0
	for _, tok := range tokens {
		if tok.Type != TokenSemicolon && tok.Type != TokenEOF {
			continue
		}
		if s := strings.TrimSpace(src[start:tok.Pos]); s != "" {
			out = append(out, s)
		}
		start = tok.Pos + 1
	}
	return out, nil
}

// Parse parses every statement of a program.
func Parse(src string) ([]Stmt, error) {
	parts, err := Split(src)
	if err != nil {
		return nil, err
	}
	stmts := make([]Stmt, 0, len(parts))
	for _, part := range parts {
		s, err := ParseStatement(part)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// ParseStatement parses a single statement: an expression, an assignment or
// an augmented assignment.
func ParseStatement(src string) (Stmt, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := NewParser(src, tokens)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s after statement", describe(tok))
	}
	return stmt, nil
}

// ParseExpression parses a single expression.
func ParseExpression(src string) (Expr, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := NewParser(src, tokens)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s after expression", describe(tok))
	}
	return e, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	start := p.current()
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	switch p.current().Type {
	case TokenAssign:
		targets := []Expr{first}
		var value Expr
		for p.current().Type == TokenAssign {
			p.advance()
			if value, err = p.parseExpr(); err != nil {
				return nil, err
			}
			targets = append(targets, value)
		}
		targets = targets[:len(targets)-1]
		for _, t := range targets {
			if n, ok := t.(*Name); ok {
				n.Ctx = Store
			}
		}
		return &Assign{Targets: targets, Value: value, Offset: start.Pos}, nil
	case TokenAugAssign:
		tok := p.advance()
		op, ok := augOperators[tok.Value]
		if !ok {
			return nil, p.errorf(tok, "unsupported augmented assignment %q", tok.Value)
		}
		if n, ok := first.(*Name); ok {
			n.Ctx = Store
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AugAssign{Target: first, Op: op, Value: value, Offset: start.Pos}, nil
	}
	return &ExprStmt{Value: first}, nil
}

var augOperators = map[string]Operator{
	"+=": Add, "-=": Sub, "*=": Mult, "/=": Div, "%=": Mod, "&=": BitAnd, "|=": BitOr,
}

func (p *Parser) parseExpr() (Expr, error) {
	if err := p.depth.enter(); err != nil {
		return nil, p.errorf(p.current(), "%v", err)
	}
	defer p.depth.exit()
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BoolOp{Op: Or, Values: []Expr{left, right}, Offset: left.Pos()}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BoolOp{Op: And, Values: []Expr{left, right}, Offset: left.Pos()}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if tok := p.current(); tok.Type == TokenNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: Not, Operand: operand, Offset: tok.Pos}, nil
	}
	return p.parseComparison()
}

func (p *Parser) compareOp() (CmpOp, bool) {
	switch p.current().Type {
	case TokenEqualEqual:
		return Eq, true
	case TokenNotEqual:
		return NotEq, true
	case TokenLess:
		return Lt, true
	case TokenLessEqual:
		return LtE, true
	case TokenGreater:
		return Gt, true
	case TokenGreaterEqual:
		return GtE, true
	case TokenIn:
		return In, true
	case TokenNot:
		if p.peek().Type == TokenIn {
			return NotIn, true
		}
	case TokenIs:
		if p.peek().Type == TokenNot {
			return IsNot, true
		}
		return Is, true
	}
	return 0, false
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	var cmp *Compare
	for {
		op, ok := p.compareOp()
		if !ok {
			break
		}
		p.advance()
		if op == NotIn || op == IsNot {
			p.advance()
		}
		right, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if cmp == nil {
			cmp = &Compare{Left: left, Offset: left.Pos()}
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Comparators = append(cmp.Comparators, right)
	}
	if cmp == nil {
		return left, nil
	}
	return cmp, nil
}

// binaryLevels lists binary operators from loosest to tightest binding.
var binaryLevels = []map[TokenType]Operator{
	{TokenPipe: BitOr},
	{TokenCaret: BitXor},
	{TokenAmp: BitAnd},
	{TokenPlus: Add, TokenMinus: Sub},
	{TokenStar: Mult, TokenSlash: Div, TokenDoubleSlash: FloorDiv, TokenPercent: Mod},
}

func (p *Parser) parseBinary(level int) (Expr, error) {
	if level == len(binaryLevels) {
		return p.parseFactor()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryLevels[level][p.current().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Left: left, Op: op, Right: right, Offset: left.Pos()}
	}
}

func (p *Parser) parseFactor() (Expr, error) {
	tok := p.current()
	var op UnaryOperator
	switch tok.Type {
	case TokenMinus:
		op = USub
	case TokenPlus:
		op = UAdd
	case TokenTilde:
		op = Invert
	default:
		return p.parsePower()
	}
	p.advance()
	if err := p.depth.enter(); err != nil {
		return nil, p.errorf(tok, "%v", err)
	}
	defer p.depth.exit()
	operand, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return &UnaryOp{Op: op, Operand: operand, Offset: tok.Pos}, nil
}

func (p *Parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.current().Type == TokenDoubleStar {
		p.advance()
		exp, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &BinOp{Left: base, Op: Pow, Right: exp, Offset: base.Pos()}, nil
	}
	return base, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().Type {
		case TokenLeftParen:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			e = &Call{Func: e, Args: args, Offset: e.Pos()}
		case TokenDot:
			p.advance()
			name, err := p.expect(TokenName)
			if err != nil {
				return nil, err
			}
			e = &Attribute{Value: e, Attr: name.Value, Offset: e.Pos()}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parseArgs() ([]Expr, error) {
	p.advance() // (
	var args []Expr
	for p.current().Type != TokenRightParen {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseAtom() (Expr, error) {
	tok := p.current()
	switch tok.Type {
	case TokenName:
		p.advance()
		return &Name{ID: tok.Value, Ctx: Load, Offset: tok.Pos}, nil
	case TokenInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid integer %q", tok.Value)
		}
		return &Constant{Kind: ConstInt, Int: n, Offset: tok.Pos}, nil
	case TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid float %q", tok.Value)
		}
		return &Constant{Kind: ConstFloat, Float: f, Offset: tok.Pos}, nil
	case TokenString:
		p.advance()
		s := tok.Value
		for p.current().Type == TokenString {
			s += p.advance().Value
		}
		return &Constant{Kind: ConstString, Str: s, Offset: tok.Pos}, nil
	case TokenTrue, TokenFalse:
		p.advance()
		return &Constant{Kind: ConstBool, Bool: tok.Type == TokenTrue, Offset: tok.Pos}, nil
	case TokenNone:
		p.advance()
		return &Constant{Kind: ConstNone, Offset: tok.Pos}, nil
	case TokenLeftParen:
		return p.parseParen()
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

// parseParen handles grouping and tuple literals.
func (p *Parser) parseParen() (Expr, error) {
	open := p.advance()
	if p.current().Type == TokenRightParen {
		p.advance()
		return &Tuple{Offset: open.Pos}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenComma {
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return first, nil
	}
	elts := []Expr{first}
	for p.current().Type == TokenComma {
		p.advance()
		if p.current().Type == TokenRightParen {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return &Tuple{Elts: elts, Offset: open.Pos}, nil
}
