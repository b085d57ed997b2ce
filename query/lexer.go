package query

import (
	"strings"
)

// Lexer tokenizes filter expressions
type Lexer struct {
	input string
	pos   int
	start int
	ch    byte
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// offset is the byte offset of the current character
func (l *Lexer) offset() int {
	return l.pos - 1
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted string. ok is false when the closing quote is missing.
func (l *Lexer) readString(quote byte) (s string, ok bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.offset() < len(l.input) {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case '0':
				result.WriteByte(0)
			case '\\', '\'', '"':
				result.WriteByte(l.ch)
			default:
				result.WriteByte('\\')
				result.WriteByte(l.ch)
			}
		} else {
			result.WriteByte(l.ch)
		}
		l.readChar()
	}

	if l.ch != quote {
		return result.String(), false
	}
	l.readChar() // skip closing quote
	return result.String(), true
}

// readNumber reads an integer or float literal, allowing _ separators
func (l *Lexer) readNumber() (string, TokenType) {
	var result strings.Builder
	typ := TokenInt
	digits := func() {
		for isDigit(l.ch) || (l.ch == '_' && isDigit(l.peekChar())) {
			if l.ch != '_' {
				result.WriteByte(l.ch)
			}
			l.readChar()
		}
	}

	digits()
	if l.ch == '.' && l.peekChar() != '.' {
		typ = TokenFloat
		result.WriteByte('.')
		l.readChar()
		digits()
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			typ = TokenFloat
			result.WriteByte('e')
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				result.WriteByte(l.ch)
				l.readChar()
			}
			digits()
		}
	}
	return result.String(), typ
}

func (l *Lexer) readIdentifier() string {
	start := l.offset()
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.offset()]
}

// two emits a two-character token when the next character is next, otherwise
// the single-character token.
func (l *Lexer) two(next byte, double, single TokenType) Token {
	pos := l.offset()
	if l.peekChar() == next {
		value := l.input[pos : pos+2]
		l.readChar()
		l.readChar()
		return Token{Type: double, Value: value, Pos: pos}
	}
	value := l.input[pos : pos+1]
	l.readChar()
	return Token{Type: single, Value: value, Pos: pos}
}

// augmented handles op and op= forms for arithmetic and bitwise operators.
func (l *Lexer) augmented(single TokenType) Token {
	pos := l.offset()
	if l.peekChar() == '=' {
		value := l.input[pos : pos+2]
		l.readChar()
		l.readChar()
		return Token{Type: TokenAugAssign, Value: value, Pos: pos}
	}
	value := l.input[pos : pos+1]
	l.readChar()
	return Token{Type: single, Value: value, Pos: pos}
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	pos := l.offset()

	if pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: len(l.input)}
	}

	switch l.ch {
	case '=':
		return l.two('=', TokenEqualEqual, TokenAssign)
	case '!':
		if l.peekChar() == '=' {
			return l.two('=', TokenNotEqual, TokenError)
		}
		l.readChar()
		return Token{Type: TokenError, Value: "!", Pos: pos}
	case '<':
		return l.two('=', TokenLessEqual, TokenLess)
	case '>':
		return l.two('=', TokenGreaterEqual, TokenGreater)
	case '+':
		return l.augmented(TokenPlus)
	case '-':
		return l.augmented(TokenMinus)
	case '%':
		return l.augmented(TokenPercent)
	case '&':
		return l.augmented(TokenAmp)
	case '|':
		return l.augmented(TokenPipe)
	case '*':
		if l.peekChar() == '*' {
			return l.two('*', TokenDoubleStar, TokenStar)
		}
		return l.augmented(TokenStar)
	case '/':
		if l.peekChar() == '/' {
			return l.two('/', TokenDoubleSlash, TokenSlash)
		}
		return l.augmented(TokenSlash)
	case '^':
		l.readChar()
		return Token{Type: TokenCaret, Value: "^", Pos: pos}
	case '~':
		l.readChar()
		return Token{Type: TokenTilde, Value: "~", Pos: pos}
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Value: ",", Pos: pos}
	case ';':
		l.readChar()
		return Token{Type: TokenSemicolon, Value: ";", Pos: pos}
	case '(':
		l.readChar()
		return Token{Type: TokenLeftParen, Value: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: TokenRightParen, Value: ")", Pos: pos}
	case '\'', '"':
		value, ok := l.readString(l.ch)
		if !ok {
			return Token{Type: TokenError, Value: "unterminated string", Pos: pos}
		}
		return Token{Type: TokenString, Value: value, Pos: pos}
	case '.':
		if isDigit(l.peekChar()) {
			value, typ := l.readNumber()
			return Token{Type: typ, Value: value, Pos: pos}
		}
		l.readChar()
		return Token{Type: TokenDot, Value: ".", Pos: pos}
	}

	switch {
	case isDigit(l.ch):
		value, typ := l.readNumber()
		return Token{Type: typ, Value: value, Pos: pos}
	case isLetter(l.ch):
		value := l.readIdentifier()
		return Token{Type: identifierType(value), Value: value, Pos: pos}
	}
	value := string(l.ch)
	l.readChar()
	return Token{Type: TokenError, Value: value, Pos: pos}
}

// Tokenize returns all tokens of input, ending with TokenEOF or TokenError.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return tokens
		}
	}
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"is":    TokenIs,
	"True":  TokenTrue,
	"False": TokenFalse,
	"None":  TokenNone,
}

// identifierType determines if an identifier is a keyword
func identifierType(ident string) TokenType {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return TokenName
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
