package query

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Literals
	TokenName TokenType = iota
	TokenInt
	TokenFloat
	TokenString

	// Keywords
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenIs
	TokenTrue
	TokenFalse
	TokenNone

	// Operators
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenDoubleStar   // **
	TokenSlash        // /
	TokenDoubleSlash  // //
	TokenPercent      // %
	TokenAmp          // &
	TokenPipe         // |
	TokenCaret        // ^
	TokenTilde        // ~
	TokenEqualEqual   // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenAssign       // =
	TokenAugAssign    // += -= *= /= %= &= |=

	// Delimiters
	TokenComma      // ,
	TokenDot        // .
	TokenSemicolon  // ;
	TokenLeftParen  // (
	TokenRightParen // )

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenName: "name", TokenInt: "integer", TokenFloat: "float", TokenString: "string",
	TokenAnd: "and", TokenOr: "or", TokenNot: "not", TokenIn: "in", TokenIs: "is",
	TokenTrue: "True", TokenFalse: "False", TokenNone: "None",
	TokenPlus: "+", TokenMinus: "-", TokenStar: "*", TokenDoubleStar: "**",
	TokenSlash: "/", TokenDoubleSlash: "//", TokenPercent: "%", TokenAmp: "&",
	TokenPipe: "|", TokenCaret: "^", TokenTilde: "~", TokenEqualEqual: "==",
	TokenNotEqual: "!=", TokenLess: "<", TokenGreater: ">", TokenLessEqual: "<=",
	TokenGreaterEqual: ">=", TokenAssign: "=", TokenAugAssign: "augmented assignment",
	TokenComma: ",", TokenDot: ".", TokenSemicolon: ";", TokenLeftParen: "(",
	TokenRightParen: ")", TokenEOF: "end of input", TokenError: "invalid token",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token. Pos is the byte offset in the source.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}
