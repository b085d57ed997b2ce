package query

import (
	"errors"
	"fmt"
)

// Validation limits to keep hostile input from exhausting the parser
const (
	// MaxExpressionLength is the maximum allowed length of one expression (1MB)
	MaxExpressionLength = 1024 * 1024

	// MaxTokens is the maximum number of tokens in one statement
	MaxTokens = 10000

	// MaxExpressionDepth is the maximum nesting depth for expressions
	MaxExpressionDepth = 100
)

var (
	// ErrExpressionTooLong is returned when input exceeds MaxExpressionLength
	ErrExpressionTooLong = errors.New("expression too long")

	// ErrTooManyTokens is returned when a statement has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in expression")

	// ErrExpressionTooDeep is returned when nesting exceeds MaxExpressionDepth
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
)

// ValidateExpression checks the raw input size
func ValidateExpression(src string) error {
	if len(src) > MaxExpressionLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrExpressionTooLong, len(src), MaxExpressionLength)
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// depthCounter tracks recursion depth while parsing nested expressions
type depthCounter struct {
	depth int
}

func (d *depthCounter) enter() error {
	d.depth++
	if d.depth > MaxExpressionDepth {
		return fmt.Errorf("%w: max depth %d", ErrExpressionTooDeep, MaxExpressionDepth)
	}
	return nil
}

func (d *depthCounter) exit() {
	d.depth--
}
