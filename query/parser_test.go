package query

import (
	"errors"
	"strings"
	"testing"
)

func TestParser_Expressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"comparison", "len(seq) > 100", "len(seq) > 100"},
		{"precedence", "a + b * 2", "(a + (b * 2))"},
		{"left associative", "a - b - c", "((a - b) - c)"},
		{"bitwise below arithmetic", "a | b & c + 1", "(a | (b & (c + 1)))"},
		{"unary minus", "-a * 2", "(-a * 2)"},
		{"power binds tighter than unary", "-a ** 2", "-(a ** 2)"},
		{"and chain nests left", "a > 1 and b > 2 and c > 3", "((a > 1 and b > 2) and c > 3)"},
		{"or below and", "a > 1 or b > 2 and c > 3", "(a > 1 or (b > 2 and c > 3))"},
		{"not in", "'AT' not in seq", "'AT' not in seq"},
		{"is not", "a is not None", "a is not None"},
		{"tuple", "a in (1, 2, 3)", "a in (1, 2, 3)"},
		{"single tuple", "a in (1,)", "a in (1,)"},
		{"grouping", "(a + b) * c", "((a + b) * c)"},
		{"attribute", "seq.upper", "seq.upper"},
		{"call with no args", "header()", "header()"},
		{"string concatenation", "'a' 'b'", "'ab'"},
		{"chained comparison kept", "1 < a < 3", "1 < a < 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseExpression(tt.input)
			if err != nil {
				t.Fatalf("ParseExpression() error = %v", err)
			}
			if got := e.String(); got != tt.want {
				t.Errorf("ParseExpression() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParser_BoolOpHasTwoOperands(t *testing.T) {
	e, err := ParseExpression("a > 1 and b > 2 and c > 3 and d > 4")
	if err != nil {
		t.Fatalf("ParseExpression() error = %v", err)
	}
	var walk func(Expr)
	walk = func(e Expr) {
		b, ok := e.(*BoolOp)
		if !ok {
			return
		}
		if len(b.Values) != 2 {
			t.Errorf("BoolOp has %d operands, want 2", len(b.Values))
		}
		for _, v := range b.Values {
			walk(v)
		}
	}
	walk(e)
}

func TestParser_Statements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, s Stmt)
	}{
		{
			name:  "alias assignment",
			input: "alias(gc) = gc(seq)",
			check: func(t *testing.T, s Stmt) {
				a, ok := s.(*Assign)
				if !ok {
					t.Fatalf("got %T, want *Assign", s)
				}
				if len(a.Targets) != 1 {
					t.Fatalf("got %d targets, want 1", len(a.Targets))
				}
				call, ok := a.Targets[0].(*Call)
				if !ok || call.FuncName() != "alias" {
					t.Errorf("target = %v, want alias call", a.Targets[0])
				}
			},
		},
		{
			name:  "name target is store context",
			input: "a = a + 1",
			check: func(t *testing.T, s Stmt) {
				a := s.(*Assign)
				if n := a.Targets[0].(*Name); n.Ctx != Store {
					t.Errorf("target ctx = %v, want Store", n.Ctx)
				}
				if n := a.Value.(*BinOp).Left.(*Name); n.Ctx != Load {
					t.Errorf("value ctx = %v, want Load", n.Ctx)
				}
			},
		},
		{
			name:  "chained assignment",
			input: "a = b = 1",
			check: func(t *testing.T, s Stmt) {
				if a := s.(*Assign); len(a.Targets) != 2 {
					t.Errorf("got %d targets, want 2", len(a.Targets))
				}
			},
		},
		{
			name:  "augmented assignment",
			input: "len += 1",
			check: func(t *testing.T, s Stmt) {
				a, ok := s.(*AugAssign)
				if !ok {
					t.Fatalf("got %T, want *AugAssign", s)
				}
				if a.Op != Add {
					t.Errorf("op = %v, want +", a.Op)
				}
			},
		},
		{
			name:  "expression statement",
			input: "print('{name}')",
			check: func(t *testing.T, s Stmt) {
				if _, ok := s.(*ExprStmt); !ok {
					t.Errorf("got %T, want *ExprStmt", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseStatement(tt.input)
			if err != nil {
				t.Fatalf("ParseStatement() error = %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "a > 1", []string{"a > 1"}},
		{"two statements", "a > 1; b < 2", []string{"a > 1", "b < 2"}},
		{"empty statements dropped", ";a > 1;; ;", []string{"a > 1"}},
		{"semicolon in string", "print('{a};{b}'); head(2)", []string{"print('{a};{b}')", "head(2)"}},
		{"empty program", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.input)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Split() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"missing operand", "a >", 3},
		{"unclosed call", "len(seq", 7},
		{"trailing tokens", "a b", 2},
		{"unterminated string", "a == 'x", 5},
		{"dangling operator", "* a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatement(tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %v is not a *SyntaxError", err)
			}
			if se.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", se.Offset, tt.offset)
			}
			if !strings.Contains(se.Caret(), "^") {
				t.Errorf("Caret() = %q, missing marker", se.Caret())
			}
		})
	}
}

func TestParser_DepthLimit(t *testing.T) {
	input := strings.Repeat("(", MaxExpressionDepth+5) + "1" + strings.Repeat(")", MaxExpressionDepth+5)
	if _, err := ParseExpression(input); err == nil {
		t.Fatal("expected depth error, got nil")
	}
}
