package engine

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/query"
)

var (
	fragmentPattern = regexp.MustCompile(`\{([()a-zA-Z0-9_\-+/*,=\\ '".<>!%&|]*)\}`)
	identPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// template is a parsed print template: literal pieces around fragments.
// A fragment is either a bare column name or a parsed expression.
type template struct {
	pieces    []string
	fragments []fragment
}

type fragment struct {
	ident string
	expr  query.Expr
}

func compileTemplate(src string) (*template, error) {
	if src == "" {
		return nil, formatErr("empty format string")
	}
	t := &template{}
	last := 0
	for _, m := range fragmentPattern.FindAllStringSubmatchIndex(src, -1) {
		inner := strings.TrimSpace(src[m[2]:m[3]])
		if inner == "" {
			return nil, formatErr("empty placeholder {} in format string %q", src)
		}
		t.pieces = append(t.pieces, src[last:m[0]])
		last = m[1]
		if identPattern.MatchString(inner) {
			t.fragments = append(t.fragments, fragment{ident: inner})
			continue
		}
		e, err := query.ParseExpression(inner)
		if err != nil {
			return nil, formatErr("invalid placeholder {%s}: %v", inner, err)
		}
		t.fragments = append(t.fragments, fragment{expr: e})
	}
	t.pieces = append(t.pieces, src[last:])
	return t, nil
}

// template turns a print template into a format node over the current
// source. Fragment expressions run in printable mode with filters deferred,
// so they cannot change the plan.
func (vm *VM) template(src string) (frame.Expr, error) {
	t, ok := vm.templates[src]
	if !ok {
		var err error
		if t, err = compileTemplate(src); err != nil {
			return nil, err
		}
		vm.templates[src] = t
	}

	prevMode := vm.mode
	prevApply := vm.source.SetApplyImmediately(false)
	vm.mode = ModePrintable
	defer func() {
		vm.mode = prevMode
		vm.source.SetApplyImmediately(prevApply)
	}()

	args := make([]frame.Expr, len(t.fragments))
	for i, fr := range t.fragments {
		if fr.expr == nil {
			c, err := vm.source.ResolveColumn(fr.ident)
			if err != nil {
				return nil, err
			}
			args[i] = frame.Col(c)
			continue
		}
		v, err := vm.eval(fr.expr)
		if err != nil {
			return nil, err
		}
		if n, ok := v.(Name); ok {
			args[i], err = vm.columnExpr(n)
		} else {
			args[i], err = ToExpr(v)
		}
		if err != nil {
			return nil, err
		}
	}
	return frame.Format(t.pieces, args), nil
}
