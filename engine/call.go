package engine

import (
	"slices"
	"strings"

	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/query"
)

// callSite is a call resolved against the registry. Resolution only depends
// on the syntax, so it is cached per node.
type callSite struct {
	builtin *Builtin
	name    string
	inplace bool
	cast    string
}

// invocation is what a builtin receives: the resolved call plus its
// unevaluated arguments.
type invocation struct {
	*callSite
	node *query.Call
	args []query.Expr
}

func (vm *VM) resolve(c *query.Call) (*callSite, error) {
	if cs, ok := vm.calls[c]; ok {
		return cs, nil
	}
	name := c.FuncName()
	if name == "" {
		return nil, syntaxErr("only named functions can be called, got %s", c.Func)
	}
	cs := &callSite{name: name}
	if len(name) > 1 && strings.HasSuffix(name, "_") {
		cs.inplace = true
		cs.name = strings.TrimSuffix(name, "_")
	}
	lookup := cs.name
	if t, ok := strings.CutPrefix(cs.name, "cast_"); ok {
		if _, known := castTypes[t]; !known {
			return nil, typeErr("cast: unsupported type %q", t)
		}
		cs.cast = t
		lookup = "cast"
	}
	b, ok := builtins.Get(lookup)
	if !ok {
		return nil, unknownFunctionErr(name, builtins.Suggest(lookup))
	}
	if cs.inplace && !b.Inplace {
		return nil, syntaxErr("%s has no inplace form %s_", b.Name, cs.name)
	}
	cs.builtin = b
	vm.calls[c] = cs
	return cs, nil
}

// call checks mode and arity before any argument is evaluated, then hands
// the call to the builtin.
func (vm *VM) call(c *query.Call) (Value, error) {
	cs, err := vm.resolve(c)
	if err != nil {
		return nil, err
	}
	b := cs.builtin
	if vm.mode == ModePrintable {
		if !b.Expression {
			return nil, modeErr("%s cannot be used inside a format string", cs.name)
		}
		if cs.inplace {
			return nil, modeErr("inplace %s_ cannot be used inside a format string", cs.name)
		}
	}
	if n := len(c.Args); n < b.MinArgs || (b.MaxArgs != Variadic && n > b.MaxArgs) {
		return nil, arityErr(cs.name, b.MinArgs, b.MaxArgs, n)
	}
	return b.fn(vm, &invocation{callSite: cs, node: c, args: c.Args})
}

func (vm *VM) arg(inv *invocation, i int) (Value, error) {
	return vm.eval(inv.args[i])
}

// column evaluates argument i as a column. It returns the column name, or
// "" for an unbound expression, and the expression reading it.
func (vm *VM) column(inv *invocation, i int) (string, frame.Expr, error) {
	v, err := vm.arg(inv, i)
	if err != nil {
		return "", nil, err
	}
	switch x := v.(type) {
	case Name:
		c, err := vm.source.ResolveColumn(x.ID)
		if err != nil {
			return "", nil, err
		}
		return c, frame.Col(c), nil
	case Str:
		c, err := vm.source.ResolveColumn(string(x))
		if err != nil {
			return "", nil, err
		}
		return c, frame.Col(c), nil
	case NamedExpr:
		if x.Name != "" && !vm.source.HasColumn(x.Name) {
			return "", nil, unknownColumnErr(x.Name, vm.source.Columns())
		}
		return x.Name, x.Node, nil
	}
	return "", nil, typeErr("%s: argument %d must be a column, got %s %s", inv.name, i+1, kind(v), v)
}

// columnNames evaluates arguments [from, to) as plain column names and
// rejects repeats.
func (vm *VM) columnNames(inv *invocation, from, to int) ([]string, error) {
	names := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		v, err := vm.arg(inv, i)
		if err != nil {
			return nil, err
		}
		switch v.(type) {
		case Name, Str:
		default:
			return nil, typeErr("%s: argument %d must be a column name, got %s %s", inv.name, i+1, kind(v), v)
		}
		n, _ := ColumnName(v)
		c, err := vm.source.ResolveColumn(n)
		if err != nil {
			return nil, err
		}
		if slices.Contains(names, c) {
			return nil, typeErr("%s: column %q is repeated", inv.name, c)
		}
		names = append(names, c)
	}
	return names, nil
}

func (vm *VM) intArg(inv *invocation, i int) (int64, error) {
	v, err := vm.arg(inv, i)
	if err != nil {
		return 0, err
	}
	n, ok := v.(Int)
	if !ok {
		return 0, typeErr("%s: argument %d must be an integer, got %s %s", inv.name, i+1, kind(v), v)
	}
	return int64(n), nil
}

// countArg is intArg for non-negative counts.
func (vm *VM) countArg(inv *invocation, i int) (int, error) {
	n, err := vm.intArg(inv, i)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, typeErr("%s: argument %d must not be negative, got %d", inv.name, i+1, n)
	}
	return int(n), nil
}

func (vm *VM) stringArg(inv *invocation, i int) (string, error) {
	v, err := vm.arg(inv, i)
	if err != nil {
		return "", err
	}
	s, ok := v.(Str)
	if !ok {
		return "", typeErr("%s: argument %d must be a string, got %s %s", inv.name, i+1, kind(v), v)
	}
	return string(s), nil
}

func (vm *VM) literalArg(inv *invocation, i int) (any, error) {
	v, err := vm.arg(inv, i)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case Int, Float, Str, Bool:
		x, _ := scalar(v)
		return x, nil
	}
	return nil, typeErr("%s: argument %d must be a constant, got %s %s", inv.name, i+1, kind(v), v)
}

// result finishes a column transform: the inplace form replaces the column
// and returns None, the functional form returns the expression.
func (vm *VM) result(inv *invocation, name string, e frame.Expr) (Value, error) {
	if !inv.inplace {
		return NamedExpr{Name: name, Node: e}, nil
	}
	if name == "" {
		return nil, typeErr("%s_: inplace form needs a column argument", inv.name)
	}
	vm.source.WithColumn(frame.Alias(e, name), "")
	return None{}, nil
}

// requireSource fails unless the source is one of types.
func (vm *VM) requireSource(inv *invocation, types ...SourceType) error {
	if slices.Contains(types, vm.source.Type()) {
		return nil
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return typeErr("%s is only supported for %s input, got %s", inv.name, strings.Join(names, "/"), vm.source.Type())
}
