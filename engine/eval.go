package engine

import (
	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/query"
)

func (vm *VM) evalStmt(s query.Stmt) error {
	switch n := s.(type) {
	case *query.ExprStmt:
		_, err := vm.eval(n.Value)
		return err
	case *query.Assign:
		return vm.assign(n)
	case *query.AugAssign:
		return vm.augAssign(n)
	}
	return syntaxErr("unsupported statement %s", s)
}

func (vm *VM) eval(e query.Expr) (Value, error) {
	switch n := e.(type) {
	case *query.Constant:
		return constant(n), nil
	case *query.Name:
		if n.Ctx == query.Store {
			return nil, syntaxErr("%s is an assignment target and cannot be read", n.ID)
		}
		return Name{ID: n.ID, Ctx: n.Ctx}, nil
	case *query.UnaryOp:
		return vm.unary(n)
	case *query.BinOp:
		return vm.binary(n)
	case *query.Compare:
		return vm.compare(n)
	case *query.BoolOp:
		return vm.boolOp(n)
	case *query.Call:
		return vm.call(n)
	case *query.Tuple:
		return vm.tuple(n)
	case *query.Attribute:
		return None{}, nil
	}
	return nil, syntaxErr("unsupported expression %s", e)
}

func constant(c *query.Constant) Value {
	switch c.Kind {
	case query.ConstInt:
		return Int(c.Int)
	case query.ConstFloat:
		return Float(c.Float)
	case query.ConstString:
		return Str(c.Str)
	case query.ConstBool:
		return Bool(c.Bool)
	}
	return Null{}
}

// tuple evaluates a parenthesised list. Elements must be constants or calls.
func (vm *VM) tuple(t *query.Tuple) (Value, error) {
	out := make(List, 0, len(t.Elts))
	for _, e := range t.Elts {
		switch e.(type) {
		case *query.Constant, *query.Call:
		default:
			return nil, syntaxErr("tuple elements must be constants or calls, got %s", e)
		}
		v, err := vm.eval(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// assign handles `alias(new) = expr` and `existing = expr`.
func (vm *VM) assign(a *query.Assign) error {
	if len(a.Targets) != 1 {
		return syntaxErr("only one assignment target is supported, got %d", len(a.Targets))
	}
	var name, newName string
	switch t := a.Targets[0].(type) {
	case *query.Call:
		if t.FuncName() != "alias" {
			return syntaxErr("cannot assign to %s; use `alias(name) = ...` to create a column", t)
		}
		if len(t.Args) != 1 {
			return arityErr("alias", 1, 1, len(t.Args))
		}
		n, err := aliasName(t.Args[0])
		if err != nil {
			return err
		}
		name = n
		if !vm.source.HasColumn(n) {
			newName = n
		}
	case *query.Name:
		if !vm.source.HasColumn(t.ID) {
			e := unknownColumnErr(t.ID, vm.source.Columns()).(*Error)
			e.Msg += "; use `alias` to create a new column"
			return e
		}
		name = t.ID
	default:
		return syntaxErr("cannot assign to %s", a.Targets[0])
	}

	switch a.Value.(type) {
	case *query.Constant, *query.Name, *query.Call, *query.UnaryOp, *query.BinOp:
	default:
		return syntaxErr("assigned value must be a constant, column, call or arithmetic expression, got %s", a.Value)
	}
	v, err := vm.eval(a.Value)
	if err != nil {
		return err
	}
	if n, ok := v.(Name); ok {
		if _, err := vm.source.ResolveColumn(n.ID); err != nil {
			return err
		}
	}
	expr, err := ToExpr(v)
	if err != nil {
		return err
	}
	vm.source.WithColumn(frame.Alias(expr, name), newName)
	return nil
}

func aliasName(e query.Expr) (string, error) {
	switch n := e.(type) {
	case *query.Name:
		return n.ID, nil
	case *query.Constant:
		if n.Kind == query.ConstString {
			return n.Str, nil
		}
	}
	return "", typeErr("alias requires a column name, got %s", e)
}

// augAssign handles `col op= value` for an existing column.
func (vm *VM) augAssign(a *query.AugAssign) error {
	t, ok := a.Target.(*query.Name)
	if !ok {
		return syntaxErr("augmented assignment target must be a column, got %s", a.Target)
	}
	if !vm.source.HasColumn(t.ID) {
		return unknownColumnErr(t.ID, vm.source.Columns())
	}
	rhs, err := vm.eval(a.Value)
	if err != nil {
		return err
	}
	v, err := vm.arith(a.Op, Name{ID: t.ID}, rhs)
	if err != nil {
		return err
	}
	expr, err := ToExpr(v)
	if err != nil {
		return err
	}
	vm.source.WithColumn(frame.Alias(expr, t.ID), "")
	return nil
}
