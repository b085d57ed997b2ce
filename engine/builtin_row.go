package engine

import (
	"io"
	"slices"

	"github.com/vegasq/filterx/frame"
)

const defaultHead = 5

func rowBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "head", Group: GroupRow, MinArgs: 0, MaxArgs: 1,
			Doc: "Keep the first n rows (default 5).",
			fn:  builtinHead,
		},
		{
			Name: "limit", Group: GroupRow, MinArgs: 1, MaxArgs: 1,
			Doc: "Emit at most n rows.",
			fn:  builtinHead,
		},
		{
			Name: "tail", Group: GroupRow, MinArgs: 0, MaxArgs: 1,
			Doc: "Keep the last n rows (default 5). Not available for fasta/fastq input.",
			fn:  builtinTail,
		},
		{
			Name: "occ", Aliases: []string{"occ_gte", "occ_lte"}, Group: GroupRow, MinArgs: 2, MaxArgs: Variadic,
			Doc: "Keep rows whose group, keyed by the given columns, has at least (occ, occ_gte) or at most (occ_lte) n rows: occ(col..., n).",
			fn:  builtinOcc,
		},
		{
			Name: "print", Aliases: []string{"format", "fmt", "f"}, Group: GroupRow, MinArgs: 1, MaxArgs: 1,
			Doc: "Write one line per row from a template: print('{name}\\t{len(seq)}').",
			fn:  builtinPrint,
		},
	}
}

func builtinHead(vm *VM, inv *invocation) (Value, error) {
	n := defaultHead
	if len(inv.args) == 1 {
		var err error
		if n, err = vm.countArg(inv, 0); err != nil {
			return nil, err
		}
	}
	return None{}, vm.sliceRows(0, n)
}

// sliceRows keeps a window of rows. Tabular sources slice the plan;
// streaming sources have no random access, so the window is enforced by
// the emit counters instead.
func (vm *VM) sliceRows(offset int64, n int) error {
	if !vm.source.Type().IsStream() {
		vm.source.Slice(offset, n)
		return nil
	}
	if offset < 0 {
		return typeErr("slice: negative offsets are not supported for %s input", vm.source.Type())
	}
	vm.status.Offset = int(offset)
	vm.status.LimitRows = min(vm.status.LimitRows, n)
	return nil
}

func builtinTail(vm *VM, inv *invocation) (Value, error) {
	if vm.source.Type().IsStream() {
		return nil, typeErr("tail is not supported for %s input", vm.source.Type())
	}
	n := defaultHead
	if len(inv.args) == 1 {
		var err error
		if n, err = vm.countArg(inv, 0); err != nil {
			return nil, err
		}
	}
	vm.source.Tail(n)
	return None{}, nil
}

// builtinOcc filters rows by the size of the group they belong to: rows
// are grouped by the key columns, groups are counted and thresholded, and
// the surviving keys are semi-joined back onto the rows.
func builtinOcc(vm *VM, inv *invocation) (Value, error) {
	last := len(inv.args) - 1
	keys, err := vm.columnNames(inv, 0, last)
	if err != nil {
		return nil, err
	}
	threshold, err := vm.intArg(inv, last)
	if err != nil {
		return nil, err
	}
	if threshold < 1 {
		return nil, typeErr("%s: threshold must be at least 1, got %d", inv.name, threshold)
	}

	countName := "count"
	for slices.Contains(vm.source.columns, countName) {
		countName = "_" + countName
	}
	count := frame.Col(countName)
	var keep frame.Expr
	if inv.name == "occ_lte" {
		keep = frame.LtEq(count, frame.Lit(threshold))
	} else {
		keep = frame.GtEq(count, frame.Lit(threshold))
	}

	keyCols := make([]frame.Expr, len(keys))
	for i, k := range keys {
		keyCols[i] = frame.Col(k)
	}
	plan := vm.source.Plan()
	groups := plan.GroupByCount(keys, countName).Filter(keep).Select(keyCols...)
	vm.source.setPlan(plan.SemiJoin(groups, keys))
	return None{}, nil
}

func builtinPrint(vm *VM, inv *invocation) (Value, error) {
	v, err := vm.arg(inv, 0)
	if err != nil {
		return nil, err
	}
	s, ok := v.(Str)
	if !ok {
		return nil, typeErr("%s: argument must be a string template, got %s %s", inv.name, kind(v), v)
	}
	node, err := vm.template(string(s))
	if err != nil {
		return nil, err
	}
	f, err := vm.source.plan.Select(frame.Alias(node, "print")).Collect()
	if err != nil {
		return nil, runtimeErr(err)
	}
	lines, err := f.Column("print")
	if err != nil {
		return nil, runtimeErr(err)
	}
	err = vm.emitRows(f.Height(), func(i int) error {
		_, err := io.WriteString(vm.out, frame.FormatValue(lines.Value(i))+"\n")
		return err
	})
	if err != nil {
		return nil, runtimeErr(err)
	}
	vm.status.Printed = true
	return None{}, nil
}
