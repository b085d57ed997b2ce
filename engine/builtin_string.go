package engine

import (
	"strings"

	"github.com/grafana/regexp"

	"github.com/vegasq/filterx/frame"
)

func stringBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "len", Group: GroupString, Expression: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Length of a value: characters for delimited input, bytes otherwise.",
			fn:  builtinLen,
		},
		{
			Name: "upper", Group: GroupString, Expression: true, Inplace: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Convert to upper case.",
			fn:  builtinCase,
		},
		{
			Name: "lower", Group: GroupString, Expression: true, Inplace: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Convert to lower case.",
			fn:  builtinCase,
		},
		{
			Name: "rev", Group: GroupString, Expression: true, Inplace: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Reverse a string.",
			fn:  builtinRev,
		},
		{
			Name: "strip", Aliases: []string{"lstrip", "rstrip"}, Group: GroupString, Expression: true, Inplace: true, MinArgs: 2, MaxArgs: 2,
			Doc: "Remove leading and/or trailing characters in a set: strip(col, chars).",
			fn:  builtinStrip,
		},
		{
			Name: "replace", Aliases: []string{"replace_one"}, Group: GroupString, Expression: true, Inplace: true, MinArgs: 3, MaxArgs: 3,
			Doc: "Replace all (replace) or the first (replace_one) occurrence of a literal: replace(col, old, new).",
			fn:  builtinReplace,
		},
		{
			Name: "slice", Group: GroupString, Expression: true, Inplace: true, MinArgs: 2, MaxArgs: 3,
			Doc: "slice(col, n) keeps the first n characters, slice(col, start, n) n characters from the 1-based start. slice(offset, n) keeps a window of rows.",
			fn:  builtinSlice,
		},
		{
			Name: "trim", Group: GroupString, Expression: true, Inplace: true, MinArgs: 3, MaxArgs: 3,
			Doc: "Drop left leading and right trailing characters: trim(col, left, right).",
			fn:  builtinTrim,
		},
		{
			Name: "extract", Group: GroupString, Expression: true, Inplace: true, MinArgs: 2, MaxArgs: 2,
			Doc: "First capture group (or whole match) of a regular expression, null when it does not match.",
			fn:  builtinExtract,
		},
	}
}

func builtinLen(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return NamedExpr{Name: name, Node: frame.Len(e, vm.source.Type() != SourceCSV)}, nil
}

func builtinCase(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	if inv.name == "upper" {
		return vm.result(inv, name, frame.Upper(e))
	}
	return vm.result(inv, name, frame.Lower(e))
}

func builtinRev(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return vm.result(inv, name, frame.MapString(e, "reverse", reverseRunes))
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func builtinStrip(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	chars, err := vm.stringArg(inv, 1)
	if err != nil {
		return nil, err
	}
	var fn func(string) string
	switch inv.name {
	case "lstrip":
		fn = func(s string) string { return strings.TrimLeft(s, chars) }
	case "rstrip":
		fn = func(s string) string { return strings.TrimRight(s, chars) }
	default:
		fn = func(s string) string { return strings.Trim(s, chars) }
	}
	return vm.result(inv, name, frame.MapString(e, inv.name, fn))
}

func builtinReplace(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	from, err := vm.stringArg(inv, 1)
	if err != nil {
		return nil, err
	}
	to, err := vm.stringArg(inv, 2)
	if err != nil {
		return nil, err
	}
	n := -1
	if inv.name == "replace_one" {
		n = 1
	}
	return vm.result(inv, name, frame.MapString(e, inv.name, func(s string) string {
		return strings.Replace(s, from, to, n)
	}))
}

// builtinSlice dispatches on the first argument: an integer selects the
// row window form, anything else slices strings.
func builtinSlice(vm *VM, inv *invocation) (Value, error) {
	first, err := vm.arg(inv, 0)
	if err != nil {
		return nil, err
	}
	if offset, ok := first.(Int); ok {
		if len(inv.args) != 2 {
			return nil, arityErr("slice", 2, 2, len(inv.args))
		}
		if inv.inplace {
			return nil, syntaxErr("slice_(offset, n) is not supported, use slice(offset, n)")
		}
		if vm.mode == ModePrintable {
			return nil, modeErr("row slice cannot be used inside a format string")
		}
		n, err := vm.countArg(inv, 1)
		if err != nil {
			return nil, err
		}
		return None{}, vm.sliceRows(int64(offset), n)
	}

	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	start, n := 0, 0
	if len(inv.args) == 2 {
		if n, err = vm.countArg(inv, 1); err != nil {
			return nil, err
		}
	} else {
		s, err := vm.intArg(inv, 1)
		if err != nil {
			return nil, err
		}
		if s < 1 {
			return nil, typeErr("slice: start is 1-based, got %d", s)
		}
		start = int(s) - 1
		if n, err = vm.countArg(inv, 2); err != nil {
			return nil, err
		}
	}
	return vm.result(inv, name, frame.MapString(e, "slice", func(s string) string {
		return substring(s, start, n)
	}))
}

// substring returns n characters starting at character start.
func substring(s string, start, n int) string {
	r := []rune(s)
	if start >= len(r) {
		return ""
	}
	return string(r[start:min(start+n, len(r))])
}

func builtinTrim(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	left, err := vm.countArg(inv, 1)
	if err != nil {
		return nil, err
	}
	right, err := vm.countArg(inv, 2)
	if err != nil {
		return nil, err
	}
	return vm.result(inv, name, frame.MapString(e, "trim", func(s string) string {
		r := []rune(s)
		if left+right >= len(r) {
			return ""
		}
		return string(r[left : len(r)-right])
	}))
}

func builtinExtract(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	pattern, err := vm.stringArg(inv, 1)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, typeErr("extract: invalid regular expression %q: %v", pattern, err)
	}
	return vm.result(inv, name, frame.Map(e, "extract", frame.String, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			s = frame.FormatValue(v)
		}
		m := re.FindStringSubmatch(s)
		switch {
		case m == nil:
			return nil, nil
		case len(m) > 1:
			return m[1], nil
		default:
			return m[0], nil
		}
	}))
}
