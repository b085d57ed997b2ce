package engine

import (
	"fmt"
	"strings"

	"github.com/vegasq/filterx/bio"
	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/output"
)

func sequenceBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name: "gc", Group: GroupSequence, Expression: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Fraction of G and C bases.",
			fn:  builtinGC,
		},
		{
			Name: "revcomp", Group: GroupSequence, Expression: true, Inplace: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Reverse complement of a DNA or RNA sequence.",
			fn:  builtinRevcomp,
		},
		{
			Name: "hpc", Group: GroupSequence, Expression: true, Inplace: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Homopolymer compression: collapse runs of the same base.",
			fn:  builtinHPC,
		},
		{
			Name: "qual", Group: GroupSequence, Expression: true, MinArgs: 1, MaxArgs: 1,
			Doc: "Mean phred quality score of a quality string.",
			fn:  builtinQual,
		},
		{
			Name: "phred", Group: GroupSequence, MinArgs: 0, MaxArgs: 0,
			Doc: "Print the quality encoding of the input, then stop.",
			fn:  builtinPhred,
		},
		{
			Name: "width", Group: GroupSequence, Expression: true, Inplace: true, MinArgs: 2, MaxArgs: 2,
			Doc: "Wrap a sequence every n characters (0 leaves it unchanged).",
			fn:  builtinWidth,
		},
		{
			Name: "to_fasta", Aliases: []string{"to_fa"}, Group: GroupSequence, MinArgs: 0, MaxArgs: 0,
			Doc: "Write records as FASTA.",
			fn:  builtinToFastx,
		},
		{
			Name: "to_fastq", Aliases: []string{"to_fq"}, Group: GroupSequence, MinArgs: 0, MaxArgs: 0,
			Doc: "Write records as FASTQ; a missing quality is padded with '?'.",
			fn:  builtinToFastx,
		},
	}
}

func builtinGC(vm *VM, inv *invocation) (Value, error) {
	if vm.source.Type() == SourceFasta && vm.opts.SeqType == bio.Protein {
		return nil, typeErr("gc is not defined for protein sequences")
	}
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return NamedExpr{Name: name, Node: frame.Map(e, "gc", frame.Float, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("requires a string value, got %v", v)
		}
		return bio.GC(s), nil
	})}, nil
}

// seqType is the alphabet revcomp uses. FASTQ input is DNA unless RNA was
// requested.
func (vm *VM) seqType() bio.SeqType {
	if vm.source.Type() == SourceFastq && vm.opts.SeqType != bio.RNA {
		return bio.DNA
	}
	return vm.opts.SeqType
}

func builtinRevcomp(vm *VM, inv *invocation) (Value, error) {
	if err := vm.requireSource(inv, SourceFasta, SourceFastq); err != nil {
		return nil, err
	}
	t := vm.seqType()
	if t != bio.DNA && t != bio.RNA {
		return nil, typeErr("revcomp is only defined for dna and rna sequences, got %s", t)
	}
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return vm.result(inv, name, frame.Map(e, "revcomp", frame.String, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("requires a string value, got %v", v)
		}
		return bio.ReverseComplement(s, t)
	}))
}

func builtinHPC(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return vm.result(inv, name, frame.MapString(e, "hpc", bio.Homopolymer))
}

func builtinQual(vm *VM, inv *invocation) (Value, error) {
	if err := vm.requireSource(inv, SourceFastq); err != nil {
		return nil, err
	}
	table, err := vm.qualityTable()
	if err != nil {
		return nil, err
	}
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	return NamedExpr{Name: name, Node: frame.Map(e, "qual", frame.Float, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("requires a string value, got %v", v)
		}
		return table.Mean(s), nil
	})}, nil
}

func builtinPhred(vm *VM, inv *invocation) (Value, error) {
	if err := vm.requireSource(inv, SourceFastq); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(vm.out, "phred: %s\n", vm.opts.QualityType); err != nil {
		return nil, runtimeErr(err)
	}
	vm.status.Printed = true
	vm.status.Stop = true
	return None{}, nil
}

func builtinWidth(vm *VM, inv *invocation) (Value, error) {
	name, e, err := vm.column(inv, 0)
	if err != nil {
		return nil, err
	}
	width, err := vm.countArg(inv, 1)
	if err != nil {
		return nil, err
	}
	return vm.result(inv, name, frame.MapString(e, "width", func(s string) string {
		return bio.Wrap(s, width)
	}))
}

func builtinToFastx(vm *VM, inv *invocation) (Value, error) {
	if err := vm.requireSource(inv, SourceFasta, SourceFastq); err != nil {
		return nil, err
	}
	f, err := vm.source.Collect()
	if err != nil {
		return nil, err
	}
	cols, err := fastxColumns(f)
	if err != nil {
		return nil, err
	}
	w := output.NewFastxWriter(vm.out)
	fastq := strings.HasSuffix(inv.name, "q")
	err = vm.emitRows(f.Height(), func(i int) error {
		if fastq {
			return w.WriteFastq(cols.record(i))
		}
		name, comm, seq, _ := cols.record(i)
		return w.WriteFasta(name, comm, seq)
	})
	if err != nil {
		return nil, runtimeErr(err)
	}
	vm.status.Printed = true
	return None{}, nil
}

// fastx holds the record columns of a sequence frame. comm and qual may be
// missing.
type fastx struct {
	name, comm, seq, qual *frame.Series
}

func fastxColumns(f *frame.Frame) (*fastx, error) {
	var c fastx
	var err error
	if c.name, err = f.Column("name"); err != nil {
		return nil, typeErr("sequence output needs the name column, it was removed")
	}
	if c.seq, err = f.Column("seq"); err != nil {
		return nil, typeErr("sequence output needs the seq column, it was removed")
	}
	c.comm, _ = f.Column("comm")
	c.qual, _ = f.Column("qual")
	return &c, nil
}

// record returns one row. A missing quality is padded with '?' to the
// sequence length.
func (c *fastx) record(i int) (name, comm, seq, qual string) {
	name = frame.FormatValue(c.name.Value(i))
	seq = frame.FormatValue(c.seq.Value(i))
	if c.comm != nil {
		comm = frame.FormatValue(c.comm.Value(i))
	}
	if c.qual != nil {
		qual = frame.FormatValue(c.qual.Value(i))
	} else {
		qual = strings.Repeat("?", len(seq))
	}
	return name, comm, seq, qual
}
