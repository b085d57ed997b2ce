package engine

import (
	"github.com/go-kit/log/level"

	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/output"
)

// RecordSource produces bounded batches of decoded records with a fixed
// column set.
type RecordSource interface {
	Columns() []string
	// Pull returns at most n records. An empty frame means the input is
	// exhausted.
	Pull(n int) (*frame.Frame, error)
}

// Stream evaluates program against records chunk by chunk. Each chunk is
// bound to a fresh Source, the program is re-run against it, and surviving
// rows are written as FASTA or FASTQ unless a statement already printed
// them.
func (vm *VM) Stream(records RecordSource, program string) error {
	stmts, err := vm.compile(program)
	if err != nil {
		return err
	}
	typ := vm.source.Type()
	columns := records.Columns()
	w := output.NewFastxWriter(vm.out)

	for {
		st := &vm.status
		if st.Stop || st.ConsumeRows >= st.LimitRows {
			return nil
		}
		want := st.ChunkSize
		if st.Skipped >= st.Offset {
			want = min(want, st.remaining())
		}
		f, err := records.Pull(want)
		if err != nil {
			return err
		}
		if f.Height() == 0 {
			st.Stop = true
			return nil
		}
		vm.metrics.chunk(f.Height())

		vm.source = NewSource(NewPlan(f), typ, columns, true)
		st.Printed = false
		if err := vm.run(stmts); err != nil {
			return err
		}
		if st.Printed {
			continue
		}
		out, err := vm.source.Collect()
		if err != nil {
			return err
		}
		if err := vm.serialize(w, out); err != nil {
			return runtimeErr(err)
		}
		level.Debug(vm.logger).Log("msg", "chunk done", "records", f.Height(), "kept", out.Height(), "emitted", st.ConsumeRows)
	}
}

func (vm *VM) serialize(w *output.FastxWriter, f *frame.Frame) error {
	cols, err := fastxColumns(f)
	if err != nil {
		return err
	}
	fastq := vm.source.Type() == SourceFastq && cols.qual != nil
	return vm.emitRows(f.Height(), func(i int) error {
		name, comm, seq, qual := cols.record(i)
		if fastq {
			return w.WriteFastq(name, comm, seq, qual)
		}
		return w.WriteFasta(name, comm, seq)
	})
}

// emitRows calls write for rows 0..n-1, skipping rows still covered by
// Offset and stopping once LimitRows rows have been emitted.
func (vm *VM) emitRows(n int, write func(i int) error) error {
	st := &vm.status
	emitted := 0
	defer func() { vm.metrics.emitted(emitted) }()
	for i := 0; i < n; i++ {
		if st.Skipped < st.Offset {
			st.Skipped++
			continue
		}
		if st.ConsumeRows >= st.LimitRows {
			return nil
		}
		if err := write(i); err != nil {
			return err
		}
		st.ConsumeRows++
		emitted++
	}
	return nil
}
