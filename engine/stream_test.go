package engine

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/filterx/bio"
	"github.com/vegasq/filterx/frame"
)

// fakeRecords serves n generated FASTA or FASTQ records.
type fakeRecords struct {
	columns []string
	total   int
	next    int
	pulls   []int
}

func newFakeRecords(total int, fastq bool) *fakeRecords {
	cols := []string{"name", "comm", "seq"}
	if fastq {
		cols = append(cols, "qual")
	}
	return &fakeRecords{columns: cols, total: total}
}

func (r *fakeRecords) Columns() []string { return r.columns }

func (r *fakeRecords) Pull(n int) (*frame.Frame, error) {
	r.pulls = append(r.pulls, n)
	end := min(r.next+n, r.total)
	rows := make([][]any, 0, end-r.next)
	for i := r.next; i < end; i++ {
		seq := strings.Repeat("ACGT", 1+i%3)
		row := []any{fmt.Sprintf("r%d", i), "c", seq}
		if len(r.columns) == 4 {
			row = append(row, strings.Repeat("I", len(seq)))
		}
		rows = append(rows, row)
	}
	r.next = end
	if len(rows) == 0 {
		cols := make([]*frame.Series, len(r.columns))
		for i, c := range r.columns {
			cols[i] = frame.NewSeries(c, frame.String, nil)
		}
		return frame.New(cols...)
	}
	return frame.FromRows(r.columns, rows)
}

func newStreamVM(typ SourceType, columns []string, chunk int) (*VM, *bytes.Buffer) {
	var out bytes.Buffer
	return New(NewStreamSource(typ, columns), Options{Output: &out, ChunkSize: chunk}), &out
}

func TestStreamLimit(t *testing.T) {
	for _, chunk := range []int{1, 64, 4096, 100000} {
		t.Run(fmt.Sprintf("chunk=%d", chunk), func(t *testing.T) {
			records := newFakeRecords(10000, false)
			vm, out := newStreamVM(SourceFasta, records.Columns(), chunk)
			require.NoError(t, vm.Stream(records, "limit(250)"))

			assert.Equal(t, 250, strings.Count(out.String(), ">"))
			assert.Equal(t, 250, vm.Status().ConsumeRows)
			assert.True(t, strings.HasPrefix(out.String(), ">r0 c\nACGT\n"))
			for _, n := range records.pulls {
				assert.LessOrEqual(t, n, chunk)
			}
		})
	}
}

func TestStreamLimitWithFilterAndPrint(t *testing.T) {
	for _, chunk := range []int{1, 64, 4096, 100000} {
		t.Run(fmt.Sprintf("chunk=%d", chunk), func(t *testing.T) {
			records := newFakeRecords(10000, false)
			vm, out := newStreamVM(SourceFasta, records.Columns(), chunk)
			require.NoError(t, vm.Stream(records, "len(seq) > 4; limit(250); print('{name}')"))

			lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
			require.Len(t, lines, 250)
			assert.Equal(t, "r1", lines[0])
			assert.Equal(t, "r2", lines[1])
			assert.Equal(t, "r4", lines[2])
		})
	}
}

func TestStreamPassThrough(t *testing.T) {
	records := newFakeRecords(3, true)
	vm, out := newStreamVM(SourceFastq, records.Columns(), 2)
	require.NoError(t, vm.Stream(records, ""))
	want := "@r0 c\nACGT\n+\nIIII\n" +
		"@r1 c\nACGTACGT\n+\nIIIIIIII\n" +
		"@r2 c\nACGTACGTACGT\n+\nIIIIIIIIIIII\n"
	assert.Equal(t, want, out.String())
	assert.True(t, vm.Status().Stop)
}

func TestStreamTransforms(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"lowercase in place", "head(1); lower_(seq)", ">r0 c\nacgt\n"},
		{"drop comment", "head(1); rm(comm)", ">r0\nACGT\n"},
		{"revcomp", "head(1); revcomp_(seq)", ">r0 c\nACGT\n"},
		{"width", "slice(1, 1); width_(seq, 3)", ">r1 c\nACG\nTAC\nGT\n"},
		{"to_fastq pads quality", "head(1); to_fq()", "@r0 c\nACGT\n+\n????\n"},
		{"row window", "slice(2, 2); print('{name}')", "r2\nr3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := newFakeRecords(10, false)
			vm, out := newStreamVM(SourceFasta, records.Columns(), 3)
			vm.opts.SeqType = bio.DNA
			require.NoError(t, vm.Stream(records, tt.expr))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		kind error
	}{
		{"tail", "tail(3)", ErrType},
		{"rename", "rename(seq, s)", ErrType},
		{"qual on fasta", "alias(q) = qual(seq)", ErrType},
		{"lost name column", "rm(name)", ErrType},
		{"syntax", "len(seq) >", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := newFakeRecords(10, false)
			vm, _ := newStreamVM(SourceFasta, records.Columns(), 4)
			err := vm.Stream(records, tt.expr)
			require.Error(t, err)
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
		})
	}
}

func TestStreamHeaderStops(t *testing.T) {
	records := newFakeRecords(100, true)
	vm, out := newStreamVM(SourceFastq, records.Columns(), 10)
	require.NoError(t, vm.Stream(records, "header()"))
	assert.Contains(t, out.String(), "qual")
	assert.Len(t, records.pulls, 1)
}

func TestStreamPhred(t *testing.T) {
	records := newFakeRecords(10, true)
	var out bytes.Buffer
	vm := New(NewStreamSource(SourceFastq, records.Columns()), Options{Output: &out, QualityType: bio.Phred33})
	require.NoError(t, vm.Stream(records, "phred()"))
	assert.Equal(t, "phred: phred33\n", out.String())
}

func TestStreamQual(t *testing.T) {
	records := newFakeRecords(2, true)
	var out bytes.Buffer
	vm := New(NewStreamSource(SourceFastq, records.Columns()), Options{Output: &out, QualityType: bio.Phred33})
	require.NoError(t, vm.Stream(records, "qual(qual) > 30; print('{name} {qual(qual)}')"))
	assert.Equal(t, "r0 40.000\nr1 40.000\n", out.String())
}

func TestStreamMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	records := newFakeRecords(100, false)
	var out bytes.Buffer
	vm := New(NewStreamSource(SourceFasta, records.Columns()), Options{Output: &out, ChunkSize: 30, Metrics: m})
	require.NoError(t, vm.Stream(records, "len(seq) > 4"))

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Chunks))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.RecordsRead))
	assert.Equal(t, float64(vm.Status().ConsumeRows), testutil.ToFloat64(m.RowsEmitted))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Statements))
}
