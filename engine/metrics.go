package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts evaluator activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Chunks      prometheus.Counter
	RecordsRead prometheus.Counter
	RowsEmitted prometheus.Counter
	Statements  prometheus.Counter
}

// NewMetrics creates the evaluator counters and registers them with reg
// when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filterx",
			Name:      "chunks_total",
			Help:      "Number of record chunks evaluated.",
		}),
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filterx",
			Name:      "records_read_total",
			Help:      "Number of input records pulled from streaming sources.",
		}),
		RowsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filterx",
			Name:      "rows_emitted_total",
			Help:      "Number of rows written by print, to_fasta, to_fastq or the default serializer.",
		}),
		Statements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filterx",
			Name:      "statements_total",
			Help:      "Number of statements evaluated.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Chunks, m.RecordsRead, m.RowsEmitted, m.Statements)
	}
	return m
}

func (m *Metrics) chunk(records int) {
	if m == nil {
		return
	}
	m.Chunks.Inc()
	m.RecordsRead.Add(float64(records))
}

func (m *Metrics) emitted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsEmitted.Add(float64(n))
}

func (m *Metrics) statement() {
	if m == nil {
		return
	}
	m.Statements.Inc()
}
