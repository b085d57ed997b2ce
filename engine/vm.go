package engine

import (
	"fmt"
	"io"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vegasq/filterx/bio"
	"github.com/vegasq/filterx/frame"
	"github.com/vegasq/filterx/query"
)

// DefaultChunkSize is the number of records pulled per streaming chunk.
const DefaultChunkSize = 4096

// Mode selects which builtins may run.
type Mode int

const (
	// ModeExpression is normal statement evaluation.
	ModeExpression Mode = iota
	// ModePrintable is used for expressions embedded in print templates:
	// only expression-eligible, non-inplace builtins may run.
	ModePrintable
)

// Status is the evaluator's run state.
type Status struct {
	// Stop ends evaluation after the current statement.
	Stop bool
	// Printed is set when a statement already wrote this chunk's output.
	Printed bool
	// LimitRows caps the number of rows emitted overall.
	LimitRows int
	// ConsumeRows counts rows emitted so far.
	ConsumeRows int
	// ChunkSize is the number of records pulled per streaming chunk.
	ChunkSize int
	// Offset is the number of leading rows to skip on streaming sources.
	Offset int
	// Skipped counts rows skipped so far because of Offset.
	Skipped int
}

func (s *Status) remaining() int { return max(s.LimitRows-s.ConsumeRows, 0) }

// Options configures a VM.
type Options struct {
	ChunkSize   int
	Limit       int
	SeqType     bio.SeqType
	QualityType bio.QualityType
	// Output receives rows written by print, header, phred and to_fasta.
	Output  io.Writer
	Logger  log.Logger
	Metrics *Metrics
}

// Validate checks the numeric options. Zero selects the default.
func (o Options) Validate() error {
	if o.ChunkSize < 0 {
		return fmt.Errorf("chunk size must not be negative, got %d", o.ChunkSize)
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", o.Limit)
	}
	return nil
}

// VM evaluates filterx programs against a Source.
type VM struct {
	source *Source
	status Status
	mode   Mode
	opts   Options

	out     io.Writer
	logger  log.Logger
	metrics *Metrics

	stmts     map[string]query.Stmt
	templates map[string]*template
	calls     map[*query.Call]*callSite
	qual      *bio.QualityTable
}

// New returns a VM bound to src.
func New(src *Source, opts Options) *VM {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Limit <= 0 {
		opts.Limit = math.MaxInt
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	return &VM{
		source: src,
		status: Status{
			LimitRows: opts.Limit,
			ChunkSize: opts.ChunkSize,
		},
		opts:      opts,
		out:       opts.Output,
		logger:    log.With(opts.Logger, "component", "engine"),
		metrics:   opts.Metrics,
		stmts:     make(map[string]query.Stmt),
		templates: make(map[string]*template),
		calls:     make(map[*query.Call]*callSite),
	}
}

func (vm *VM) Source() *Source { return vm.source }
func (vm *VM) Status() Status  { return vm.status }
func (vm *VM) Mode() Mode      { return vm.mode }

// compile splits a program into statements and parses each one. Parsed
// statements are cached by their text.
func (vm *VM) compile(program string) ([]query.Stmt, error) {
	parts, err := query.Split(program)
	if err != nil {
		return nil, err
	}
	stmts := make([]query.Stmt, 0, len(parts))
	for _, p := range parts {
		s, ok := vm.stmts[p]
		if !ok {
			s, err = query.ParseStatement(p)
			if err != nil {
				return nil, err
			}
			vm.stmts[p] = s
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// Eval parses and evaluates every statement of program in order, stopping
// early once a statement sets Stop.
func (vm *VM) Eval(program string) error {
	stmts, err := vm.compile(program)
	if err != nil {
		return err
	}
	return vm.run(stmts)
}

func (vm *VM) run(stmts []query.Stmt) error {
	for _, s := range stmts {
		if vm.status.Stop {
			return nil
		}
		if err := vm.evalStmt(s); err != nil {
			return err
		}
		vm.metrics.statement()
	}
	level.Debug(vm.logger).Log("msg", "program evaluated", "statements", len(stmts), "plan", vm.source.plan.Describe())
	return nil
}

// Collect executes the source's plan.
func (vm *VM) Collect() (*frame.Frame, error) {
	return vm.source.Collect()
}

// Finish executes the plan and rebinds the source to the result.
func (vm *VM) Finish() (*frame.Frame, error) {
	return vm.source.Finish()
}

// qualityTable returns the lazily built score table for the configured
// encoding.
func (vm *VM) qualityTable() (*bio.QualityTable, error) {
	if vm.qual == nil {
		t, err := bio.NewQualityTable(vm.opts.QualityType)
		if err != nil {
			return nil, typeErr("qual: %v", err)
		}
		vm.qual = t
	}
	return vm.qual, nil
}
