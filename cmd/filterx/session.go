package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/vegasq/filterx/engine"
	"github.com/vegasq/filterx/output"
	"github.com/vegasq/filterx/reader"
)

// expressions collects repeated -e flags.
type expressions []string

func (e *expressions) String() string { return strings.Join(*e, ";") }

func (e *expressions) Set(value string) error {
	*e = append(*e, value)
	return nil
}

// settings holds the flags shared by every input command.
type settings struct {
	exprs       expressions
	output      string
	outputType  string
	format      string
	table       bool
	verbose     bool
	metricsFile string
}

func (s *settings) flags() []cli.Flag {
	return []cli.Flag{
		&cli.GenericFlag{
			Name:    "expr",
			Aliases: []string{"e"},
			Usage:   "expression to evaluate, repeatable (joined with ';')",
			Value:   &s.exprs,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output file (default stdout)",
			Destination: &s.output,
		},
		&cli.StringFlag{
			Name:        "output-type",
			Usage:       "output compression: auto, plain or gzip (auto compresses *.gz paths)",
			Value:       "auto",
			Destination: &s.outputType,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "tabular output format: csv, jsonl or table",
			Value:       "csv",
			Destination: &s.format,
		},
		&cli.BoolFlag{
			Name:        "table",
			Aliases:     []string{"t"},
			Usage:       "shortcut for --format table",
			Destination: &s.table,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "log debug messages to stderr",
			Destination: &s.verbose,
		},
		&cli.StringFlag{
			Name:        "metrics-file",
			Usage:       "write run counters in Prometheus text format to this file",
			Destination: &s.metricsFile,
		},
	}
}

func (s *settings) program() string { return s.exprs.String() }

func (s *settings) outputFormat() string {
	if s.table {
		return "table"
	}
	return s.format
}

// session is one command run: the input path, the output writer and the
// ambient logger and metrics.
type session struct {
	*settings
	path    string
	out     *output.Writer
	logger  log.Logger
	reg     *prometheus.Registry
	metrics *engine.Metrics
	start   time.Time

	read, emitted int
}

// inputPath returns the single positional argument, or stdin.
func inputPath(c *cli.Context) (string, error) {
	switch c.NArg() {
	case 0:
		return reader.Stdin, nil
	case 1:
		return c.Args().First(), nil
	}
	return "", fmt.Errorf("expected one input file, got %d arguments (options must come before the file)", c.NArg())
}

func newSession(c *cli.Context, s *settings) (*session, error) {
	path, err := inputPath(c)
	if err != nil {
		return nil, err
	}
	typ, err := output.ParseType(s.outputType)
	if err != nil {
		return nil, err
	}

	ss := &session{
		settings: s,
		path:     path,
		logger:   log.With(newLogger(c.App.ErrWriter, s.verbose), "cmd", c.Command.Name),
		reg:      prometheus.NewRegistry(),
		start:    time.Now(),
	}
	ss.metrics = engine.NewMetrics(ss.reg)

	if s.output == "" || s.output == "-" {
		ss.out = output.NewWriter(c.App.Writer, typ == output.TypeGzip)
	} else {
		ss.out, err = output.Create(s.output, typ)
		if err != nil {
			return nil, err
		}
	}
	level.Debug(ss.logger).Log("msg", "starting", "input", path, "output", s.output, "output_type", typ, "program", s.program())
	return ss, nil
}

// open opens the input with transparent decompression.
func (ss *session) open() (io.ReadCloser, error) {
	rc, err := reader.Open(ss.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file '%s' not found, please check the file path and try again", ss.path)
		}
		return nil, err
	}
	return rc, nil
}

// close flushes the output, writes the metrics file and logs the run
// summary. The first error wins.
func (ss *session) close(err error) error {
	if cerr := ss.out.Close(); err == nil {
		err = cerr
	}
	if ss.metricsFile != "" {
		if merr := prometheus.WriteToTextfile(ss.metricsFile, ss.reg); merr != nil && err == nil {
			err = fmt.Errorf("failed to write metrics file: %w", merr)
		}
	}
	if err != nil {
		level.Debug(ss.logger).Log("msg", "run failed", "err", err)
		return err
	}

	kv := []any{
		"msg", "done",
		"records_read", humanize.Comma(int64(ss.read)),
		"rows_emitted", humanize.Comma(int64(ss.emitted)),
		"elapsed", time.Since(ss.start).Round(time.Millisecond),
	}
	if ss.path != reader.Stdin {
		if fi, serr := os.Stat(ss.path); serr == nil {
			kv = append(kv, "input_size", humanize.Bytes(uint64(fi.Size())))
		}
	}
	level.Info(ss.logger).Log(kv...)
	return nil
}

func (ss *session) engineOptions() engine.Options {
	return engine.Options{
		Output:  ss.out,
		Logger:  ss.logger,
		Metrics: ss.metrics,
	}
}

// tabular evaluates the program over a loaded table and writes the
// surviving rows unless a statement already printed them.
func (ss *session) tabular(typ engine.SourceType, t *reader.Table, opts output.Options, headerLines bool) error {
	f := t.Frame
	ss.read = f.Height()
	vm := engine.New(engine.NewSource(engine.NewPlan(f), typ, f.Names(), t.HasHeader), ss.engineOptions())
	if err := vm.Eval(ss.program()); err != nil {
		return err
	}
	if st := vm.Status(); st.Printed {
		ss.emitted = st.ConsumeRows
		return nil
	}
	res, err := vm.Finish()
	if err != nil {
		return err
	}
	ss.emitted = res.Height()

	if headerLines {
		for _, line := range t.Comments {
			if _, err := fmt.Fprintln(ss.out, line); err != nil {
				return err
			}
		}
	}
	fm, err := output.NewFormatter(ss.out, opts)
	if err != nil {
		return err
	}
	return fm.Format(res)
}

// recordReader is a streaming FASTA or FASTQ decoder.
type recordReader interface {
	engine.RecordSource
	Records() int
}

// stream evaluates the program chunk by chunk over a sequence decoder.
func (ss *session) stream(typ engine.SourceType, rr recordReader, opts engine.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	vm := engine.New(engine.NewStreamSource(typ, rr.Columns()), opts)
	err := vm.Stream(rr, ss.program())
	ss.read = rr.Records()
	ss.emitted = vm.Status().ConsumeRows
	return err
}
