package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/vegasq/filterx/bio"
	"github.com/vegasq/filterx/engine"
	"github.com/vegasq/filterx/output"
	"github.com/vegasq/filterx/reader"
)

// action wraps fn in a session that is always closed.
func action(s *settings, fn func(c *cli.Context, ss *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ss, err := newSession(c, s)
		if err != nil {
			return err
		}
		return ss.close(fn(c, ss))
	}
}

func limitFlag(usage string) cli.Flag {
	return &cli.IntFlag{Name: "limit", Usage: usage}
}

func headerLinesFlag() cli.Flag {
	return &cli.BoolFlag{Name: "header-lines", Aliases: []string{"H"}, Usage: "re-emit header lines before the rows"}
}

func csvCommand() *cli.Command {
	s := &settings{}
	return &cli.Command{
		Name:      "csv",
		Aliases:   []string{"c"},
		Usage:     "filter delimited text",
		ArgsUsage: "<file>",
		Flags: append(s.flags(),
			&cli.StringFlag{Name: "sep", Aliases: []string{"s"}, Usage: "input separator (detected when empty; \\t, tab and space are accepted)"},
			&cli.StringFlag{Name: "os", Usage: "output separator (defaults to the input one)"},
			&cli.StringFlag{Name: "comment", Aliases: []string{"c"}, Value: "#", Usage: "comment line prefix"},
			&cli.BoolFlag{Name: "no-header", Usage: "the first line is data; columns are named column_1..column_n"},
			&cli.IntFlag{Name: "skip", Usage: "skip this many leading lines"},
			limitFlag("read at most this many rows"),
			&cli.StringSliceFlag{Name: "null", Usage: "extra tokens read as null, repeatable"},
		),
		Action: action(s, func(c *cli.Context, ss *session) error {
			sep, err := optionalSeparator(c.String("sep"))
			if err != nil {
				return err
			}
			outSep, err := optionalSeparator(c.String("os"))
			if err != nil {
				return err
			}
			opts := reader.CSVOptions{
				Separator: sep,
				Comment:   c.String("comment"),
				Header:    !c.Bool("no-header"),
				Skip:      c.Int("skip"),
				Limit:     c.Int("limit"),
				Nulls:     c.StringSlice("null"),
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			rc, err := ss.open()
			if err != nil {
				return err
			}
			defer rc.Close()
			t, err := reader.LoadCSV(rc, opts)
			if err != nil {
				return err
			}
			if outSep == "" {
				outSep = t.Separator
			}
			return ss.tabular(engine.SourceCSV, t, ss.outputOptions(outSep, t.HasHeader), false)
		}),
	}
}

func optionalSeparator(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return reader.ParseSeparator(s)
}

func (s *settings) outputOptions(sep string, header bool) output.Options {
	return output.Options{
		Path:      s.output,
		Format:    s.outputFormat(),
		Separator: sep,
		Header:    header,
	}
}

// fixedCommand builds a command for a tab separated format with fixed
// columns. Column names are not written; -H re-emits the original header
// lines instead.
func fixedCommand(name, usage string, typ engine.SourceType, load func(*session, int) (*reader.Table, error)) *cli.Command {
	s := &settings{}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<file>",
		Flags:     append(s.flags(), headerLinesFlag(), limitFlag("read at most this many records")),
		Action: action(s, func(c *cli.Context, ss *session) error {
			if c.Int("limit") < 0 {
				return fmt.Errorf("limit must not be negative, got %d", c.Int("limit"))
			}
			t, err := load(ss, c.Int("limit"))
			if err != nil {
				return err
			}
			return ss.tabular(typ, t, ss.outputOptions("\t", false), c.Bool("header-lines"))
		}),
	}
}

func loadWith(fn func(r io.Reader, limit int) (*reader.Table, error)) func(*session, int) (*reader.Table, error) {
	return func(ss *session, limit int) (*reader.Table, error) {
		rc, err := ss.open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return fn(rc, limit)
	}
}

func samCommand() *cli.Command {
	return fixedCommand("sam", "filter SAM alignments", engine.SourceSAM, loadWith(reader.LoadSAM))
}

func vcfCommand() *cli.Command {
	return fixedCommand("vcf", "filter VCF variants", engine.SourceVCF, loadWith(reader.LoadVCF))
}

func gxfCommand(name, format string) *cli.Command {
	return fixedCommand(name, "filter "+format+" features", engine.SourceGXF, loadWith(reader.LoadGXF))
}

func parquetCommand() *cli.Command {
	s := &settings{}
	return &cli.Command{
		Name:      "parquet",
		Usage:     "filter parquet files; the path may be a glob",
		ArgsUsage: "<file or glob>",
		Flags: append(s.flags(),
			&cli.BoolFlag{Name: "schema", Usage: "show the schema instead of the data"},
			limitFlag("read at most this many rows per file"),
			&cli.StringFlag{Name: "os", Value: ",", Usage: "output separator"},
		),
		Action: action(s, func(c *cli.Context, ss *session) error {
			if ss.path == reader.Stdin {
				return fmt.Errorf("parquet input must be a file or glob, not stdin")
			}
			if c.Bool("schema") {
				if len(ss.exprs) > 0 {
					return fmt.Errorf("--schema and -e cannot be used together")
				}
				return ss.parquetSchema()
			}
			if c.Int("limit") < 0 {
				return fmt.Errorf("limit must not be negative, got %d", c.Int("limit"))
			}
			sep, err := reader.ParseSeparator(c.String("os"))
			if err != nil {
				return err
			}
			f, err := reader.LoadParquet(ss.path, c.Int("limit"))
			if err != nil {
				return err
			}
			t := &reader.Table{Frame: f, Separator: sep, HasHeader: true}
			return ss.tabular(engine.SourceParquet, t, ss.outputOptions(sep, true), false)
		}),
	}
}

// parquetSchema lists the leaf columns of the first file matching the
// input path.
func (ss *session) parquetSchema() error {
	path := ss.path
	if matches, err := filepath.Glob(path); err == nil && len(matches) > 0 {
		path = matches[0]
	}
	cols, err := reader.ParquetSchema(path)
	if err != nil {
		return err
	}
	rows := make([][]string, len(cols))
	for i, col := range cols {
		rows[i] = []string{col.Name, col.Type.String(), col.PhysicalType, col.LogicalType, col.Repetition}
	}
	output.WriteTable(ss.out, []string{"name", "type", "physical", "logical", "repetition"}, rows)
	return nil
}

func chunkFlag() cli.Flag {
	return &cli.IntFlag{Name: "chunk", Value: engine.DefaultChunkSize, Usage: "records evaluated per chunk"}
}

func fastaCommand() *cli.Command {
	s := &settings{}
	return &cli.Command{
		Name:      "fasta",
		Aliases:   []string{"fa"},
		Usage:     "filter FASTA records",
		ArgsUsage: "<file>",
		Flags: append(s.flags(),
			&cli.StringFlag{Name: "type", Value: "auto", Usage: "sequence type: dna, rna, protein or auto"},
			&cli.IntFlag{Name: "detect-size", Value: reader.DefaultFastaDetectSize, Usage: "records used to detect the sequence type"},
			&cli.BoolFlag{Name: "no-comment", Usage: "drop the comment column"},
			chunkFlag(),
			limitFlag("read at most this many records"),
		),
		Action: action(s, func(c *cli.Context, ss *session) error {
			seqType, err := bio.ParseSeqType(c.String("type"))
			if err != nil {
				return err
			}
			rc, err := ss.open()
			if err != nil {
				return err
			}
			defer rc.Close()
			fr, err := reader.NewFastaReader(rc, reader.FastaOptions{
				NoComment:  c.Bool("no-comment"),
				SeqType:    seqType,
				DetectSize: c.Int("detect-size"),
				Limit:      c.Int("limit"),
			})
			if err != nil {
				return err
			}
			opts := ss.engineOptions()
			opts.ChunkSize = c.Int("chunk")
			opts.SeqType = fr.SeqType()
			return ss.stream(engine.SourceFasta, fr, opts)
		}),
	}
}

func fastqCommand() *cli.Command {
	s := &settings{}
	return &cli.Command{
		Name:      "fastq",
		Aliases:   []string{"fq"},
		Usage:     "filter FASTQ records",
		ArgsUsage: "<file>",
		Flags: append(s.flags(),
			&cli.StringFlag{Name: "phred", Value: "auto", Usage: "quality encoding: 33, 64 or auto"},
			&cli.IntFlag{Name: "detect-size", Value: reader.DefaultFastqDetectSize, Usage: "records used to detect the quality encoding"},
			&cli.BoolFlag{Name: "no-comment", Usage: "drop the comment column"},
			&cli.BoolFlag{Name: "no-quality", Usage: "drop the quality column"},
			chunkFlag(),
			limitFlag("read at most this many records"),
		),
		Action: action(s, func(c *cli.Context, ss *session) error {
			qualType, err := bio.ParseQualityType(c.String("phred"))
			if err != nil {
				return err
			}
			rc, err := ss.open()
			if err != nil {
				return err
			}
			defer rc.Close()
			fr, err := reader.NewFastqReader(rc, reader.FastqOptions{
				NoComment:   c.Bool("no-comment"),
				NoQuality:   c.Bool("no-quality"),
				QualityType: qualType,
				DetectSize:  c.Int("detect-size"),
				Limit:       c.Int("limit"),
			})
			if err != nil {
				return err
			}
			opts := ss.engineOptions()
			opts.ChunkSize = c.Int("chunk")
			opts.QualityType = fr.QualityType()
			return ss.stream(engine.SourceFastq, fr, opts)
		}),
	}
}
