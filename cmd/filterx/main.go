package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/urfave/cli/v2"

	"github.com/vegasq/filterx/internal/hint"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	if err := app.Run(args); err != nil {
		fmt.Fprintln(stderr, hint.New(stderr).Render(err))
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:  "filterx",
		Usage: "filter and transform tabular and sequence files with Python-like expressions",
		UsageText: "filterx <command> [options] <file>\n\n" +
			"All options must come BEFORE the file argument; a missing file or \"-\" reads stdin.\n\n" +
			"Examples:\n" +
			"  filterx csv -e 'age > 30' people.csv\n" +
			"  filterx csv -e 'alias(bmi) = weight / (height * height)' -e 'sort(bmi)' -t people.tsv\n" +
			"  filterx fasta -e 'len(seq) > 100; gc(seq) > 0.5' reads.fa.gz\n" +
			"  filterx fastq -e \"qual(qual) > 30; print('{name}')\" reads.fq\n" +
			"  filterx parquet --schema data.parquet\n" +
			"  filterx info extract",
		Version:         version,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		// Errors are rendered by run; never exit from inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			csvCommand(),
			samCommand(),
			vcfCommand(),
			gxfCommand("gff", "GFF3"),
			gxfCommand("gtf", "GTF"),
			parquetCommand(),
			fastaCommand(),
			fastqCommand(),
			infoCommand(),
		},
	}
}

// newLogger writes logfmt to w, filtered to warnings unless verbose.
func newLogger(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	allow := level.AllowWarn()
	if verbose {
		allow = level.AllowDebug()
	}
	return level.NewFilter(logger, allow)
}
