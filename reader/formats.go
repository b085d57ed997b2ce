package reader

import (
	"errors"
	"io"
	"strings"

	"github.com/vegasq/filterx/frame"
)

var samColumns = []string{"qname", "flag", "rname", "pos", "mapq", "cigar", "rnext", "pnext", "tlen", "seq", "qual"}

var gxfColumns = []string{"seqid", "source", "type", "start", "end", "score", "strand", "phase", "attr"}

// LoadSAM reads the mandatory SAM columns. Optional tag fields are dropped
// and "@" header lines are kept as comments.
func LoadSAM(r io.Reader, limit int) (*Table, error) {
	return LoadCSV(r, CSVOptions{
		Separator: "\t",
		Comment:   "@",
		Limit:     limit,
		NoQuote:   true,
		Columns:   samColumns,
		Types: stringTypes(samColumns, map[string]frame.DataType{
			"flag":  frame.Int,
			"pos":   frame.Int,
			"mapq":  frame.Int,
			"pnext": frame.Int,
			"tlen":  frame.Int,
		}),
	})
}

// LoadGXF reads GFF and GTF files; "." is null.
func LoadGXF(r io.Reader, limit int) (*Table, error) {
	return LoadCSV(r, CSVOptions{
		Separator: "\t",
		Comment:   "#",
		Limit:     limit,
		Nulls:     []string{"."},
		NoQuote:   true,
		Columns:   gxfColumns,
		Types: stringTypes(gxfColumns, map[string]frame.DataType{
			"start": frame.Int,
			"end":   frame.Int,
			"score": frame.Float,
		}),
	})
}

// LoadVCF reads a VCF file. The "#CHROM" line names the columns, lower
// cased; "##" meta lines and the column line are kept as comments.
func LoadVCF(r io.Reader, limit int) (*Table, error) {
	opts := CSVOptions{
		Separator: "\t",
		Comment:   "#",
		Limit:     limit,
		Nulls:     []string{"."},
		NoQuote:   true,
	}
	s, err := scan(r, opts)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, c := range s.comments {
		if strings.HasPrefix(c, "#") && !strings.HasPrefix(c, "##") {
			names = strings.Split(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "#"))), "\t")
		}
	}
	if names == nil {
		return nil, errors.New("vcf: missing #CHROM column line")
	}
	opts.Types = stringTypes(names, map[string]frame.DataType{
		"pos":  frame.Int,
		"qual": frame.Float,
	})
	t, err := s.table(names, opts)
	if err != nil {
		return nil, err
	}
	t.HasHeader = true
	return t, nil
}

// stringTypes types every name as String unless overridden.
func stringTypes(names []string, override map[string]frame.DataType) map[string]frame.DataType {
	types := make(map[string]frame.DataType, len(names))
	for _, n := range names {
		types[n] = frame.String
	}
	for n, t := range override {
		types[n] = t
	}
	return types
}
