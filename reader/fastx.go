package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/filterx/bio"
	"github.com/vegasq/filterx/frame"
)

const (
	DefaultFastaDetectSize = 3
	DefaultFastqDetectSize = 100
)

// FormatError reports malformed sequence input. Hint, when set, suggests
// how to fix the invocation.
type FormatError struct {
	Format string
	Line   int
	Msg    string
	Hint   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, e.Msg)
}

type FastaOptions struct {
	NoComment bool
	// SeqType fixes the alphabet; bio.SeqAuto detects it from the first
	// DetectSize records.
	SeqType    bio.SeqType
	DetectSize int
	// Limit caps the number of records read; 0 reads everything.
	Limit int
}

func (o FastaOptions) Validate() error {
	if o.DetectSize < 0 {
		return fmt.Errorf("detect size must not be negative, got %d", o.DetectSize)
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", o.Limit)
	}
	return nil
}

type FastqOptions struct {
	NoComment bool
	NoQuality bool
	// QualityType fixes the quality encoding; bio.QualityAuto detects it
	// from the first DetectSize records.
	QualityType bio.QualityType
	DetectSize  int
	Limit       int
}

func (o FastqOptions) Validate() error {
	if o.DetectSize < 0 {
		return fmt.Errorf("detect size must not be negative, got %d", o.DetectSize)
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", o.Limit)
	}
	return nil
}

type record struct {
	name, comm, seq, qual string
}

// lineReader yields lines without their line break and allows one line of
// push back.
type lineReader struct {
	br     *bufio.Reader
	line   int
	pushed *string
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReaderSize(r, readBufferSize)}
}

func (l *lineReader) next() (string, bool, error) {
	if l.pushed != nil {
		s := *l.pushed
		l.pushed = nil
		l.line++
		return s, true, nil
	}
	s, err := l.br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if s == "" && err != nil {
		return "", false, nil
	}
	l.line++
	return strings.TrimRight(s, "\r\n"), true, nil
}

func (l *lineReader) unread(s string) {
	l.pushed = &s
	l.line--
}

// nextNonEmpty skips blank lines.
func (l *lineReader) nextNonEmpty() (string, bool, error) {
	for {
		s, ok, err := l.next()
		if err != nil || !ok || s != "" {
			return s, ok, err
		}
	}
}

// fastxStream serves parsed records in chunks. Records parsed ahead for
// type detection are kept in pending and served first.
type fastxStream struct {
	lines   *lineReader
	columns []string
	limit   int
	read    int
	pending []record
	parse   func() (record, bool, error)
}

func (s *fastxStream) Columns() []string { return s.columns }

// Records returns the number of records served so far.
func (s *fastxStream) Records() int { return s.read }

func (s *fastxStream) fill(n int) error {
	for len(s.pending) < n {
		rec, ok, err := s.parse()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		s.pending = append(s.pending, rec)
	}
	return nil
}

func (s *fastxStream) next() (record, bool, error) {
	if s.limit > 0 && s.read >= s.limit {
		return record{}, false, nil
	}
	var rec record
	if len(s.pending) > 0 {
		rec = s.pending[0]
		s.pending = s.pending[1:]
	} else {
		var ok bool
		var err error
		if rec, ok, err = s.parse(); err != nil || !ok {
			return record{}, false, err
		}
	}
	s.read++
	return rec, true, nil
}

// Pull returns up to n records as a frame of string columns. An empty
// frame means the input is exhausted.
func (s *fastxStream) Pull(n int) (*frame.Frame, error) {
	recs := make([]record, 0, min(n, 4096))
	for len(recs) < n {
		rec, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		recs = append(recs, rec)
	}

	series := make([]*frame.Series, len(s.columns))
	for j, c := range s.columns {
		values := make([]any, len(recs))
		for i, r := range recs {
			switch c {
			case "name":
				values[i] = r.name
			case "comm":
				if r.comm != "" {
					values[i] = r.comm
				}
			case "seq":
				values[i] = r.seq
			case "qual":
				values[i] = r.qual
			}
		}
		series[j] = frame.NewSeries(c, frame.String, values)
	}
	return frame.New(series...)
}

func splitHeader(h string) (name, comm string) {
	if i := strings.IndexAny(h, " \t"); i >= 0 {
		return h[:i], strings.TrimLeft(h[i+1:], " \t")
	}
	return h, ""
}

// FastaReader decodes FASTA records.
type FastaReader struct {
	fastxStream
	opts    FastaOptions
	seqType bio.SeqType
}

// NewFastaReader reads the first records ahead when the sequence type has
// to be detected. Empty input is treated as DNA.
func NewFastaReader(r io.Reader, opts FastaOptions) (*FastaReader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fr := &FastaReader{opts: opts, seqType: opts.SeqType}
	fr.lines = newLineReader(r)
	fr.limit = opts.Limit
	fr.parse = fr.parseRecord
	fr.columns = []string{"name", "comm", "seq"}
	if opts.NoComment {
		fr.columns = []string{"name", "seq"}
	}

	if fr.seqType != bio.SeqAuto {
		return fr, nil
	}
	size := opts.DetectSize
	if size == 0 {
		size = DefaultFastaDetectSize
	}
	if err := fr.fill(size); err != nil {
		return nil, err
	}
	if len(fr.pending) == 0 {
		fr.seqType = bio.DNA
		return fr, nil
	}
	samples := make([]string, len(fr.pending))
	for i, rec := range fr.pending {
		samples[i] = rec.seq
	}
	t, err := bio.DetectSeqType(samples)
	if err != nil {
		return nil, fmt.Errorf("%w, set it with --type", err)
	}
	fr.seqType = t
	return fr, nil
}

// SeqType returns the configured or detected alphabet.
func (fr *FastaReader) SeqType() bio.SeqType { return fr.seqType }

func (fr *FastaReader) parseRecord() (record, bool, error) {
	h, ok, err := fr.lines.nextNonEmpty()
	if err != nil || !ok {
		return record{}, false, err
	}
	if !strings.HasPrefix(h, ">") {
		e := &FormatError{Format: "fasta", Line: fr.lines.line, Msg: fmt.Sprintf("expected a header starting with '>', got %q", truncate(h))}
		if strings.HasPrefix(h, "@") {
			e.Hint = "the input looks like FASTQ, use the fastq command"
		}
		return record{}, false, e
	}

	var rec record
	rec.name, rec.comm = splitHeader(h[1:])
	var seq strings.Builder
	for {
		line, ok, err := fr.lines.next()
		if err != nil {
			return record{}, false, err
		}
		if !ok {
			break
		}
		if strings.HasPrefix(line, ">") {
			fr.lines.unread(line)
			break
		}
		seq.WriteString(line)
	}
	rec.seq = seq.String()
	return rec, true, nil
}

// FastqReader decodes FASTQ records. Sequence and quality may span
// several lines.
type FastqReader struct {
	fastxStream
	opts     FastqOptions
	qualType bio.QualityType
}

// NewFastqReader reads the first records ahead when the quality encoding
// has to be detected.
func NewFastqReader(r io.Reader, opts FastqOptions) (*FastqReader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fr := &FastqReader{opts: opts, qualType: opts.QualityType}
	fr.lines = newLineReader(r)
	fr.limit = opts.Limit
	fr.parse = fr.parseRecord
	fr.columns = []string{"name"}
	if !opts.NoComment {
		fr.columns = append(fr.columns, "comm")
	}
	fr.columns = append(fr.columns, "seq")
	if !opts.NoQuality {
		fr.columns = append(fr.columns, "qual")
	}

	if fr.qualType != bio.QualityAuto {
		return fr, nil
	}
	size := opts.DetectSize
	if size == 0 {
		size = DefaultFastqDetectSize
	}
	if err := fr.fill(size); err != nil {
		return nil, err
	}
	samples := make([]string, len(fr.pending))
	for i, rec := range fr.pending {
		samples[i] = rec.qual
	}
	fr.qualType = bio.DetectQualityType(samples)
	return fr, nil
}

// QualityType returns the configured or detected quality encoding.
func (fr *FastqReader) QualityType() bio.QualityType { return fr.qualType }

func (fr *FastqReader) parseRecord() (record, bool, error) {
	h, ok, err := fr.lines.nextNonEmpty()
	if err != nil || !ok {
		return record{}, false, err
	}
	if !strings.HasPrefix(h, "@") {
		e := &FormatError{Format: "fastq", Line: fr.lines.line, Msg: fmt.Sprintf("expected a header starting with '@', got %q", truncate(h))}
		if strings.HasPrefix(h, ">") {
			e.Hint = "the input looks like FASTA, use the fasta command"
		}
		return record{}, false, e
	}

	var rec record
	rec.name, rec.comm = splitHeader(h[1:])
	var seq strings.Builder
	for {
		line, ok, err := fr.lines.next()
		if err != nil {
			return record{}, false, err
		}
		if !ok {
			return record{}, false, fr.truncated(rec.name)
		}
		if strings.HasPrefix(line, "+") {
			break
		}
		seq.WriteString(line)
	}
	rec.seq = seq.String()

	var qual strings.Builder
	for qual.Len() < len(rec.seq) {
		line, ok, err := fr.lines.next()
		if err != nil {
			return record{}, false, err
		}
		if !ok {
			return record{}, false, fr.truncated(rec.name)
		}
		qual.WriteString(line)
	}
	rec.qual = qual.String()
	if len(rec.qual) != len(rec.seq) {
		return record{}, false, &FormatError{
			Format: "fastq",
			Line:   fr.lines.line,
			Msg:    fmt.Sprintf("record %q: quality length %d does not match sequence length %d", rec.name, len(rec.qual), len(rec.seq)),
		}
	}
	return rec, true, nil
}

func (fr *FastqReader) truncated(name string) error {
	return &FormatError{Format: "fastq", Line: fr.lines.line, Msg: fmt.Sprintf("record %q is truncated", name)}
}

func truncate(s string) string {
	const n = 40
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
