package output

import "io"

// FastxWriter serializes sequence records. It does not buffer; wrap the
// destination in a buffered writer for large outputs.
type FastxWriter struct {
	w   io.Writer
	buf []byte
}

func NewFastxWriter(w io.Writer) *FastxWriter {
	return &FastxWriter{w: w}
}

// WriteFasta writes ">name[ comm]\nseq\n". An empty comment is omitted.
func (fw *FastxWriter) WriteFasta(name, comm, seq string) error {
	b := fw.head('>', name, comm)
	b = append(b, seq...)
	b = append(b, '\n')
	return fw.flush(b)
}

// WriteFastq writes "@name[ comm]\nseq\n+\nqual\n".
func (fw *FastxWriter) WriteFastq(name, comm, seq, qual string) error {
	b := fw.head('@', name, comm)
	b = append(b, seq...)
	b = append(b, "\n+\n"...)
	b = append(b, qual...)
	b = append(b, '\n')
	return fw.flush(b)
}

func (fw *FastxWriter) head(marker byte, name, comm string) []byte {
	b := append(fw.buf[:0], marker)
	b = append(b, name...)
	if comm != "" {
		b = append(b, ' ')
		b = append(b, comm...)
	}
	return append(b, '\n')
}

func (fw *FastxWriter) flush(b []byte) error {
	fw.buf = b
	_, err := fw.w.Write(b)
	return err
}
