package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Type selects output compression.
type Type int

const (
	// TypeAuto compresses when the path ends in .gz.
	TypeAuto Type = iota
	TypePlain
	TypeGzip
)

func (t Type) String() string {
	switch t {
	case TypePlain:
		return "plain"
	case TypeGzip:
		return "gzip"
	default:
		return "auto"
	}
}

// ParseType accepts auto, plain and gzip.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return TypeAuto, nil
	case "plain", "none":
		return TypePlain, nil
	case "gzip", "gz":
		return TypeGzip, nil
	}
	return TypeAuto, fmt.Errorf("unknown output type %q, use auto, plain or gzip", s)
}

// Writer is a buffered, possibly compressed destination. Close must be
// called to flush it.
type Writer struct {
	buf   *bufio.Writer
	gz    *gzip.Writer
	file  *os.File
	owned bool
}

func (w *Writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

// Close flushes buffered data, finishes the gzip stream and closes the file
// unless it is stdout.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	if w.owned {
		return w.file.Close()
	}
	return nil
}

// Create opens path for writing; "" and "-" select stdout.
func Create(path string, typ Type) (*Writer, error) {
	w := &Writer{file: os.Stdout}
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		w.file, w.owned = f, true
	}
	return wrap(w, w.file, typ == TypeGzip || (typ == TypeAuto && strings.HasSuffix(path, ".gz"))), nil
}

// NewWriter wraps dst without taking ownership of it.
func NewWriter(dst io.Writer, compress bool) *Writer {
	return wrap(&Writer{}, dst, compress)
}

func wrap(w *Writer, dst io.Writer, compress bool) *Writer {
	if compress {
		w.gz = gzip.NewWriter(dst)
		dst = w.gz
	}
	w.buf = bufio.NewWriterSize(dst, 64*1024)
	return w
}
