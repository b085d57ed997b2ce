package reader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Stdin is the path that selects standard input.
const Stdin = "-"

const readBufferSize = 1 << 20

// Open opens path for reading and transparently decompresses gzip and zstd
// input, recognised by their magic bytes rather than the file name.
func Open(path string) (io.ReadCloser, error) {
	var file io.ReadCloser = io.NopCloser(os.Stdin)
	if path != Stdin {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		file = f
	}

	rc, err := decompress(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rc, nil
}

// decompress wraps r with the decoder its first bytes call for. Closing
// the result closes r as well.
func decompress(r io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	magic, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip header: %w", err)
		}
		return &readCloser{Reader: zr, close: []func() error{zr.Close, r.Close}}, nil
	case bytes.Equal(magic, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read zstd stream: %w", err)
		}
		return &readCloser{Reader: zr, close: []func() error{func() error { zr.Close(); return nil }, r.Close}}, nil
	}
	return &readCloser{Reader: br, close: []func() error{r.Close}}, nil
}

type readCloser struct {
	io.Reader
	close []func() error
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.close {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
