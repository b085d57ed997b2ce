package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/filterx/frame"
)

// FileColumn is added to rows loaded through a glob pattern and holds the
// path each row came from.
const FileColumn = "_file"

// maxParquetFiles bounds the number of files a glob may expand to.
const maxParquetFiles = 1000

// ParquetFile is an open parquet file. It keeps the OS handle so Close can
// release it.
type ParquetFile struct {
	file   *os.File
	pqFile *parquet.File
}

// OpenParquet opens and validates a parquet file.
func OpenParquet(path string) (*ParquetFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return &ParquetFile{file: file, pqFile: pqFile}, nil
}

func (p *ParquetFile) Schema() *parquet.Schema { return p.pqFile.Schema() }

// NumRows returns the row count recorded in the file metadata.
func (p *ParquetFile) NumRows() int64 { return p.pqFile.NumRows() }

// Rows reads every row into memory, keyed by top-level field name.
func (p *ParquetFile) Rows(limit int) ([]map[string]any, error) {
	rows := make([]map[string]any, 0)

	r := parquet.NewReader(p.pqFile)
	defer func() { _ = r.Close() }()

	for limit <= 0 || len(rows) < limit {
		row := make(map[string]any)
		if err := r.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (p *ParquetFile) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// LoadParquet loads a parquet file, or every file matched by a glob
// pattern, into one frame. Column order follows the schema of the first
// file; columns first seen in later files are appended. Rows from a glob
// carry the source path in FileColumn. limit caps the rows read per file.
func LoadParquet(pattern string, limit int) (*frame.Frame, error) {
	paths, glob, err := expandParquet(pattern)
	if err != nil {
		return nil, err
	}

	var (
		names []string
		types = make(map[string]frame.DataType)
		rows  []map[string]any
	)
	for _, path := range paths {
		p, err := OpenParquet(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for _, f := range p.Schema().Fields() {
			t := fieldType(f)
			prev, seen := types[f.Name()]
			switch {
			case !seen:
				names = append(names, f.Name())
				types[f.Name()] = t
			case prev != t:
				types[f.Name()] = frame.String
			}
		}

		fileRows, readErr := p.Rows(limit)
		closeErr := p.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read rows from %s: %w", path, readErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
		if glob {
			for _, row := range fileRows {
				row[FileColumn] = path
			}
		}
		rows = append(rows, fileRows...)
	}
	if glob {
		if _, ok := types[FileColumn]; !ok {
			names = append(names, FileColumn)
		}
		types[FileColumn] = frame.String
	}

	series := make([]*frame.Series, len(names))
	for j, name := range names {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row[name]
		}
		series[j] = frame.NewSeries(name, types[name], values)
	}
	return frame.New(series...)
}

// expandParquet resolves pattern to file paths and reports whether it was
// a glob.
func expandParquet(pattern string) ([]string, bool, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		return []string{pattern}, false, nil
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, true, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, true, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxParquetFiles {
		return nil, true, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxParquetFiles)
	}
	return matches, true, nil
}
