package output

import (
	"bufio"
	"encoding/json"
	"io"
	"math"

	"github.com/vegasq/filterx/frame"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes one JSON object per row. Keys follow the column order,
// which encoding/json does not preserve for maps, so objects are assembled
// field by field.
func (j *JSONFormatter) Format(f *frame.Frame) error {
	bw := bufio.NewWriter(j.writer)
	cols := f.Columns()
	keys := make([][]byte, len(cols))
	for i, s := range cols {
		k, err := json.Marshal(s.Name())
		if err != nil {
			return err
		}
		keys[i] = k
	}

	for i := 0; i < f.Height(); i++ {
		bw.WriteByte('{')
		for j, s := range cols {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.Write(keys[j])
			bw.WriteByte(':')
			v, err := jsonValue(s.Value(i))
			if err != nil {
				return err
			}
			bw.Write(v)
		}
		bw.WriteString("}\n")
	}
	return bw.Flush()
}

// jsonValue encodes v. NaN and infinities have no JSON form and become null.
func jsonValue(v any) ([]byte, error) {
	if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
