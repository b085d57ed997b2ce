package reader

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/filterx/frame"
)

// ParquetColumn describes one leaf column of a parquet schema.
type ParquetColumn struct {
	Name         string
	Type         frame.DataType
	PhysicalType string
	LogicalType  string
	Repetition   string
}

// ParquetSchema lists the leaf columns of the file at path. Nested fields
// use dot notation, e.g. "address.street".
func ParquetSchema(path string) ([]ParquetColumn, error) {
	p, err := OpenParquet(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	var cols []ParquetColumn
	for _, f := range p.Schema().Fields() {
		cols = appendLeaves(cols, f, "", false)
	}
	return cols, nil
}

func appendLeaves(cols []ParquetColumn, f parquet.Field, prefix string, parentRepeated bool) []ParquetColumn {
	name := f.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || f.Repeated()
	if children := f.Fields(); len(children) > 0 {
		for _, c := range children {
			cols = appendLeaves(cols, c, name, repeated)
		}
		return cols
	}

	col := ParquetColumn{
		Name:         name,
		Type:         fieldType(f),
		PhysicalType: physicalType(f),
		Repetition:   "required",
	}
	if lt := f.Type().LogicalType(); lt != nil {
		col.LogicalType = lt.String()
	}
	switch {
	case repeated:
		col.Repetition = "repeated"
		col.Type = frame.String
	case f.Optional():
		col.Repetition = "optional"
	}
	return append(cols, col)
}

// fieldType maps a top-level parquet field to the frame type its values
// load as. Groups and lists are rendered as text.
func fieldType(f parquet.Field) frame.DataType {
	if len(f.Fields()) > 0 || f.Repeated() || f.Type() == nil {
		return frame.String
	}
	if lt := f.Type().LogicalType(); lt != nil && (lt.Timestamp != nil || lt.Date != nil || lt.Time != nil || lt.Decimal != nil) {
		return frame.String
	}
	switch f.Type().Kind() {
	case parquet.Boolean:
		return frame.Bool
	case parquet.Int32, parquet.Int64:
		return frame.Int
	case parquet.Float, parquet.Double:
		return frame.Float
	default:
		return frame.String
	}
}

func physicalType(f parquet.Field) string {
	if f.Type() == nil {
		return "GROUP"
	}
	switch k := f.Type().Kind(); k {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", k)
	}
}
