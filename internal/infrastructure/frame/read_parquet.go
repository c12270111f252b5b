package frame

import (
	"bytes"
	"io"

	"github.com/parquet-go/parquet-go"
)

// ReadParquet loads a parquet file with a flat schema. Leaf values are mapped
// to Go scalars by physical type; logical annotations (timestamps stored as
// int64) pass through as their physical representation.
func ReadParquet(data []byte) (*Frame, error) {
	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}

	var rows [][]any
	buf := make([]parquet.Row, 128)
	for _, rg := range pf.RowGroups() {
		rr := rg.Rows()
		for {
			n, err := rr.ReadRows(buf)
			for _, pr := range buf[:n] {
				row := make([]any, len(names))
				for _, v := range pr {
					col := v.Column()
					if col < 0 || col >= len(row) {
						continue
					}
					row[col] = parquetValue(v)
				}
				rows = append(rows, row)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rr.Close()
				return nil, err
			}
		}
		if err := rr.Close(); err != nil {
			return nil, err
		}
	}
	return New(names, rows), nil
}

func parquetValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return v.String()
	default:
		return v.String()
	}
}
