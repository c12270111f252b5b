package frame

import (
	"bytes"

	"github.com/scritchley/orc"
)

// ReadORC loads an ORC file, selecting every top-level column.
func ReadORC(data []byte) (*Frame, error) {
	r, err := orc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	names := r.Schema().Columns()

	var rows [][]any
	cursor := r.Select(names...)
	for cursor.Stripes() {
		for cursor.Next() {
			rows = append(rows, append([]any(nil), cursor.Row()...))
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return New(names, rows), nil
}
