package frame

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabula/internal/core/apperror"
)

// Format identifies a supported bulk file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatORC     Format = "orc"
	FormatParquet Format = "parquet"
	FormatFeather Format = "feather"
)

// ParseFormat validates a caller-supplied format name. Unknown formats are an
// explicit error raised before any I/O is attempted.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatORC, FormatParquet, FormatFeather:
		return f, nil
	default:
		return "", apperror.NewUnsupportedFormat(s)
	}
}

// Read parses raw file content in the given format into a frame.
func Read(format Format, data []byte) (*Frame, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(data))
	case FormatXLSX:
		return ReadXLSX(data)
	case FormatORC:
		return ReadORC(data)
	case FormatParquet:
		return ReadParquet(data)
	case FormatFeather:
		return ReadFeather(data)
	default:
		return nil, apperror.NewUnsupportedFormat(string(format))
	}
}

// ReadCSV loads a comma-separated file. The first record is the header; cell
// types are inferred per cell the way a dataframe loader would.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows; New pads them

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return Empty(), nil
		}
		return nil, err
	}

	var rows [][]any
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = inferCell(cell)
		}
		rows = append(rows, row)
	}
	return New(header, rows), nil
}

// ReadXLSX loads the first sheet of a workbook.
func ReadXLSX(data []byte) (*Frame, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	cells, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return Empty(), nil
	}

	header := cells[0]
	rows := make([][]any, 0, len(cells)-1)
	for _, record := range cells[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = inferCell(cell)
		}
		rows = append(rows, row)
	}
	return New(header, rows), nil
}

// inferCell types a textual cell: empty -> nil, then integer, float, bool,
// otherwise the string itself.
func inferCell(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	if strings.EqualFold(trimmed, "true") {
		return true
	}
	if strings.EqualFold(trimmed, "false") {
		return false
	}
	return s
}
