package frame

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tabula/internal/core/apperror"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{" xlsx ", FormatXLSX},
		{"orc", FormatORC},
		{"parquet", FormatParquet},
		{"feather", FormatFeather},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseFormat("docx")
		require.Error(t, err)
		assert.True(t, apperror.IsUnsupportedFormat(err))

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "docx", appErr.Details["format"])
	})
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"id,name,age,active",
		"1,alice,28.5,true",
		"2,bob,,false",
		"3,carol,34,TRUE",
	}, "\n")

	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "age", "active"}, f.Columns())
	require.Equal(t, 3, f.Len())

	recs := f.View().Records()
	assert.Equal(t, map[string]any{"id": int64(1), "name": "alice", "age": 28.5, "active": true}, recs[0])
	assert.Equal(t, map[string]any{"id": int64(2), "name": "bob", "age": nil, "active": false}, recs[1])
	assert.Equal(t, map[string]any{"id": int64(3), "name": "carol", "age": int64(34), "active": true}, recs[2])
}

func TestReadCSV_Empty(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, f.Len())
	assert.Empty(t, f.Columns())
}

func TestReadCSV_RaggedRows(t *testing.T) {
	input := "a,b\n1\n2,3,4\n"

	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())

	recs := f.View().Records()
	assert.Equal(t, map[string]any{"a": int64(1), "b": nil}, recs[0])
	assert.Equal(t, map[string]any{"a": int64(2), "b": int64(3)}, recs[1])
}

func TestReadXLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]any{
		{"id", "name", "age"},
		{1, "alice", 28.5},
		{2, "bob", nil},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	require.NoError(t, wb.Close())

	f, err := ReadXLSX(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "age"}, f.Columns())
	require.Equal(t, 2, f.Len())

	recs := f.View().Records()
	assert.Equal(t, map[string]any{"id": int64(1), "name": "alice", "age": 28.5}, recs[0])
	assert.Equal(t, int64(2), recs[1]["id"])
	assert.Equal(t, "bob", recs[1]["name"])
}

func TestInferCell(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"  ", nil},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"true", true},
		{"FALSE", false},
		{"hello", "hello"},
		{"00420", int64(420)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, inferCell(tt.in))
		})
	}
}
