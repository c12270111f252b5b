package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame() *Frame {
	return New(
		[]string{"id", "name", "age"},
		[][]any{
			{int64(1), "bob", 34.0},
			{int64(2), "alice", 28.0},
			{int64(3), "carol", nil},
			{int64(4), "alice", 34.0},
		},
	)
}

func TestNew_RaggedRows(t *testing.T) {
	f := New([]string{"a", "b"}, [][]any{
		{1},
		{2, 3, 4},
	})

	require.Equal(t, 2, f.Len())
	assert.Equal(t, 1, f.Value(0, 0))
	assert.Nil(t, f.Value(0, 1), "short rows are padded with nil")
	assert.Equal(t, 3, f.Value(1, 1))
}

func TestFrame_Empty(t *testing.T) {
	f := Empty()
	assert.Zero(t, f.Len())
	assert.Empty(t, f.Columns())
}

func TestFrame_NumericDetection(t *testing.T) {
	f := New([]string{"n", "mixed", "text", "blank"}, [][]any{
		{1, 1, "a", nil},
		{2.5, "x", "b", nil},
		{nil, 3, "c", nil},
	})

	col := func(name string) int {
		i, ok := f.Column(name)
		require.True(t, ok)
		return i
	}

	assert.True(t, f.Numeric(col("n")), "nils do not break numeric detection")
	assert.False(t, f.Numeric(col("mixed")))
	assert.False(t, f.Numeric(col("text")))
	assert.False(t, f.Numeric(col("blank")), "a column with no values is not numeric")
}

func TestView_Where(t *testing.T) {
	f := sampleFrame()
	name, _ := f.Column("name")

	v := f.View().Where(func(row int) bool {
		return f.Value(row, name) == "alice"
	})

	require.Equal(t, 2, v.Len())
	recs := v.Records()
	assert.Equal(t, int64(2), recs[0]["id"])
	assert.Equal(t, int64(4), recs[1]["id"])
}

func TestView_SortBy(t *testing.T) {
	f := sampleFrame()
	name, _ := f.Column("name")
	age, _ := f.Column("age")

	t.Run("ascending by string column", func(t *testing.T) {
		recs := f.View().SortBy(name, false).Records()
		got := make([]any, len(recs))
		for i, r := range recs {
			got[i] = r["id"]
		}
		assert.Equal(t, []any{int64(2), int64(4), int64(1), int64(3)}, got)
	})

	t.Run("sort is stable on ties", func(t *testing.T) {
		recs := f.View().SortBy(age, false).Records()
		// rows 1 and 4 both have age 34; base order is kept
		got := make([]any, len(recs))
		for i, r := range recs {
			got[i] = r["id"]
		}
		assert.Equal(t, []any{int64(2), int64(1), int64(4), int64(3)}, got)
	})

	t.Run("missing values sink to the end in both directions", func(t *testing.T) {
		asc := f.View().SortBy(age, false).Records()
		assert.Equal(t, int64(3), asc[len(asc)-1]["id"])

		desc := f.View().SortBy(age, true).Records()
		assert.Equal(t, int64(3), desc[len(desc)-1]["id"])
	})

	t.Run("descending by numeric column", func(t *testing.T) {
		recs := f.View().SortBy(age, true).Records()
		got := make([]any, len(recs))
		for i, r := range recs {
			got[i] = r["id"]
		}
		assert.Equal(t, []any{int64(1), int64(4), int64(2), int64(3)}, got)
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		v := f.View()
		v.SortBy(name, false)
		assert.Equal(t, int64(1), v.Records()[0]["id"])
	})
}

func TestView_Slice(t *testing.T) {
	f := sampleFrame()

	tests := []struct {
		name    string
		start   int
		size    int
		wantIDs []any
	}{
		{"middle window", 1, 2, []any{int64(2), int64(3)}},
		{"window past the end is clamped", 3, 10, []any{int64(4)}},
		{"start beyond the data is empty", 10, 5, nil},
		{"zero size is empty", 0, 0, nil},
		{"negative start clamps to zero", -3, 1, []any{int64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := f.View().Slice(tt.start, tt.size).Records()
			var got []any
			for _, r := range recs {
				got = append(got, r["id"])
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	f := sampleFrame()

	decoded, ok := Decode(Encode(f))
	require.True(t, ok)

	assert.Equal(t, f.Columns(), decoded.Columns())
	assert.Equal(t, f.Len(), decoded.Len())
	assert.Equal(t, f.View().Records(), decoded.View().Records())
}

func TestDecode_RejectsForeignShapes(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"not a map", []any{"x"}},
		{"missing rows", map[string]any{"columns": []any{"a"}}},
		{"missing columns", map[string]any{"rows": []any{}}},
		{"non-string column", map[string]any{"columns": []any{1}, "rows": []any{}}},
		{"non-list row", map[string]any{"columns": []any{"a"}, "rows": []any{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Decode(tt.in)
			assert.False(t, ok)
		})
	}
}
