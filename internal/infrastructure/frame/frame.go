// Package frame implements the in-memory columnar table behind file-backed
// tabular sources, together with the readers that load one from a bulk file
// format and the codec that round-trips one through a cache backend.
package frame

import (
	"sort"

	"github.com/shopspring/decimal"

	"tabula/internal/core/types"
)

// Frame is an immutable column-major table. Filtering, sorting and slicing
// never mutate a Frame; they derive Views holding row indices into it.
type Frame struct {
	names   []string
	index   map[string]int
	cols    [][]any
	numeric []bool
}

// New builds a frame from column names and row-major cells. Short rows are
// padded with nils, long rows truncated, so ragged input (hand-edited CSV,
// trailing cells) still loads.
func New(names []string, rows [][]any) *Frame {
	f := &Frame{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		cols:  make([][]any, len(names)),
	}
	for i, name := range f.names {
		f.index[name] = i
		f.cols[i] = make([]any, len(rows))
	}
	for r, row := range rows {
		for c := range f.names {
			if c < len(row) {
				f.cols[c][r] = row[c]
			}
		}
	}
	f.detectNumeric()
	return f
}

// Empty returns a frame with no columns and no rows.
func Empty() *Frame {
	return New(nil, nil)
}

// Columns returns the column names in declaration order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return len(f.cols[0])
}

// Column returns the index of a named column.
func (f *Frame) Column(name string) (int, bool) {
	i, ok := f.index[name]
	return i, ok
}

// Numeric reports whether every present value of the column is numeric.
// Columns with no values at all are not numeric.
func (f *Frame) Numeric(col int) bool {
	return f.numeric[col]
}

// Value returns the raw cell at (row, col).
func (f *Frame) Value(row, col int) any {
	return f.cols[col][row]
}

func (f *Frame) detectNumeric() {
	f.numeric = make([]bool, len(f.cols))
	for c, col := range f.cols {
		seen := false
		numeric := true
		for _, v := range col {
			if v == nil {
				continue
			}
			seen = true
			if !isNumericValue(v) {
				numeric = false
				break
			}
		}
		f.numeric[c] = seen && numeric
	}
}

func isNumericValue(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		decimal.Decimal:
		return true
	}
	return false
}

// View is an ordered selection of frame rows. Deriving operations return new
// Views and leave both the receiver and the frame untouched.
type View struct {
	f    *Frame
	rows []int
}

// View selects all rows in base order.
func (f *Frame) View() *View {
	rows := make([]int, f.Len())
	for i := range rows {
		rows[i] = i
	}
	return &View{f: f, rows: rows}
}

// Len returns the number of selected rows.
func (v *View) Len() int {
	return len(v.rows)
}

// Where keeps the rows for which pred holds.
func (v *View) Where(pred func(row int) bool) *View {
	kept := make([]int, 0, len(v.rows))
	for _, r := range v.rows {
		if pred(r) {
			kept = append(kept, r)
		}
	}
	return &View{f: v.f, rows: kept}
}

// SortBy orders the view by one column. The sort is stable, so ties keep
// their current relative order. Missing values sort after present ones in
// both directions.
func (v *View) SortBy(col int, desc bool) *View {
	rows := append([]int(nil), v.rows...)
	numeric := v.f.Numeric(col)

	sort.SliceStable(rows, func(i, j int) bool {
		a := v.f.Value(rows[i], col)
		b := v.f.Value(rows[j], col)
		if a == nil || b == nil {
			// missing values sink to the end for asc and desc alike
			return a != nil && b == nil
		}
		var less bool
		if numeric {
			af, _ := types.ToFloat(a)
			bf, _ := types.ToFloat(b)
			less = af < bf
		} else {
			less = types.Stringify(a) < types.Stringify(b)
		}
		if desc {
			return !less && !valuesEqual(a, b, numeric)
		}
		return less
	})
	return &View{f: v.f, rows: rows}
}

func valuesEqual(a, b any, numeric bool) bool {
	if numeric {
		af, _ := types.ToFloat(a)
		bf, _ := types.ToFloat(b)
		return af == bf
	}
	return types.Stringify(a) == types.Stringify(b)
}

// Slice selects the half-open row window [start, start+size). Out-of-range
// windows yield an empty view.
func (v *View) Slice(start, size int) *View {
	if start < 0 {
		start = 0
	}
	if start >= len(v.rows) || size <= 0 {
		return &View{f: v.f}
	}
	end := start + size
	if end > len(v.rows) {
		end = len(v.rows)
	}
	return &View{f: v.f, rows: append([]int(nil), v.rows[start:end]...)}
}

// Records materializes the view as raw (unserialized) records.
func (v *View) Records() []map[string]any {
	out := make([]map[string]any, len(v.rows))
	for i, r := range v.rows {
		rec := make(map[string]any, len(v.f.names))
		for c, name := range v.f.names {
			rec[name] = v.f.Value(r, c)
		}
		out[i] = rec
	}
	return out
}
