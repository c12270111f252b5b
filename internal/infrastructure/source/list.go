// Package source implements the in-memory and file-backed tabular sources.
// The relational source lives in infrastructure/storage/postgres.
package source

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"tabula/internal/core/types"
	"tabula/internal/domain/filter"
	"tabula/internal/domain/tabular"
	"tabula/pkg/logger"
)

// ListSource serves a fixed record list. Useful for small static tables,
// demos and tests, when the data is already on hand.
//
// Comparisons are made on the string form of both sides, the way a
// query-string filter reads; sorting compares numerically when both sides
// are numeric.
type ListSource struct {
	data []map[string]any

	filters   []filter.Item
	sortBy    string
	sortOrder string
	page      int
	size      int
}

var _ tabular.Source = (*ListSource)(nil)

// NewList creates a source over data. The slice is referenced, not copied;
// callers must not mutate it afterwards.
func NewList(data []map[string]any) *ListSource {
	return &ListSource{data: data}
}

// Filter replaces any previously applied filter set.
func (s *ListSource) Filter(items []filter.Item) tabular.Source {
	s.filters = append([]filter.Item(nil), items...)
	return s
}

// Sort records the sort column and direction.
func (s *ListSource) Sort(sortBy, sortOrder string) tabular.Source {
	s.sortBy = sortBy
	s.sortOrder = sortOrder
	return s
}

// Paginate records the page window.
func (s *ListSource) Paginate(page, size int) tabular.Source {
	s.page = page
	s.size = size
	return s
}

// All materializes the current view as JSON-safe rows.
func (s *ListSource) All(ctx context.Context) ([]tabular.Row, error) {
	rows := s.filtered(ctx)
	rows = s.sorted(rows)
	rows = paginateRecords(rows, s.page, s.size)

	out := make([]tabular.Row, len(rows))
	for i, row := range rows {
		out[i] = types.SerializeRow(row)
	}
	return out, nil
}

// Count returns the filtered row count, independent of sort and pagination.
func (s *ListSource) Count(ctx context.Context) (int64, error) {
	return int64(len(s.filtered(ctx))), nil
}

// Columns returns the field names of the first record, sorted for
// determinism.
func (s *ListSource) Columns(ctx context.Context) ([]string, error) {
	if len(s.data) == 0 {
		return nil, nil
	}
	cols := make([]string, 0, len(s.data[0]))
	for k := range s.data[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, nil
}

func (s *ListSource) filtered(ctx context.Context) []map[string]any {
	rows := s.data
	for _, item := range s.filters {
		if !item.Operator.Known() {
			logger.Debug(ctx, "skipping filter with unknown operator",
				"field", item.Field, "operator", item.Operator)
			continue
		}
		// absent fields compare as the empty string
		kept := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			if matchString(types.Stringify(row[item.Field]), item.Operator, item.Value) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	return rows
}

func (s *ListSource) hasField(field string) bool {
	if len(s.data) == 0 {
		return false
	}
	_, ok := s.data[0][field]
	return ok
}

func (s *ListSource) sorted(rows []map[string]any) []map[string]any {
	if s.sortBy == "" || !s.hasField(s.sortBy) {
		return rows
	}
	desc := isDescending(s.sortOrder)

	out := append([]map[string]any(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		cmp := compareValues(out[i][s.sortBy], out[j][s.sortBy])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// compareValues orders two cells: numerically when both sides are numeric Go
// values, lexically on their string form otherwise. Missing values sink to
// the end.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		default:
			return -1
		}
	}
	if isNumeric(a) && isNumeric(b) {
		af, _ := types.ToFloat(a)
		bf, _ := types.ToFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := types.Stringify(a), types.Stringify(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		decimal.Decimal:
		return true
	}
	return false
}

func paginateRecords(rows []map[string]any, page, size int) []map[string]any {
	if page <= 0 || size <= 0 {
		return rows
	}
	start := (page - 1) * size
	if start >= len(rows) {
		return nil
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
