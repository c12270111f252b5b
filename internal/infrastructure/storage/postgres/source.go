// Package postgres provides the relational tabular source: filters, sort and
// pagination are pushed down into a SQL statement instead of evaluated in
// memory.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tabula/internal/core/types"
	"tabula/internal/domain/filter"
	"tabula/internal/domain/tabular"
	"tabula/pkg/logger"
)

// Querier is the query surface needed from pgx. *pgxpool.Pool, *pgx.Conn and
// pgx.Tx all satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ColumnType declares how a column's filter literals are coerced.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnBoolean
	ColumnInteger
	ColumnTimestamp
)

// Column pairs a selectable column with its declared type.
type Column struct {
	Name string
	Type ColumnType
}

// truthy is the token set accepted as boolean true, compared
// case-insensitively. Everything else coerces to false.
var truthy = map[string]struct{}{"true": {}, "1": {}, "yes": {}, "y": {}}

// StatementSource implements tabular.Source over a squirrel SELECT. The base
// statement must not carry ORDER BY/LIMIT/OFFSET of its own; those are owned
// by Sort and Paginate.
//
// Filters are whitelisted against the declared columns (SQL injection
// protection) and coerced by declared type; an item whose value cannot be
// coerced resolves to no expression and is skipped.
type StatementSource struct {
	db       Querier
	base     squirrel.SelectBuilder
	columns  []Column
	colTypes map[string]ColumnType

	filters   []filter.Item
	sortBy    string
	sortOrder string
	page      int
	size      int
}

var _ tabular.Source = (*StatementSource)(nil)

// NewStatement creates a source selecting the declared columns from table.
func NewStatement(db Querier, table string, columns []Column) *StatementSource {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	base := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select(names...).
		From(table)
	return NewStatementFromSelect(db, base, columns)
}

// NewStatementFromSelect creates a source over a caller-supplied base
// statement (joins, fixed WHERE conditions).
func NewStatementFromSelect(db Querier, base squirrel.SelectBuilder, columns []Column) *StatementSource {
	colTypes := make(map[string]ColumnType, len(columns))
	for _, col := range columns {
		colTypes[col.Name] = col.Type
	}
	return &StatementSource{
		db:       db,
		base:     base,
		columns:  columns,
		colTypes: colTypes,
	}
}

// Filter replaces any previously applied filter set; building always starts
// from the base statement.
func (s *StatementSource) Filter(items []filter.Item) tabular.Source {
	s.filters = append([]filter.Item(nil), items...)
	return s
}

// Sort records the sort column and direction.
func (s *StatementSource) Sort(sortBy, sortOrder string) tabular.Source {
	s.sortBy = sortBy
	s.sortOrder = sortOrder
	return s
}

// Paginate records the page window.
func (s *StatementSource) Paginate(page, size int) tabular.Source {
	s.page = page
	s.size = size
	return s
}

// All executes the filtered, ordered, paginated statement and returns
// JSON-safe rows.
func (s *StatementSource) All(ctx context.Context) ([]tabular.Row, error) {
	q := s.applySort(s.filteredSelect(ctx))
	if s.page > 0 && s.size > 0 {
		q = q.Limit(uint64(s.size)).Offset(uint64((s.page - 1) * s.size))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []map[string]any
	if err := pgxscan.Select(ctx, s.db, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}

	rows := make([]tabular.Row, len(records))
	for i, rec := range records {
		rows[i] = types.SerializeRow(rec)
	}
	return rows, nil
}

// Count executes COUNT(*) over the filtered statement as a subquery, before
// order and pagination are applied.
func (s *StatementSource) Count(ctx context.Context) (int64, error) {
	sql, args, err := countOver(s.filteredSelect(ctx)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

// Columns returns the declared column names, usable before any data fetch.
func (s *StatementSource) Columns(ctx context.Context) ([]string, error) {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.Name
	}
	return names, nil
}

// countOver wraps a statement in SELECT COUNT(*) FROM (...) AS sub.
func countOver(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		FromSelect(q, "sub")
}

// filteredSelect applies the current filter items to the base statement.
func (s *StatementSource) filteredSelect(ctx context.Context) squirrel.SelectBuilder {
	q := s.base
	for _, item := range s.filters {
		expr := s.buildFilter(ctx, item)
		if expr == nil {
			continue
		}
		q = q.Where(expr)
	}
	return q
}

// buildFilter translates one filter item into a squirrel expression, or nil
// when the item cannot apply (unknown column, failed coercion, operator with
// no SQL form for the coerced type).
func (s *StatementSource) buildFilter(ctx context.Context, item filter.Item) squirrel.Sqlizer {
	colType, ok := s.colTypes[item.Field]
	if !ok {
		logger.Debug(ctx, "skipping filter on unknown column",
			"field", item.Field, "operator", item.Operator)
		return nil
	}

	value, err := coerce(colType, item.Value)
	if err != nil {
		logger.Debug(ctx, "skipping filter with uncoercible value",
			"field", item.Field, "operator", item.Operator, "value", item.Value, "error", err)
		return nil
	}

	switch item.Operator {
	case filter.Equal:
		return squirrel.Eq{item.Field: value}
	case filter.NotEqual:
		return squirrel.NotEq{item.Field: value}
	case filter.Less:
		return squirrel.Lt{item.Field: value}
	case filter.LessOrEqual:
		return squirrel.LtOrEq{item.Field: value}
	case filter.Greater:
		return squirrel.Gt{item.Field: value}
	case filter.GreaterOrEqual:
		return squirrel.GtOrEq{item.Field: value}
	case filter.Like:
		str, ok := value.(string)
		if !ok {
			// ILIKE over a non-text column has no expression
			return nil
		}
		return squirrel.ILike{item.Field: "%" + str + "%"}
	default:
		logger.Debug(ctx, "skipping filter with unknown operator",
			"field", item.Field, "operator", item.Operator)
		return nil
	}
}

func (s *StatementSource) applySort(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if s.sortBy == "" {
		return q
	}
	if _, ok := s.colTypes[s.sortBy]; !ok {
		return q
	}
	direction := "ASC"
	if strings.EqualFold(s.sortOrder, "desc") {
		direction = "DESC"
	}
	return q.OrderBy(s.sortBy + " " + direction)
}

// coerce casts a filter literal by declared column type. Boolean coercion
// never fails: unknown tokens are false.
func coerce(colType ColumnType, value string) (any, error) {
	switch colType {
	case ColumnBoolean:
		_, ok := truthy[strings.ToLower(strings.TrimSpace(value))]
		return ok, nil
	case ColumnInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse integer: %w", err)
		}
		return n, nil
	case ColumnTimestamp:
		ts, err := parseTimestamp(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		return ts, nil
	default:
		return value, nil
	}
}

// timestampLayouts are the accepted ISO-8601 shapes, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", value)
}
