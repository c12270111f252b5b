// Package tabular defines the polymorphic data-access contract implemented by
// every backend: relational statements, in-memory record lists and file-backed
// frames. Callers depend on the Source interface only, never on a concrete
// backend.
package tabular

import (
	"context"

	"tabula/internal/domain/filter"
)

// Row is one materialized record, keyed by column name. Values are JSON-safe:
// nil, bool, int64, float64, string, []any or map[string]any.
type Row = map[string]any

// Source is the filter/sort/paginate/count/columns contract.
//
// Mutators return the same instance for chaining and never perform I/O; all
// I/O happens in the terminal reads. Filter always resets from the base
// store, so repeated calls are idempotent with respect to prior filter
// state. A Source is reusable across logical requests but is not safe for
// concurrent use.
type Source interface {
	// Filter resets to the base store and conjunctively applies items in
	// order. Items that cannot be applied (unknown field, failed coercion)
	// are skipped with a log entry, never a failure.
	Filter(items []filter.Item) Source

	// Sort orders by the given column. Empty or unknown sortBy is a no-op.
	// sortOrder is compared case-insensitively to "desc"; anything else
	// means ascending. The sort is stable.
	Sort(sortBy, sortOrder string) Source

	// Paginate selects the window [(page-1)*size, page*size). Zero page or
	// size is a no-op; out-of-range windows read back empty.
	Paginate(page, size int) Source

	// All materializes the current filtered/sorted/paginated view as
	// JSON-safe rows.
	All(ctx context.Context) ([]Row, error)

	// Count returns the number of rows matching the current filter only;
	// sort and pagination do not affect it.
	Count(ctx context.Context) (int64, error)

	// Columns returns the field names available from this source.
	Columns(ctx context.Context) ([]string, error)
}

// ResolvedResource is the answer of a resource-resolution collaborator.
// Exactly one of UploadPath and URL is usually set; UploadPath wins.
type ResolvedResource struct {
	UploadPath string
	URL        string
}

// ResourceResolver resolves a logical resource identifier into a fetchable
// location. Implementations may fail for unknown or unauthorized resources;
// frame-backed sources fall back to a directly supplied URL on any failure.
type ResourceResolver interface {
	Resolve(ctx context.Context, resourceID string) (ResolvedResource, error)
}
