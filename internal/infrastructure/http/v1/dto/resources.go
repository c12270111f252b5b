// Package dto contains request and response shapes for the HTTP API.
package dto

import "tabula/internal/domain/tabular"

// DataQuery holds the query parameters of a tabular data request. Filter
// items arrive as repeated filter=field:operator:value parameters and are
// parsed separately.
type DataQuery struct {
	Format     string `form:"format"`
	ResourceID string `form:"resource_id"`
	URL        string `form:"url"`
	Page       int    `form:"page"`
	Size       int    `form:"size"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
}

// DataResponse is one page of tabular data with pagination totals.
type DataResponse struct {
	Data     []tabular.Row `json:"data"`
	Total    int64         `json:"total"`
	LastPage int64         `json:"last_page"`
}

// ColumnsResponse lists the column names of a resource.
type ColumnsResponse struct {
	Columns []string `json:"columns"`
}
