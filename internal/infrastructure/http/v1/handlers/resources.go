package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tabula/internal/core/apperror"
	"tabula/internal/domain/filter"
	"tabula/internal/domain/tabular"
	"tabula/internal/infrastructure/cache"
	"tabula/internal/infrastructure/http/v1/dto"
	"tabula/internal/infrastructure/source"
)

// ResourcesHandler serves tabular reads over file-backed resources.
type ResourcesHandler struct {
	*BaseHandler
	cache        cache.Backend
	resolver     tabular.ResourceResolver
	ttl          time.Duration
	fetchTimeout time.Duration
}

// NewResourcesHandler creates a new resources handler. Cache and resolver may
// be nil; ttl bounds how long parsed resources are reused.
func NewResourcesHandler(backend cache.Backend, resolver tabular.ResourceResolver, ttl, fetchTimeout time.Duration) *ResourcesHandler {
	return &ResourcesHandler{
		BaseHandler:  NewBaseHandler(),
		cache:        backend,
		resolver:     resolver,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
	}
}

// Data returns one page of a resource with filter, sort and pagination
// applied, plus the filtered total.
// GET /api/v1/resources/data
func (h *ResourcesHandler) Data(c *gin.Context) {
	src, req, ok := h.buildQuery(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	queried := req.Apply(src)

	rows, err := queried.All(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := queried.Count(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.OK(c, dto.DataResponse{
		Data:     rows,
		Total:    total,
		LastPage: req.LastPage(total),
	})
}

// Columns returns the column names of a resource.
// GET /api/v1/resources/columns
func (h *ResourcesHandler) Columns(c *gin.Context) {
	src, _, ok := h.buildQuery(c)
	if !ok {
		return
	}

	columns, err := src.Columns(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.ColumnsResponse{Columns: columns})
}

// buildQuery parses the request into a source and query parameters. On
// failure the error response has already been registered.
func (h *ResourcesHandler) buildQuery(c *gin.Context) (tabular.Source, tabular.QueryRequest, bool) {
	var query dto.DataQuery
	if !h.BindQuery(c, &query) {
		return nil, tabular.QueryRequest{}, false
	}

	filters, err := parseFilters(c.QueryArray("filter"))
	if err != nil {
		h.HandleError(c, err)
		return nil, tabular.QueryRequest{}, false
	}

	src, err := source.NewResource(source.ResourceConfig{
		Format:       query.Format,
		ResourceID:   query.ResourceID,
		URL:          query.URL,
		Resolver:     h.resolver,
		Cache:        h.cache,
		TTL:          h.ttl,
		FetchTimeout: h.fetchTimeout,
	})
	if err != nil {
		h.HandleError(c, err)
		return nil, tabular.QueryRequest{}, false
	}

	return src, tabular.QueryRequest{
		Page:      query.Page,
		Size:      query.Size,
		Filters:   filters,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}, true
}

// parseFilters decodes repeated filter=field:operator:value parameters. The
// value part may itself contain colons.
func parseFilters(raw []string) ([]filter.Item, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	items := make([]filter.Item, 0, len(raw))
	for _, s := range raw {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, apperror.NewValidation("filter must look like field:operator:value").
				WithDetail("filter", s)
		}
		items = append(items, filter.Item{
			Field:    parts[0],
			Operator: filter.Operator(parts[1]),
			Value:    parts[2],
		})
	}
	return items, nil
}
