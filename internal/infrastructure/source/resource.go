package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"tabula/internal/core/apperror"
	"tabula/internal/core/types"
	"tabula/internal/domain/filter"
	"tabula/internal/domain/tabular"
	"tabula/internal/infrastructure/cache"
	"tabula/internal/infrastructure/frame"
	"tabula/pkg/logger"
)

const defaultFetchTimeout = 30 * time.Second

// ResourceConfig configures a frame-backed source. At least one of
// ResourceID and URL is required. Cache is optional; without it every
// instance fetches and parses on first read.
type ResourceConfig struct {
	// Format names the bulk file format: csv, xlsx, orc, parquet, feather.
	Format string

	// ResourceID is a logical identifier handed to Resolver.
	ResourceID string

	// URL is the direct fetch location, also the fallback when resolution
	// fails.
	URL string

	// Resolver translates ResourceID into an upload path or URL. May be nil.
	Resolver tabular.ResourceResolver

	// Cache holds parsed frames across instances. May be nil.
	Cache cache.Backend

	// TTL bounds the cached frame's lifetime. The backend's expiry is
	// authoritative; the source itself never re-checks age.
	TTL time.Duration

	// FetchTimeout bounds URL fetches. Defaults to 30s.
	FetchTimeout time.Duration

	// HTTPClient overrides the fetch client (tests). Its Timeout is replaced
	// by FetchTimeout when unset.
	HTTPClient *http.Client
}

// ResourceSource loads a bulk file into a frame once per instance and then
// filters, sorts and paginates in memory. The parsed frame is shared across
// instances through the cache backend; a fetch or parse failure degrades to
// an empty table rather than an error.
type ResourceSource struct {
	cfg    ResourceConfig
	format frame.Format
	client *http.Client

	loaded     *frame.Frame
	sourcePath string

	filters   []filter.Item
	sortBy    string
	sortOrder string
	page      int
	size      int
}

var _ tabular.Source = (*ResourceSource)(nil)

// NewResource validates the configuration and creates the source. An unknown
// format and a missing identifier are both fatal here, before any I/O.
func NewResource(cfg ResourceConfig) (*ResourceSource, error) {
	format, err := frame.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	if cfg.ResourceID == "" && cfg.URL == "" {
		return nil, apperror.NewValidation("either resource_id or url must be provided")
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	} else if client.Timeout == 0 {
		c := *client
		c.Timeout = timeout
		client = &c
	}

	return &ResourceSource{cfg: cfg, format: format, client: client}, nil
}

// Filter replaces any previously applied filter set.
func (s *ResourceSource) Filter(items []filter.Item) tabular.Source {
	s.filters = append([]filter.Item(nil), items...)
	return s
}

// Sort records the sort column and direction.
func (s *ResourceSource) Sort(sortBy, sortOrder string) tabular.Source {
	s.sortBy = sortBy
	s.sortOrder = sortOrder
	return s
}

// Paginate records the page window.
func (s *ResourceSource) Paginate(page, size int) tabular.Source {
	s.page = page
	s.size = size
	return s
}

// All materializes the current view as JSON-safe rows.
func (s *ResourceSource) All(ctx context.Context) ([]tabular.Row, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	view := s.applyFilters(ctx, s.loaded.View())
	view = s.applySort(view)
	if s.page > 0 && s.size > 0 {
		view = view.Slice((s.page-1)*s.size, s.size)
	}

	records := view.Records()
	out := make([]tabular.Row, len(records))
	for i, rec := range records {
		out[i] = types.SerializeRow(rec)
	}
	return out, nil
}

// Count returns the filtered row count, independent of sort and pagination.
func (s *ResourceSource) Count(ctx context.Context) (int64, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return int64(s.applyFilters(ctx, s.loaded.View()).Len()), nil
}

// Columns returns the frame's column names, loading it if necessary.
func (s *ResourceSource) Columns(ctx context.Context) ([]string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.loaded.Columns(), nil
}

// CacheKey identifies this source's frame in the cache backend. Derived from
// the resource identity, so independent instances share one entry.
func (s *ResourceSource) CacheKey() string {
	if s.cfg.ResourceID != "" {
		return "resource-" + s.cfg.ResourceID
	}
	return "url-" + s.cfg.URL
}

// ensureLoaded makes s.loaded non-nil: instance memo, then cache, then
// fetch-and-parse. Only an authorization/not-found answer from the resolver
// propagates; every other failure degrades to an empty frame.
func (s *ResourceSource) ensureLoaded(ctx context.Context) error {
	if s.loaded != nil {
		return nil
	}

	if s.cfg.Cache != nil {
		if payload, ok := s.cfg.Cache.Get(ctx, s.CacheKey()); ok {
			if f, ok := frame.Decode(payload); ok {
				s.loaded = f
				return nil
			}
			logger.Debug(ctx, "cached frame payload has unexpected shape, refetching",
				"key", s.CacheKey())
		}
	}

	f, err := s.fetchFrame(ctx)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			switch appErr.Code {
			case apperror.CodeUnauthorized, apperror.CodeForbidden, apperror.CodeNotFound:
				return err
			}
		}
		logger.Warn(ctx, "failed to load resource, serving empty table",
			"key", s.CacheKey(), "format", s.format, "error", err)
		s.loaded = frame.Empty()
		return nil
	}
	s.loaded = f

	if s.cfg.Cache != nil {
		if err := s.cfg.Cache.Set(ctx, s.CacheKey(), frame.Encode(f), s.cfg.TTL); err != nil {
			logger.Warn(ctx, "failed to cache frame",
				"key", s.CacheKey(), "error", err)
		}
	}
	return nil
}

func (s *ResourceSource) fetchFrame(ctx context.Context) (*frame.Frame, error) {
	path, err := s.resolveSourcePath(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.readAll(ctx, path)
	if err != nil {
		return nil, err
	}
	return frame.Read(s.format, data)
}

// resolveSourcePath resolves once per instance: resolver upload path, then
// resolver URL, then the directly supplied URL.
func (s *ResourceSource) resolveSourcePath(ctx context.Context) (string, error) {
	if s.sourcePath != "" {
		return s.sourcePath, nil
	}

	if s.cfg.ResourceID != "" && s.cfg.Resolver != nil {
		resolved, err := s.cfg.Resolver.Resolve(ctx, s.cfg.ResourceID)
		switch {
		case err == nil && resolved.UploadPath != "":
			s.sourcePath = resolved.UploadPath
			return s.sourcePath, nil
		case err == nil && resolved.URL != "":
			s.sourcePath = resolved.URL
			return s.sourcePath, nil
		case err != nil:
			if appErr, ok := apperror.AsAppError(err); ok {
				switch appErr.Code {
				case apperror.CodeUnauthorized, apperror.CodeForbidden, apperror.CodeNotFound:
					return "", err
				}
			}
			logger.Warn(ctx, "failed to resolve resource path, falling back to url",
				"resource_id", s.cfg.ResourceID, "error", err)
		}
	}

	if s.cfg.URL != "" {
		s.sourcePath = s.cfg.URL
		return s.sourcePath, nil
	}
	return "", fmt.Errorf("could not resolve source path for resource %q", s.cfg.ResourceID)
}

func (s *ResourceSource) readAll(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return os.ReadFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *ResourceSource) applyFilters(ctx context.Context, view *frame.View) *frame.View {
	for _, item := range s.filters {
		col, ok := s.loaded.Column(item.Field)
		if !ok {
			logger.Debug(ctx, "skipping filter on unknown column",
				"field", item.Field, "operator", item.Operator)
			continue
		}
		if !item.Operator.Known() {
			logger.Debug(ctx, "skipping filter with unknown operator",
				"field", item.Field, "operator", item.Operator)
			continue
		}
		view = view.Where(s.predicate(col, item))
	}
	return view
}

// predicate builds the per-row match for one filter item. Numeric columns
// compare as floats for every operator except "like", which always compares
// the original string forms so a query for "157" matches a cell rendered
// 157.0 and never matches 15.
func (s *ResourceSource) predicate(col int, item filter.Item) func(row int) bool {
	if item.Operator != filter.Like && s.loaded.Numeric(col) {
		if want, err := strconv.ParseFloat(strings.TrimSpace(item.Value), 64); err == nil {
			return func(row int) bool {
				cell, ok := types.ToFloat(s.loaded.Value(row, col))
				if !ok {
					return false
				}
				return matchFloat(cell, item.Operator, want)
			}
		}
		// value does not parse as a number; fall through to string form
	}

	return func(row int) bool {
		cell := s.loaded.Value(row, col)
		if cell == nil {
			return false
		}
		return matchString(types.Stringify(cell), item.Operator, item.Value)
	}
}

func (s *ResourceSource) applySort(view *frame.View) *frame.View {
	if s.sortBy == "" {
		return view
	}
	col, ok := s.loaded.Column(s.sortBy)
	if !ok {
		return view
	}
	return view.SortBy(col, isDescending(s.sortOrder))
}
