package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/metrics"
	"github.com/merlotworks/wineclub-backend/pkg/square"
)

// Source supplies the raw catalog object graph. Configured reports whether
// upstream credentials are present; when they are not, Query serves the
// demo-mode response instead of calling out.
type Source interface {
	ListCatalog(ctx context.Context) ([]square.Object, error)
	Configured() bool
}

// Service exposes normalized catalog queries.
type Service interface {
	Query(ctx context.Context, input QueryInput) (*QueryResult, error)
}

// QueryInput selects and bounds the wines to return. Category "" and "all"
// both mean unfiltered; Limit <= 0 means unlimited.
type QueryInput struct {
	Category string
	Limit    int
}

// QueryResult is the shaped catalog response. DemoMode is the degraded-mode
// signal: callers branch on it, never on an error, when upstream is
// unconfigured or unreachable.
type QueryResult struct {
	Wines               []WineRecord `json:"wines"`
	AvailableCategories []string     `json:"available_categories"`
	TotalItems          int          `json:"total_items"`
	DemoMode            bool         `json:"is_demo_mode"`
}

type service struct {
	source  Source
	logg    *logger.Logger
	metrics *metrics.CatalogMetrics
}

// NewService constructs the inventory query service. Metrics may be nil.
func NewService(source Source, logg *logger.Logger, catalogMetrics *metrics.CatalogMetrics) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{source: source, logg: logg, metrics: catalogMetrics}, nil
}

// Query performs exactly one upstream fetch, normalizes it, then applies the
// category filter and limit. Upstream failure degrades to the demo response;
// the caller owns timeouts through ctx.
func (s *service) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	if !s.source.Configured() {
		s.logg.Info(ctx, "catalog source not configured, serving demo response")
		s.metrics.IncDemoResponse()
		return demoResult(), nil
	}

	start := time.Now()
	objects, err := s.source.ListCatalog(ctx)
	if err != nil {
		s.metrics.ObserveFetch("error", time.Since(start))
		s.metrics.IncDemoResponse()
		s.logg.Error(ctx, "catalog fetch failed, serving demo response", err)
		return demoResult(), nil
	}
	s.metrics.ObserveFetch("ok", time.Since(start))

	normalized := Normalize(objects)
	if len(normalized.Skipped) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "skipped", len(normalized.Skipped)), "catalog objects skipped during normalization")
	}

	wines := filterByCategory(normalized.Wines, input.Category)
	if input.Limit > 0 && len(wines) > input.Limit {
		wines = wines[:input.Limit]
	}

	return &QueryResult{
		Wines:               wines,
		AvailableCategories: normalized.AvailableCategories,
		TotalItems:          normalized.TotalItems,
	}, nil
}

func demoResult() *QueryResult {
	return &QueryResult{
		Wines:               []WineRecord{},
		AvailableCategories: []string{},
		DemoMode:            true,
	}
}

// filterByCategory keeps wines whose category name contains the filter,
// case-insensitively. "" and "all" disable filtering.
func filterByCategory(wines []WineRecord, filter string) []WineRecord {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == "all" {
		return wines
	}
	matched := []WineRecord{}
	for _, wine := range wines {
		if strings.Contains(strings.ToLower(wine.CategoryName), filter) {
			matched = append(matched, wine)
		}
	}
	return matched
}
