package catalog

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/metrics"
	"github.com/merlotworks/wineclub-backend/pkg/square"
)

type stubSource struct {
	configured bool
	objects    []square.Object
	err        error
	calls      int
}

func (s *stubSource) ListCatalog(ctx context.Context) ([]square.Object, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.objects, nil
}

func (s *stubSource) Configured() bool { return s.configured }

func newTestService(t *testing.T, source Source) Service {
	t.Helper()
	svc, err := NewService(source, logger.New(logger.Options{ServiceName: "test"}), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestQueryDemoModeWhenUnconfigured(t *testing.T) {
	source := &stubSource{configured: false}
	svc := newTestService(t, source)

	result, err := svc.Query(context.Background(), QueryInput{})
	if err != nil {
		t.Fatalf("expected nil error in demo mode, got %v", err)
	}
	if !result.DemoMode {
		t.Fatal("expected DemoMode=true")
	}
	if len(result.Wines) != 0 {
		t.Fatalf("expected empty wines, got %d", len(result.Wines))
	}
	if source.calls != 0 {
		t.Fatalf("expected no upstream call when unconfigured, got %d", source.calls)
	}
}

func TestQueryDemoModeWhenUnreachable(t *testing.T) {
	source := &stubSource{
		configured: true,
		err:        pkgerrors.New(pkgerrors.CodeDependency, "square unreachable"),
	}
	svc := newTestService(t, source)

	result, err := svc.Query(context.Background(), QueryInput{})
	if err != nil {
		t.Fatalf("expected nil error on upstream failure, got %v", err)
	}
	if !result.DemoMode {
		t.Fatal("expected DemoMode=true on upstream failure")
	}
	if source.calls != 1 {
		t.Fatalf("expected exactly one upstream attempt, got %d", source.calls)
	}
}

func TestQueryFiltersAndLimits(t *testing.T) {
	source := &stubSource{
		configured: true,
		objects: []square.Object{
			categoryObject("C1", "Bold Reds"),
			categoryObject("C2", "Crisp Whites"),
			itemObject("I1", "Cab", "C1", nil, variation("V1", 2900, 5, nil)),
			itemObject("I2", "Merlot", "C1", nil, variation("V2", 2500, 2, nil)),
			itemObject("I3", "Chard", "C2", nil, variation("V3", 2200, 9, nil)),
		},
	}
	svc := newTestService(t, source)

	t.Run("caseInsensitiveSubstring", func(t *testing.T) {
		result, err := svc.Query(context.Background(), QueryInput{Category: "reds"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(result.Wines) != 2 {
			t.Fatalf("expected 2 reds, got %d", len(result.Wines))
		}
		if result.DemoMode {
			t.Fatal("expected DemoMode=false")
		}
	})

	t.Run("allDisablesFilter", func(t *testing.T) {
		result, err := svc.Query(context.Background(), QueryInput{Category: "all"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(result.Wines) != 3 {
			t.Fatalf("expected 3 wines, got %d", len(result.Wines))
		}
		if result.TotalItems != 3 {
			t.Fatalf("expected total items 3, got %d", result.TotalItems)
		}
	})

	t.Run("limitTruncates", func(t *testing.T) {
		result, err := svc.Query(context.Background(), QueryInput{Category: "all", Limit: 2})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(result.Wines) != 2 {
			t.Fatalf("expected 2 wines, got %d", len(result.Wines))
		}
		if result.Wines[0].ID != "I1" || result.Wines[1].ID != "I2" {
			t.Fatalf("expected truncation to preserve order, got %s, %s", result.Wines[0].ID, result.Wines[1].ID)
		}
	})
}

func TestQueryCountsDemoResponses(t *testing.T) {
	reg := prometheus.NewRegistry()
	catalogMetrics := metrics.NewCatalogMetrics(reg)
	svc, err := NewService(&stubSource{configured: false}, logger.New(logger.Options{ServiceName: "test"}), catalogMetrics)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Query(context.Background(), QueryInput{}); err != nil {
		t.Fatalf("Query: %v", err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "catalog_demo_responses_total" {
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
				t.Fatalf("expected demo counter 1, got %f", got)
			}
			return
		}
	}
	t.Fatal("catalog_demo_responses_total not found")
}
