package queries

import (
	"context"
	"testing"

	"github.com/edgekit/go-widgets/components/datasource"
	widgets "github.com/edgekit/go-widgets/components/widgets"
)

type stubLayoutService struct {
	calls int
}

func (s *stubLayoutService) ConfigureLayout(context.Context, widgets.ViewerContext) (widgets.Layout, error) {
	s.calls++
	return widgets.Layout{Areas: map[string][]widgets.WidgetInstance{}}, nil
}

type stubAreaService struct {
	calls int
}

func (s *stubAreaService) ResolveArea(context.Context, widgets.ViewerContext, string) (widgets.ResolvedArea, error) {
	s.calls++
	return widgets.ResolvedArea{}, nil
}

func TestLayoutQuery(t *testing.T) {
	service := &stubLayoutService{}
	query := NewLayoutQuery(service)
	_, err := query.Query(context.Background(), widgets.ViewerContext{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 call, got %d", service.calls)
	}
}

func TestWidgetAreaQuery(t *testing.T) {
	service := &stubAreaService{}
	query := NewWidgetAreaQuery(service)
	_, err := query.Query(context.Background(), WidgetAreaInput{AreaCode: "dashboard.main"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 call, got %d", service.calls)
	}
}

func TestCatalogQuery(t *testing.T) {
	directory := CatalogDirectoryFunc(func(context.Context) (datasource.CatalogInput, error) {
		return datasource.CatalogInput{
			Devices: []datasource.Device{
				{ID: "d1", Name: "Thermostat", Type: "climate"},
				{ID: "d2", Name: "Switch"},
			},
			DeviceTypes: []datasource.DeviceType{
				{ID: "climate", Metrics: []datasource.MetricDef{{ID: "temperature", Name: "Temperature", Unit: "C"}}},
			},
			SystemMetrics: []datasource.MetricDef{{ID: "cpu_usage", Name: "CPU"}},
		}, nil
	})
	query := NewCatalogQuery(directory, nil)

	result, err := query.Query(context.Background(), CatalogRequest{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(result.Categories) != len(datasource.Categories()) {
		t.Fatalf("expected all category descriptors, got %d", len(result.Categories))
	}
	if len(result.Entries) == 0 {
		t.Fatalf("expected entries from the directory")
	}

	scoped, err := query.Query(context.Background(), CatalogRequest{Category: datasource.CategorySystem})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	for _, entry := range scoped.Entries {
		if entry.Category != datasource.CategorySystem {
			t.Fatalf("expected only system entries, got %s", entry.Category)
		}
	}

	searched, err := query.Query(context.Background(), CatalogRequest{Search: "thermostat"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(searched.Entries) == 0 {
		t.Fatalf("expected search matches for thermostat")
	}
	for _, entry := range searched.Entries {
		if entry.Source.DeviceID != "d1" {
			t.Fatalf("unexpected search match: %+v", entry)
		}
	}
}

func TestCatalogQueryWithoutDirectory(t *testing.T) {
	query := NewCatalogQuery(nil, nil)
	result, err := query.Query(context.Background(), CatalogRequest{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Fatalf("expected empty catalog, got %d entries", len(result.Entries))
	}
	if len(result.Categories) == 0 {
		t.Fatalf("category descriptors should still be present")
	}
}
