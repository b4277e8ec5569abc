package widgets

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/edgekit/go-widgets/components/datasource"
)

type stubLayoutResolver struct {
	layout Layout
	err    error
}

func (s *stubLayoutResolver) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	return s.layout, s.err
}

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func TestControllerRenderTemplate(t *testing.T) {
	service := &stubLayoutResolver{
		layout: Layout{
			Areas: map[string][]WidgetInstance{
				"dashboard.main": {
					{ID: "w1", DefinitionID: "widget.value", Metadata: map[string]any{"data": WidgetData{"value": 42}}},
				},
			},
		},
	}
	renderer := &stubRenderer{}
	controller := NewController(service, WithRenderer(renderer))

	var buf bytes.Buffer
	if err := controller.RenderTemplate(context.Background(), ViewerContext{UserID: "user"}, &buf); err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}
	if renderer.lastTemplate != "dashboard" {
		t.Fatalf("expected dashboard template to render, got %s", renderer.lastTemplate)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
}

func TestLayoutPayloadEncodesSelectionKeys(t *testing.T) {
	service := &stubLayoutResolver{
		layout: Layout{
			Areas: map[string][]WidgetInstance{
				"dashboard.main": {
					{
						ID:           "w1",
						DefinitionID: "widget.toggle",
						Sources:      datasource.FromSource(datasource.Command("d1", "toggle")),
					},
				},
			},
		},
	}
	controller := NewController(service)
	payload, err := controller.LayoutPayload(context.Background(), ViewerContext{UserID: "user"})
	if err != nil {
		t.Fatalf("LayoutPayload returned error: %v", err)
	}
	areas := payload["areas"].([]map[string]any)
	widget := areas[0]["widgets"].([]map[string]any)[0]
	sources := widget["sources"].([]datasource.SelectedItem)
	if len(sources) != 1 || sources[0] != "device-command:d1:toggle" {
		t.Fatalf("unexpected selection keys: %#v", sources)
	}
}

func TestLayoutPayloadSkipsDataSourceControl(t *testing.T) {
	registry := NewRegistry()
	_ = registry.RegisterDefinition(WidgetDefinition{
		Code: "widget.gauge",
		Name: "Gauge",
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionDataSource, Key: "source"},
			{Tag: datasource.SectionRange, Key: "bounds", Min: 0, Max: 100},
		},
	})
	service := &stubLayoutResolver{
		layout: Layout{
			Areas: map[string][]WidgetInstance{
				"dashboard.main": {
					{ID: "w1", DefinitionID: "widget.gauge"},
				},
			},
		},
	}
	controller := NewController(service, WithRegistry(registry))
	payload, err := controller.LayoutPayload(context.Background(), ViewerContext{UserID: "user"})
	if err != nil {
		t.Fatalf("LayoutPayload returned error: %v", err)
	}
	areas := payload["areas"].([]map[string]any)
	widget := areas[0]["widgets"].([]map[string]any)[0]
	controls := widget["controls"].([]datasource.Control)
	if len(controls) != 1 || controls[0].Kind != datasource.ControlSlider {
		t.Fatalf("expected only slider control, got %#v", controls)
	}
}
