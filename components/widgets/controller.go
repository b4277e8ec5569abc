package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"

	"github.com/edgekit/go-widgets/components/datasource"
)

// LayoutResolver resolves the widget layout for a viewer. *Service satisfies
// it; transports can substitute stubs.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
}

// Controller assembles transport-facing payloads for the widget dashboard.
type Controller struct {
	service    LayoutResolver
	registry   ProviderRegistry
	renderer   Renderer
	translator TranslationService
	title      string
}

// ControllerOption customizes controller behavior.
type ControllerOption func(*Controller)

// WithRenderer sets the HTML template renderer.
func WithRenderer(r Renderer) ControllerOption {
	return func(c *Controller) { c.renderer = r }
}

// WithRegistry provides definition lookups for localized names and config
// sections.
func WithRegistry(reg ProviderRegistry) ControllerOption {
	return func(c *Controller) { c.registry = reg }
}

// WithTranslator sets the translation service used for page chrome.
func WithTranslator(t TranslationService) ControllerOption {
	return func(c *Controller) { c.translator = t }
}

// WithPageTitle overrides the rendered page title.
func WithPageTitle(title string) ControllerOption {
	return func(c *Controller) { c.title = title }
}

// NewController wires the service into a controller.
func NewController(service LayoutResolver, opts ...ControllerOption) *Controller {
	c := &Controller{service: service, title: "Dashboard"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render resolves the layout for a viewer and returns it to the caller.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.service == nil {
		return Layout{}, nil
	}
	return c.service.ConfigureLayout(ctx, viewer)
}

// LayoutPayload resolves the layout into the JSON shape transports serve:
// per area, each widget with its localized name, provider data, selection
// keys, and rendered config controls.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	layout, err := c.Render(ctx, viewer)
	if err != nil {
		return nil, err
	}
	areas := make([]map[string]any, 0, len(layout.Areas))
	codes := make([]string, 0, len(layout.Areas))
	for code := range layout.Areas {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		widgets := layout.Areas[code]
		items := make([]map[string]any, 0, len(widgets))
		for _, widget := range widgets {
			items = append(items, c.widgetPayload(widget, viewer))
		}
		areas = append(areas, map[string]any{
			"code":    code,
			"widgets": items,
		})
	}
	return map[string]any{
		"locale": viewer.Locale,
		"areas":  areas,
	}, nil
}

func (c *Controller) widgetPayload(widget WidgetInstance, viewer ViewerContext) map[string]any {
	payload := map[string]any{
		"id":         widget.ID,
		"definition": widget.DefinitionID,
		"name":       widget.DefinitionID,
		"area":       widget.AreaCode,
		"config":     widget.Configuration,
		"sources":    datasource.SelectedItems(widget.Sources),
	}
	if c.registry != nil {
		if def, ok := c.registry.Definition(widget.DefinitionID); ok {
			payload["name"] = def.NameForLocale(viewer.Locale)
			payload["controls"] = datasource.RenderSections(def.Sections)
		}
	}
	if widget.Metadata != nil {
		if data, ok := widget.Metadata["data"]; ok {
			payload["data"] = data
		}
	}
	return payload
}

// RenderTemplate writes the dashboard HTML for a viewer.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("widgets: controller requires a renderer")
	}
	payload, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	title := translateOrFallback(ctx, c.translator, "widgets.dashboard.title", viewer.Locale, c.title, nil)
	data := map[string]any{
		"title":  title,
		"locale": viewer.Locale,
		"areas":  templateAreas(payload),
	}
	_, err = c.renderer.Render("dashboard", data, out)
	return err
}

func templateAreas(payload map[string]any) []map[string]any {
	areas, _ := payload["areas"].([]map[string]any)
	for _, area := range areas {
		widgets, _ := area["widgets"].([]map[string]any)
		for _, widget := range widgets {
			if data, ok := widget["data"].(WidgetData); ok {
				if html, ok := data["chart_html"].(string); ok {
					widget["chart_html"] = html
					continue
				}
				if encoded, err := json.Marshal(data); err == nil {
					widget["data_json"] = string(encoded)
				}
			}
		}
	}
	return areas
}
