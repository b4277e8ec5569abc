package widgets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
)

// StaticTelemetryReader serves canned values keyed by selection key. Useful
// for demos and tests; production wiring points TelemetryReader at the
// backend gateway.
type StaticTelemetryReader struct {
	mu     sync.RWMutex
	values map[datasource.SelectedItem][]Value
}

// NewStaticTelemetryReader creates an empty reader.
func NewStaticTelemetryReader() *StaticTelemetryReader {
	return &StaticTelemetryReader{values: make(map[datasource.SelectedItem][]Value)}
}

// Set replaces the series stored for a source.
func (r *StaticTelemetryReader) Set(src datasource.DataSource, series []Value) {
	key, ok := datasource.EncodeKey(src)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = append([]Value(nil), series...)
}

// CurrentValue returns the most recent stored value.
func (r *StaticTelemetryReader) CurrentValue(_ context.Context, src datasource.DataSource) (Value, error) {
	series, err := r.lookup(src)
	if err != nil {
		return Value{}, err
	}
	return series[len(series)-1], nil
}

// History returns the full stored series.
func (r *StaticTelemetryReader) History(_ context.Context, src datasource.DataSource) ([]Value, error) {
	series, err := r.lookup(src)
	if err != nil {
		return nil, err
	}
	return append([]Value(nil), series...), nil
}

func (r *StaticTelemetryReader) lookup(src datasource.DataSource) ([]Value, error) {
	key, ok := datasource.EncodeKey(src)
	if !ok {
		return nil, fmt.Errorf("widgets: source has no selection key")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	series, ok := r.values[key]
	if !ok || len(series) == 0 {
		return nil, fmt.Errorf("widgets: no telemetry for %s", key)
	}
	return series, nil
}

// NewValueProvider fetches the current value of a widget's single bound
// source. Static sources short-circuit without touching the reader.
func NewValueProvider(reader TelemetryReader) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		src, ok := meta.Instance.Sources.Source()
		if !ok {
			sources := meta.Instance.Sources.Sources()
			if len(sources) == 0 {
				return WidgetData{"state": "unbound"}, nil
			}
			src = sources[0]
		}
		if src.Type == datasource.TypeStatic {
			return WidgetData{
				"state": "loaded",
				"text":  src.StaticValue,
			}, nil
		}
		value, err := reader.CurrentValue(ctx, src)
		if err != nil {
			return nil, err
		}
		return WidgetData{
			"state":     "loaded",
			"value":     value.Value,
			"text":      value.Text,
			"unit":      value.Unit,
			"timestamp": value.Timestamp.Format(time.RFC3339),
		}, nil
	})
}

// NewStatusProvider fetches every bound source and reports a check per
// source, degrading unreadable sources to an error row instead of failing the
// whole widget.
func NewStatusProvider(reader TelemetryReader) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		sources := meta.Instance.Sources.Sources()
		checks := make([]map[string]any, 0, len(sources))
		for _, src := range sources {
			key, _ := datasource.EncodeKey(src)
			name := src.Property()
			if name == "" {
				name = string(key)
			}
			value, err := reader.CurrentValue(ctx, src)
			if err != nil {
				checks = append(checks, map[string]any{
					"name":   name,
					"status": "error",
				})
				continue
			}
			checks = append(checks, map[string]any{
				"name":   name,
				"status": "ok",
				"value":  value.Value,
				"unit":   value.Unit,
			})
		}
		return WidgetData{"checks": checks}, nil
	})
}

// NewToggleProvider exposes the bound command so the transport can render a
// switch and post back through the command endpoint.
func NewToggleProvider() Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		src, ok := meta.Instance.Sources.Source()
		if !ok {
			return WidgetData{"state": "unbound"}, nil
		}
		key, valid := datasource.EncodeKey(src)
		if !valid {
			return WidgetData{"state": "unbound"}, nil
		}
		onLabel := translateOrFallback(ctx, meta.Translator, "widgets.toggle.on", meta.Viewer.Locale,
			stringValue(meta.Instance.Configuration["label_on"], "On"), nil)
		offLabel := translateOrFallback(ctx, meta.Translator, "widgets.toggle.off", meta.Viewer.Locale,
			stringValue(meta.Instance.Configuration["label_off"], "Off"), nil)
		return WidgetData{
			"command_key": key,
			"label_on":    onLabel,
			"label_off":   offLabel,
		}, nil
	})
}

// NewDeviceListProvider summarizes the devices a multi-source widget targets.
func NewDeviceListProvider() Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		sources := meta.Instance.Sources.Sources()
		devices := make([]string, 0, len(sources))
		seen := make(map[string]struct{}, len(sources))
		for _, src := range sources {
			id := src.EntityID()
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			devices = append(devices, id)
		}
		return WidgetData{"device_ids": devices}, nil
	})
}

// RegisterDataProviders wires the built-in widget set against a telemetry
// reader. Chart widgets get server-side previews through the shared render
// cache.
func RegisterDataProviders(reg ProviderRegistry, reader TelemetryReader) error {
	providers := map[string]Provider{
		"widget.gauge":         NewGaugePreviewProvider(reader),
		"widget.value_card":    NewValueProvider(reader),
		"widget.system_status": NewStatusProvider(reader),
		"widget.toggle":        NewToggleProvider(),
		"widget.device_map":    NewDeviceListProvider(),
		"widget.line_chart":    NewLinePreviewProvider(reader),
	}
	for code, provider := range providers {
		if _, ok := reg.Definition(code); !ok {
			continue
		}
		if err := reg.RegisterProvider(code, provider); err != nil {
			return err
		}
	}
	return nil
}
