package widgets

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/edgekit/go-widgets/components/datasource"
)

const defaultChartHeight = "360px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartOption customizes the echarts-backed preview providers.
type ChartOption func(*chartSettings)

type chartSettings struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartOption {
	return func(s *chartSettings) { s.cache = cache }
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(s *chartSettings) { s.theme = theme }
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(s *chartSettings) { s.assetsHost = host }
}

func newChartSettings(options []ChartOption) chartSettings {
	s := chartSettings{
		cache: sharedChartCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// NewLinePreviewProvider renders a server-side line chart from the history of
// every bound telemetry source.
func NewLinePreviewProvider(reader TelemetryReader, options ...ChartOption) Provider {
	settings := newChartSettings(options)
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		sources := meta.Instance.Sources.Sources()
		if len(sources) == 0 {
			return WidgetData{"state": "unbound"}, nil
		}
		title := stringValue(meta.Instance.Configuration["title"], "History")

		renderFn := func() (string, error) {
			return renderLinePreview(ctx, reader, sources, title, settings)
		}
		html, err := cachedRender(meta, "line", settings, renderFn)
		if err != nil {
			return nil, err
		}
		return WidgetData{
			"chart_html": html,
			"chart_type": "line",
			"title":      title,
			"theme":      settings.theme,
		}, nil
	})
}

// NewGaugePreviewProvider renders a gauge from the current value of the
// widget's bound source.
func NewGaugePreviewProvider(reader TelemetryReader, options ...ChartOption) Provider {
	settings := newChartSettings(options)
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		src, ok := meta.Instance.Sources.Source()
		if !ok {
			sources := meta.Instance.Sources.Sources()
			if len(sources) == 0 {
				return WidgetData{"state": "unbound"}, nil
			}
			src = sources[0]
		}
		value, err := reader.CurrentValue(ctx, src)
		if err != nil {
			return nil, err
		}
		label := src.Property()
		renderFn := func() (string, error) {
			return renderGaugePreview(label, value.Value, settings)
		}
		html, err := cachedRender(meta, "gauge", settings, renderFn)
		if err != nil {
			return nil, err
		}
		return WidgetData{
			"chart_html": html,
			"chart_type": "gauge",
			"value":      value.Value,
			"unit":       value.Unit,
			"theme":      settings.theme,
		}, nil
	})
}

func cachedRender(meta WidgetContext, chartType string, settings chartSettings, render func() (string, error)) (string, error) {
	if settings.cache == nil {
		return render()
	}
	return settings.cache.GetOrRender(chartCacheKey(meta.Instance, chartType), render)
}

func renderLinePreview(ctx context.Context, reader TelemetryReader, sources []datasource.DataSource, title string, settings chartSettings) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(globalChartOptions(title, settings)...)

	var axis []string
	for _, src := range sources {
		history, err := reader.History(ctx, src)
		if err != nil {
			return "", err
		}
		data := make([]opts.LineData, len(history))
		for i, point := range history {
			data[i] = opts.LineData{Value: point.Value}
		}
		if len(history) > len(axis) {
			axis = make([]string, len(history))
			for i, point := range history {
				axis[i] = point.Timestamp.Format("15:04")
			}
		}
		name := src.Property()
		if name == "" {
			if key, ok := datasource.EncodeKey(src); ok {
				name = string(key)
			}
		}
		line.AddSeries(name, data)
	}
	line.SetXAxis(axis)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func renderGaugePreview(label string, value float64, settings chartSettings) (string, error) {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(globalChartOptions(label, settings)...)
	gauge.AddSeries(label, []opts.GaugeData{{Name: label, Value: value}})
	return renderChart(gauge)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func globalChartOptions(title string, settings chartSettings) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  settings.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if settings.assetsHost != "" {
		initOpts.AssetsHost = settings.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
