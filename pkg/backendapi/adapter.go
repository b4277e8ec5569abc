package backendapi

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// Gateway adapts the backend client to the collaborator interfaces the widget
// layer consumes. System metric sources are served by a SystemStats reader
// because the backend surface only exposes device and extension data.
type Gateway struct {
	client Client
	system SystemStats
}

// SystemStats resolves system category metrics ("system:<metric>" keys).
type SystemStats interface {
	SystemValue(ctx context.Context, metric string) (widgets.Value, error)
}

// GatewayOption customizes gateway construction.
type GatewayOption func(*Gateway)

// WithSystemStats swaps the system metric reader. The default reports
// process-local stats.
func WithSystemStats(stats SystemStats) GatewayOption {
	return func(g *Gateway) { g.system = stats }
}

// NewGateway wraps a backend client.
func NewGateway(client Client, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client: client,
		system: newProcessStats(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var (
	_ widgets.TelemetryReader = (*Gateway)(nil)
	_ widgets.CommandSender   = (*Gateway)(nil)
)

// CurrentValue resolves the latest reading for a bound data source.
func (g *Gateway) CurrentValue(ctx context.Context, src datasource.DataSource) (widgets.Value, error) {
	switch src.Type {
	case datasource.TypeStatic:
		return widgets.Value{Text: src.StaticValue}, nil
	case datasource.TypeTelemetry, datasource.TypeDeviceInfo:
		current, err := g.client.GetDeviceCurrent(ctx, src.DeviceID)
		if err != nil {
			return widgets.Value{}, err
		}
		metricID := src.MetricID
		if src.Type == datasource.TypeDeviceInfo {
			metricID = src.InfoProperty
		}
		reading, ok := current.Metrics[metricID]
		if !ok {
			return widgets.Value{}, fmt.Errorf("backendapi: no reading for %s on %s", metricID, src.DeviceID)
		}
		return widgets.Value{
			Timestamp: reading.Timestamp,
			Value:     reading.Value,
			Text:      reading.Text,
			Unit:      reading.Unit,
		}, nil
	case datasource.TypeSystem:
		return g.system.SystemValue(ctx, src.SystemMetric)
	default:
		return widgets.Value{}, fmt.Errorf("backendapi: unsupported source type %s", src.Type)
	}
}

// processStats serves metrics about the dashboard process itself. It backs
// the system category when no external stats source is configured.
type processStats struct {
	started time.Time
}

func newProcessStats() *processStats {
	return &processStats{started: time.Now()}
}

func (p *processStats) SystemValue(_ context.Context, metric string) (widgets.Value, error) {
	now := time.Now()
	switch metric {
	case "uptime":
		return widgets.Value{
			Timestamp: now,
			Value:     now.Sub(p.started).Seconds(),
			Unit:      "s",
		}, nil
	case "memory_usage":
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		return widgets.Value{
			Timestamp: now,
			Value:     float64(stats.Alloc) / (1 << 20),
			Unit:      "MB",
		}, nil
	case "goroutines":
		return widgets.Value{
			Timestamp: now,
			Value:     float64(runtime.NumGoroutine()),
		}, nil
	default:
		return widgets.Value{}, fmt.Errorf("backendapi: unknown system metric %s", metric)
	}
}

// History returns the available history for a source. The backend only serves
// current readings, so this degrades to a single-point series.
func (g *Gateway) History(ctx context.Context, src datasource.DataSource) ([]widgets.Value, error) {
	value, err := g.CurrentValue(ctx, src)
	if err != nil {
		return nil, err
	}
	return []widgets.Value{value}, nil
}

// SendCommand routes command sources to the matching backend endpoint.
func (g *Gateway) SendCommand(ctx context.Context, src datasource.DataSource, payload map[string]any) error {
	switch src.Type {
	case datasource.TypeCommand:
		return g.client.SendCommand(ctx, src.DeviceID, src.Command, payload)
	case datasource.TypeExtensionCommand:
		return g.client.InvokeExtension(ctx, src.ExtensionID, src.Command, payload)
	default:
		return fmt.Errorf("backendapi: source type %s is not a command", src.Type)
	}
}

// CatalogInput satisfies the catalog query's directory interface.
func (g *Gateway) CatalogInput(ctx context.Context) (datasource.CatalogInput, error) {
	return g.client.ListAllDataSources(ctx)
}
