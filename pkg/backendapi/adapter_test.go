package backendapi

import (
	"context"
	"testing"
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
	widgets "github.com/edgekit/go-widgets/components/widgets"
)

func newTestGateway() (*Gateway, *MockClient) {
	mock := NewMockClient(MockData{
		Current: map[string]DeviceCurrent{
			"d1": {
				DeviceID: "d1",
				Metrics: map[string]MetricValue{
					"temperature": {Value: 20.1, Unit: "C", Timestamp: time.Now()},
					"name":        {Text: "Thermostat"},
				},
			},
		},
	})
	return NewGateway(mock), mock
}

func TestGatewayCurrentValue(t *testing.T) {
	gateway, _ := newTestGateway()
	value, err := gateway.CurrentValue(context.Background(), datasource.Telemetry("d1", "temperature"))
	if err != nil {
		t.Fatalf("CurrentValue returned error: %v", err)
	}
	if value.Value != 20.1 || value.Unit != "C" {
		t.Fatalf("unexpected value: %+v", value)
	}
}

func TestGatewayCurrentValueDeviceInfo(t *testing.T) {
	gateway, _ := newTestGateway()
	value, err := gateway.CurrentValue(context.Background(), datasource.DeviceInfo("d1", "name"))
	if err != nil {
		t.Fatalf("CurrentValue returned error: %v", err)
	}
	if value.Text != "Thermostat" {
		t.Fatalf("unexpected value: %+v", value)
	}
}

func TestGatewayCurrentValueStatic(t *testing.T) {
	gateway, _ := newTestGateway()
	value, err := gateway.CurrentValue(context.Background(), datasource.Static("42"))
	if err != nil {
		t.Fatalf("CurrentValue returned error: %v", err)
	}
	if value.Text != "42" {
		t.Fatalf("unexpected value: %+v", value)
	}
}

func TestGatewayServesSystemMetricsLocally(t *testing.T) {
	gateway, _ := newTestGateway()
	ctx := context.Background()

	uptime, err := gateway.CurrentValue(ctx, datasource.System("uptime"))
	if err != nil {
		t.Fatalf("CurrentValue returned error: %v", err)
	}
	if uptime.Value < 0 || uptime.Unit != "s" {
		t.Fatalf("unexpected uptime reading: %+v", uptime)
	}

	memory, err := gateway.CurrentValue(ctx, datasource.System("memory_usage"))
	if err != nil {
		t.Fatalf("CurrentValue returned error: %v", err)
	}
	if memory.Value <= 0 || memory.Unit != "MB" {
		t.Fatalf("unexpected memory reading: %+v", memory)
	}

	if _, err := gateway.CurrentValue(ctx, datasource.System("load_average")); err == nil {
		t.Fatalf("expected error for unknown system metric")
	}
}

type fixedSystemStats struct {
	value widgets.Value
}

func (f fixedSystemStats) SystemValue(context.Context, string) (widgets.Value, error) {
	return f.value, nil
}

func TestGatewaySystemStatsOverride(t *testing.T) {
	mock := NewMockClient(MockData{})
	gateway := NewGateway(mock, WithSystemStats(fixedSystemStats{value: widgets.Value{Value: 0.42, Unit: "%"}}))
	value, err := gateway.CurrentValue(context.Background(), datasource.System("cpu_usage"))
	if err != nil {
		t.Fatalf("CurrentValue returned error: %v", err)
	}
	if value.Value != 0.42 || value.Unit != "%" {
		t.Fatalf("expected injected stats used, got %+v", value)
	}
}

func TestGatewaySendCommandRouting(t *testing.T) {
	gateway, mock := newTestGateway()
	ctx := context.Background()

	if err := gateway.SendCommand(ctx, datasource.Command("d1", "toggle"), nil); err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}
	if err := gateway.SendCommand(ctx, datasource.ExtensionCommand("ext1", "restart"), nil); err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}
	if err := gateway.SendCommand(ctx, datasource.Telemetry("d1", "temperature"), nil); err == nil {
		t.Fatalf("expected error for non-command source")
	}

	if len(mock.Commands) != 2 {
		t.Fatalf("expected 2 recorded commands, got %d", len(mock.Commands))
	}
	if mock.Commands[0].Extension || mock.Commands[0].TargetID != "d1" {
		t.Fatalf("unexpected device command: %+v", mock.Commands[0])
	}
	if !mock.Commands[1].Extension || mock.Commands[1].TargetID != "ext1" {
		t.Fatalf("unexpected extension command: %+v", mock.Commands[1])
	}
}

func TestGatewayHistoryDegradesToSinglePoint(t *testing.T) {
	gateway, _ := newTestGateway()
	history, err := gateway.History(context.Background(), datasource.Telemetry("d1", "temperature"))
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected single-point history, got %d", len(history))
	}
}
