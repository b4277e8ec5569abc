package widgets

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologTelemetry emits widget events as structured debug logs.
type ZerologTelemetry struct {
	logger zerolog.Logger
}

// NewZerologTelemetry wraps a zerolog logger as a Telemetry sink.
func NewZerologTelemetry(logger zerolog.Logger) *ZerologTelemetry {
	return &ZerologTelemetry{logger: logger}
}

// Record implements Telemetry.
func (t *ZerologTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	entry := t.logger.Debug().Str("event", event)
	for key, value := range payload {
		entry = entry.Interface(key, value)
	}
	entry.Msg("widget event")
}
