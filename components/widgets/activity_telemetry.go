package widgets

import (
	"context"
	"strings"

	"github.com/edgekit/go-widgets/pkg/activity"
)

// ActivityTelemetry forwards widget telemetry events to an activity emitter,
// so user-facing actions show up in the activity stream alongside whatever
// sink the emitter feeds.
type ActivityTelemetry struct {
	emitter *activity.Emitter
	next    Telemetry
}

// NewActivityTelemetry wraps an emitter; next receives every event unchanged
// and may be nil.
func NewActivityTelemetry(emitter *activity.Emitter, next Telemetry) *ActivityTelemetry {
	return &ActivityTelemetry{emitter: emitter, next: normalizeTelemetry(next)}
}

// Record implements Telemetry. Only user actions (add/update/remove/bind/
// reorder) become activity events; resolve/tick events stay telemetry-only.
func (t *ActivityTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	t.next.Record(ctx, event, payload)
	verb, ok := activityVerb(event)
	if !ok || !t.emitter.Enabled() {
		return
	}
	meta := ActivityFromContext(ctx)
	evt := activity.Event{
		Verb:       verb,
		ActorID:    meta.ActorID,
		UserID:     meta.UserID,
		TenantID:   meta.TenantID,
		ObjectType: "widget",
		Metadata:   payload,
	}
	if id, ok := payload["widget_id"].(string); ok {
		evt.ObjectID = id
	}
	if code, ok := payload["definition_id"].(string); ok {
		evt.DefinitionCode = code
	}
	_ = t.emitter.Emit(ctx, evt)
}

func activityVerb(event string) (string, bool) {
	const prefix = "widgets.widget."
	if !strings.HasPrefix(event, prefix) {
		return "", false
	}
	switch verb := strings.TrimPrefix(event, prefix); verb {
	case "add", "update", "remove", "bind", "reorder":
		return verb, true
	}
	return "", false
}
