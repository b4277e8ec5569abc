package widgets

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edgekit/go-widgets/components/datasource"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := WidgetEvent{AreaCode: "dashboard.main"}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.AreaCode != event.AreaCode {
			t.Fatalf("expected area %s, got %s", event.AreaCode, e.AreaCode)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookCancelStopsDelivery(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	if err := hook.WidgetUpdated(context.Background(), WidgetEvent{}); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
}

func TestRefreshMessageFoldsReasonIntoEventName(t *testing.T) {
	event := WidgetEvent{
		AreaCode: "dashboard.main",
		Reason:   "bind",
		Instance: WidgetInstance{
			ID:      "w1",
			Sources: datasource.FromSource(datasource.Command("d1", "toggle")),
		},
	}
	msg := NewRefreshMessage(event)
	if msg.Event != "widget.bind" {
		t.Fatalf("unexpected event name: %q", msg.Event)
	}
	if msg.WidgetID != "w1" || msg.AreaCode != "dashboard.main" {
		t.Fatalf("envelope lost identity fields: %#v", msg)
	}
	if len(msg.Sources) != 1 || msg.Sources[0] != datasource.SelectedItem("device-command:d1:toggle") {
		t.Fatalf("expected selection key in envelope, got %#v", msg.Sources)
	}
}

func TestRefreshMessageDefaultsToRefresh(t *testing.T) {
	msg := NewRefreshMessage(WidgetEvent{})
	if msg.Event != "widget.refresh" || msg.Reason != "refresh" {
		t.Fatalf("expected refresh fallback, got %#v", msg)
	}
}

func TestWriteSSEEmitsNamedEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	event := WidgetEvent{
		AreaCode: "dashboard.main",
		Reason:   "reorder",
	}
	if err := writeSSE(rec, event); err != nil {
		t.Fatalf("writeSSE returned error: %v", err)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: widget.reorder\n") {
		t.Fatalf("expected named event line, got %q", body)
	}
	if !strings.Contains(body, `"area_code":"dashboard.main"`) {
		t.Fatalf("expected payload data, got %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("expected blank line terminator, got %q", body)
	}
}
