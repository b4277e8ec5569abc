package datasource

import "testing"

func TestSelectionSingleModeReplacesAndClears(t *testing.T) {
	s := NewSelection(DataSourceOrList{}, SelectionOptions{})

	s.Toggle("device-metric:d1:temperature")
	if got := s.Items(); len(got) != 1 || got[0] != "device-metric:d1:temperature" {
		t.Fatalf("unexpected selection %v", got)
	}

	s.Toggle("system:cpu_usage")
	if got := s.Items(); len(got) != 1 || got[0] != "system:cpu_usage" {
		t.Fatalf("single mode should replace, got %v", got)
	}

	// Picking the selected item again clears the selection.
	s.Toggle("system:cpu_usage")
	if s.Len() != 0 {
		t.Fatalf("expected empty selection, got %v", s.Items())
	}
	if !s.Value().IsZero() {
		t.Fatalf("cleared selection should bind to zero value")
	}
}

func TestSelectionMultiModeCapIsNoOp(t *testing.T) {
	s := NewSelection(DataSourceOrList{}, SelectionOptions{Multiple: true, MaxSources: 2})
	s.Toggle("device-metric:d1:temperature")
	s.Toggle("device-metric:d2:temperature")
	s.Toggle("device-metric:d3:temperature")
	if s.Len() != 2 {
		t.Fatalf("cap exceeded: %v", s.Items())
	}
	if s.IsSelected("device-metric:d3:temperature") {
		t.Fatalf("item beyond cap should not be selected")
	}

	// Deselecting frees a slot.
	s.Toggle("device-metric:d1:temperature")
	s.Toggle("device-metric:d3:temperature")
	got := s.Items()
	if len(got) != 2 || got[0] != "device-metric:d2:temperature" || got[1] != "device-metric:d3:temperature" {
		t.Fatalf("unexpected selection after reslotting: %v", got)
	}
}

func TestSelectionMultiModeValueIsList(t *testing.T) {
	s := NewSelection(DataSourceOrList{}, SelectionOptions{Multiple: true})
	s.Toggle("device-metric:d1:temperature")
	value := s.Value()
	if !value.IsList() || value.Len() != 1 {
		t.Fatalf("multi mode should always bind a list, got %#v", value)
	}
}

func TestSelectionSeedsFromCurrentBinding(t *testing.T) {
	current := FromSource(Telemetry("d1", "temperature"))
	s := NewSelection(current, SelectionOptions{})
	if !s.IsSelected("device-metric:d1:temperature") {
		t.Fatalf("seed missing: %v", s.Items())
	}
}

func TestSelectionImmediateNotification(t *testing.T) {
	var calls []DataSourceOrList
	s := NewSelection(DataSourceOrList{}, SelectionOptions{
		OnChange: func(ds DataSourceOrList) { calls = append(calls, ds) },
	})
	s.Toggle("system:cpu_usage")
	if len(calls) != 1 {
		t.Fatalf("expected immediate notification, got %d", len(calls))
	}
	if src, ok := calls[0].Source(); !ok || src.SystemMetric != "cpu_usage" {
		t.Fatalf("unexpected bound value %#v", calls[0])
	}

	// Apply is a no-op outside deferred mode.
	s.Apply()
	if len(calls) != 1 {
		t.Fatalf("Apply should not re-notify in immediate mode")
	}
}

func TestSelectionDeferredNotifiesOnApply(t *testing.T) {
	var calls int
	s := NewSelection(DataSourceOrList{}, SelectionOptions{
		Multiple: true,
		Deferred: true,
		OnChange: func(DataSourceOrList) { calls++ },
	})
	s.Toggle("device-metric:d1:temperature")
	s.Toggle("system:cpu_usage")
	if calls != 0 {
		t.Fatalf("deferred selection notified early")
	}
	s.Apply()
	if calls != 1 {
		t.Fatalf("expected one notification after Apply, got %d", calls)
	}
}

func TestSelectionCapNoOpDoesNotNotify(t *testing.T) {
	var calls int
	s := NewSelection(DataSourceOrList{}, SelectionOptions{
		Multiple:   true,
		MaxSources: 1,
		OnChange:   func(DataSourceOrList) { calls++ },
	})
	s.Toggle("device-metric:d1:temperature")
	s.Toggle("device-metric:d2:temperature")
	if calls != 1 {
		t.Fatalf("capped toggle should not notify, got %d calls", calls)
	}
}
