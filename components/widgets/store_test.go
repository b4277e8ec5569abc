package widgets

import (
	"context"
	"testing"
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
)

func mustCreate(t *testing.T, store *InMemoryWidgetStore, definitionID string) WidgetInstance {
	t.Helper()
	instance, err := store.CreateInstance(context.Background(), CreateWidgetInstanceInput{
		DefinitionID: definitionID,
	})
	if err != nil {
		t.Fatalf("CreateInstance returned error: %v", err)
	}
	return instance
}

func mustAssign(t *testing.T, store *InMemoryWidgetStore, area, instanceID string, position *int) {
	t.Helper()
	if err := store.AssignInstance(context.Background(), AssignWidgetInput{
		AreaCode:   area,
		InstanceID: instanceID,
		Position:   position,
	}); err != nil {
		t.Fatalf("AssignInstance returned error: %v", err)
	}
}

func areaIDs(t *testing.T, store *InMemoryWidgetStore, area string) []string {
	t.Helper()
	resolved, err := store.ResolveArea(context.Background(), ResolveAreaInput{AreaCode: area})
	if err != nil {
		t.Fatalf("ResolveArea returned error: %v", err)
	}
	ids := make([]string, 0, len(resolved.Widgets))
	for _, w := range resolved.Widgets {
		ids = append(ids, w.ID)
	}
	return ids
}

func TestInMemoryStoreEnsureAreaIdempotent(t *testing.T) {
	store := NewInMemoryWidgetStore()
	created, err := store.EnsureArea(context.Background(), WidgetAreaDefinition{Code: "dashboard.main"})
	if err != nil || !created {
		t.Fatalf("expected first EnsureArea to create, got created=%v err=%v", created, err)
	}
	created, err = store.EnsureArea(context.Background(), WidgetAreaDefinition{Code: "dashboard.main"})
	if err != nil || created {
		t.Fatalf("expected second EnsureArea to be a no-op, got created=%v err=%v", created, err)
	}
	if _, err := store.EnsureArea(context.Background(), WidgetAreaDefinition{}); err == nil {
		t.Fatalf("expected error for empty area code")
	}
}

func TestInMemoryStoreAssignInsertsAtPosition(t *testing.T) {
	store := NewInMemoryWidgetStore()
	a := mustCreate(t, store, "widget.value_card")
	b := mustCreate(t, store, "widget.value_card")
	c := mustCreate(t, store, "widget.value_card")

	mustAssign(t, store, "dashboard.main", a.ID, nil)
	mustAssign(t, store, "dashboard.main", b.ID, nil)

	pos := 1
	mustAssign(t, store, "dashboard.main", c.ID, &pos)

	ids := areaIDs(t, store, "dashboard.main")
	want := []string{a.ID, c.ID, b.ID}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("unexpected order: got %v, want %v", ids, want)
		}
	}
}

func TestInMemoryStoreAssignMovesBetweenAreas(t *testing.T) {
	store := NewInMemoryWidgetStore()
	a := mustCreate(t, store, "widget.toggle")
	mustAssign(t, store, "dashboard.main", a.ID, nil)
	mustAssign(t, store, "dashboard.sidebar", a.ID, nil)

	if ids := areaIDs(t, store, "dashboard.main"); len(ids) != 0 {
		t.Fatalf("expected widget removed from previous area, got %v", ids)
	}
	if ids := areaIDs(t, store, "dashboard.sidebar"); len(ids) != 1 || ids[0] != a.ID {
		t.Fatalf("expected widget in new area, got %v", ids)
	}
	instance, err := store.Instance(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Instance returned error: %v", err)
	}
	if instance.AreaCode != "dashboard.sidebar" {
		t.Fatalf("expected area code updated, got %q", instance.AreaCode)
	}
}

func TestInMemoryStoreReorderKeepsUnlistedAtTail(t *testing.T) {
	store := NewInMemoryWidgetStore()
	a := mustCreate(t, store, "widget.gauge")
	b := mustCreate(t, store, "widget.gauge")
	c := mustCreate(t, store, "widget.gauge")
	mustAssign(t, store, "dashboard.main", a.ID, nil)
	mustAssign(t, store, "dashboard.main", b.ID, nil)
	mustAssign(t, store, "dashboard.main", c.ID, nil)

	err := store.ReorderArea(context.Background(), ReorderAreaInput{
		AreaCode:  "dashboard.main",
		WidgetIDs: []string{c.ID, "unknown-id", a.ID},
	})
	if err != nil {
		t.Fatalf("ReorderArea returned error: %v", err)
	}

	ids := areaIDs(t, store, "dashboard.main")
	want := []string{c.ID, a.ID, b.ID}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("unexpected order: got %v, want %v", ids, want)
		}
	}
}

func TestInMemoryStoreDeleteRemovesAssignment(t *testing.T) {
	store := NewInMemoryWidgetStore()
	a := mustCreate(t, store, "widget.value_card")
	b := mustCreate(t, store, "widget.value_card")
	mustAssign(t, store, "dashboard.main", a.ID, nil)
	mustAssign(t, store, "dashboard.main", b.ID, nil)

	if err := store.DeleteInstance(context.Background(), a.ID); err != nil {
		t.Fatalf("DeleteInstance returned error: %v", err)
	}
	if ids := areaIDs(t, store, "dashboard.main"); len(ids) != 1 || ids[0] != b.ID {
		t.Fatalf("expected only remaining widget assigned, got %v", ids)
	}
	if _, err := store.Instance(context.Background(), a.ID); err == nil {
		t.Fatalf("expected lookup of deleted instance to fail")
	}
	if err := store.DeleteInstance(context.Background(), a.ID); err == nil {
		t.Fatalf("expected second delete to fail")
	}
}

func TestInMemoryStoreCreatePersistsVisibility(t *testing.T) {
	store := NewInMemoryWidgetStore()
	end := time.Now().Add(time.Hour)
	created, err := store.CreateInstance(context.Background(), CreateWidgetInstanceInput{
		DefinitionID: "widget.value_card",
		Visibility:   WidgetVisibility{Roles: []string{"admin"}, EndAt: &end},
	})
	if err != nil {
		t.Fatalf("CreateInstance returned error: %v", err)
	}
	loaded, err := store.Instance(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Instance returned error: %v", err)
	}
	if len(loaded.Visibility.Roles) != 1 || loaded.Visibility.Roles[0] != "admin" {
		t.Fatalf("expected visibility roles persisted, got %#v", loaded.Visibility)
	}
	if loaded.Visibility.EndAt == nil || !loaded.Visibility.EndAt.Equal(end) {
		t.Fatalf("expected visibility window persisted, got %#v", loaded.Visibility)
	}
}

func TestInMemoryStoreUpdateInstancePartial(t *testing.T) {
	store := NewInMemoryWidgetStore()
	a := mustCreate(t, store, "widget.line_chart")

	sources := datasource.FromSource(datasource.Telemetry("d1", "temperature"))
	updated, err := store.UpdateInstance(context.Background(), a.ID, UpdateWidgetInstanceInput{
		Sources: &sources,
	})
	if err != nil {
		t.Fatalf("UpdateInstance returned error: %v", err)
	}
	if src, ok := updated.Sources.Source(); !ok || src.DeviceID != "d1" {
		t.Fatalf("expected sources replaced, got %#v", updated.Sources)
	}

	updated, err = store.UpdateInstance(context.Background(), a.ID, UpdateWidgetInstanceInput{
		Configuration: map[string]any{"title": "Temp"},
	})
	if err != nil {
		t.Fatalf("UpdateInstance returned error: %v", err)
	}
	if updated.Configuration["title"] != "Temp" {
		t.Fatalf("expected configuration updated, got %#v", updated.Configuration)
	}
	if src, ok := updated.Sources.Source(); !ok || src.DeviceID != "d1" {
		t.Fatalf("expected sources untouched by config update, got %#v", updated.Sources)
	}

	if _, err := store.UpdateInstance(context.Background(), "missing", UpdateWidgetInstanceInput{}); err == nil {
		t.Fatalf("expected error for unknown instance")
	}
}
