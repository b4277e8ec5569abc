package widgets

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/edgekit/go-widgets/components/datasource"
)

// Refresher emits periodic refresh events for widgets bound to system or
// extension sources, honoring each source's refresh interval.
type Refresher struct {
	cron      *cron.Cron
	hook      RefreshHook
	telemetry Telemetry

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewRefresher builds a refresher that notifies the provided hook.
func NewRefresher(hook RefreshHook, telemetry Telemetry) *Refresher {
	if hook == nil {
		hook = noopRefreshHook{}
	}
	return &Refresher{
		cron:      cron.New(),
		hook:      hook,
		telemetry: normalizeTelemetry(telemetry),
		entries:   make(map[string]cron.EntryID),
	}
}

// Track schedules periodic refreshes for the instance. Widgets without a
// periodic source are ignored; re-tracking replaces the previous schedule.
func (r *Refresher) Track(instance WidgetInstance) error {
	interval := refreshInterval(instance.Sources)
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.entries[instance.ID]; ok {
		r.cron.Remove(id)
		delete(r.entries, instance.ID)
	}
	if interval <= 0 {
		return nil
	}
	spec := fmt.Sprintf("@every %ds", interval)
	id, err := r.cron.AddFunc(spec, func() {
		_ = r.hook.WidgetUpdated(context.Background(), WidgetEvent{
			AreaCode: instance.AreaCode,
			Instance: instance,
			Reason:   "refresh",
		})
		r.telemetry.Record(context.Background(), "widgets.widget.refresh_tick", map[string]any{
			"widget_id": instance.ID,
			"interval":  interval,
		})
	})
	if err != nil {
		return fmt.Errorf("widgets: schedule refresh for %s: %w", instance.ID, err)
	}
	r.entries[instance.ID] = id
	return nil
}

// Untrack removes the instance from the schedule.
func (r *Refresher) Untrack(instanceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.entries[instanceID]; ok {
		r.cron.Remove(id)
		delete(r.entries, instanceID)
	}
}

// Start begins the refresh schedule.
func (r *Refresher) Start() { r.cron.Start() }

// Stop halts the schedule without cancelling in-flight notifications.
func (r *Refresher) Stop() { r.cron.Stop() }

// Tracked reports whether the instance currently has a schedule.
func (r *Refresher) Tracked(instanceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[instanceID]
	return ok
}

// refreshInterval picks the shortest refresh interval among periodic sources.
// Zero means the widget has nothing to refresh on a timer.
func refreshInterval(sources datasource.DataSourceOrList) int {
	min := 0
	for _, src := range sources.Sources() {
		switch src.Type {
		case datasource.TypeSystem, datasource.TypeExtension:
			interval := src.Refresh
			if interval <= 0 {
				interval = datasource.DefaultRefresh
			}
			if min == 0 || interval < min {
				min = interval
			}
		}
	}
	return min
}
