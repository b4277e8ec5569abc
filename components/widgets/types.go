package widgets

import (
	"context"
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
)

// WidgetStore encapsulates persistence for areas, definitions, and instances.
// Implementations ensure thread safety and idempotency.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	UpdateInstance(ctx context.Context, instanceID string, input UpdateWidgetInstanceInput) (WidgetInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ReorderArea(ctx context.Context, input ReorderAreaInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
	Instance(ctx context.Context, instanceID string) (WidgetInstance, error)
}

// Authorizer determines if a viewer can see a widget instance.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore returns layout overrides per viewer.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// ProviderRegistry stores widget definitions/providers discoverable via hooks
// or manifests.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (REST/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// TelemetryReader resolves current values for bound data sources. The backend
// gateway implements this; tests use fakes.
type TelemetryReader interface {
	CurrentValue(ctx context.Context, src datasource.DataSource) (Value, error)
	History(ctx context.Context, src datasource.DataSource) ([]Value, error)
}

// CommandSender dispatches device/extension commands referenced by command
// data sources.
type CommandSender interface {
	SendCommand(ctx context.Context, src datasource.DataSource, payload map[string]any) error
}

// Value is one telemetry reading.
type Value struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Text      string    `json:"text,omitempty"`
	Unit      string    `json:"unit,omitempty"`
}

// WidgetAreaDefinition models a dashboard widget area (main/sidebar/footer).
type WidgetAreaDefinition struct {
	Code        string
	Name        string
	Description string
}

// WidgetDefinition describes a widget type: its config schema, the ordered
// config sections rendered by editors, and data-source constraints.
type WidgetDefinition struct {
	Code                 string                     `json:"code" yaml:"code"`
	Name                 string                     `json:"name" yaml:"name"`
	NameLocalized        map[string]string          `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Description          string                     `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string          `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Category             string                     `json:"category,omitempty" yaml:"category,omitempty"`
	Schema               map[string]any             `json:"schema,omitempty" yaml:"schema,omitempty"`
	Sections             []datasource.ConfigSection `json:"sections,omitempty" yaml:"sections,omitempty"`
	// MultiSource marks widgets that bind a list of sources (e.g. line
	// charts); MaxSources caps the list, zero means unlimited.
	MultiSource bool `json:"multi_source,omitempty" yaml:"multi_source,omitempty"`
	MaxSources  int  `json:"max_sources,omitempty" yaml:"max_sources,omitempty"`
	// DefaultSources seeds new instances created without an explicit
	// binding. Manifests populate it from their default_source key.
	DefaultSources datasource.DataSourceOrList `json:"default_sources,omitempty" yaml:"default_sources,omitempty"`
}

// WidgetInstance is a placed widget with its data binding and configuration.
type WidgetInstance struct {
	ID            string
	DefinitionID  string
	AreaCode      string
	Sources       datasource.DataSourceOrList
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// CreateWidgetInstanceInput configures new instances.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Sources       datasource.DataSourceOrList
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// UpdateWidgetInstanceInput carries partial instance updates. Nil fields are
// left untouched.
type UpdateWidgetInstanceInput struct {
	Sources       *datasource.DataSourceOrList
	Configuration map[string]any
	Metadata      map[string]any
}

// WidgetVisibility defines runtime visibility constraints.
type WidgetVisibility struct {
	Roles    []string   `json:"roles,omitempty"`
	StartAt  *time.Time `json:"start_at,omitempty"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	Audience []string   `json:"audience,omitempty"`
}

// VisibleTo reports whether the widget is inside its schedule window and the
// viewer holds one of the required roles. Empty constraints allow everyone.
func (v WidgetVisibility) VisibleTo(viewer ViewerContext, now time.Time) bool {
	if v.StartAt != nil && now.Before(*v.StartAt) {
		return false
	}
	if v.EndAt != nil && now.After(*v.EndAt) {
		return false
	}
	if len(v.Roles) == 0 {
		return true
	}
	for _, required := range v.Roles {
		for _, held := range viewer.Roles {
			if required == held {
				return true
			}
		}
	}
	return false
}

// AssignWidgetInput associates a widget instance with an area.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ReorderAreaInput represents a new ordering for widgets within an area.
type ReorderAreaInput struct {
	AreaCode  string
	WidgetIDs []string
}

// ResolveAreaInput requests widget instances for a given area and audience.
type ResolveAreaInput struct {
	AreaCode string
	Audience []string
	Locale   string
}

// ResolvedArea is a container for widgets returned by the store.
type ResolvedArea struct {
	AreaCode string
	Widgets  []WidgetInstance
}

// LayoutOverrides captures per-user adjustments.
type LayoutOverrides struct {
	Locale        string
	AreaOrder     map[string][]string
	HiddenWidgets map[string]bool
}

// ViewerContext captures the active user/locale information needed to render
// dashboards.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	AreaCode string         `json:"area_code,omitempty"`
	Instance WidgetInstance `json:"instance"`
	Reason   string         `json:"reason"`
}
