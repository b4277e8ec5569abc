package widgets

import (
	"context"
	"errors"
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
)

var defaultAreas = []string{
	"dashboard.main",
	"dashboard.sidebar",
	"dashboard.footer",
}

var (
	errMissingWidgetStore = errors.New("widgets: widget store not configured")
	errInvalidArea        = errors.New("widgets: area code is required")
	errInvalidDefinition  = errors.New("widgets: definition id is required")
	errInvalidWidgetID    = errors.New("widgets: widget id is required")
	errTooManySources     = errors.New("widgets: source list exceeds widget limit")
	errSingleSourceOnly   = errors.New("widgets: widget binds a single source")
)

// Options configures the widget Service. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal packages.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Areas           []string
}

// Service orchestrates data-source bound widgets.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	return &Service{opts: opts}
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string
	AreaCode      string
	Sources       datasource.DataSourceOrList
	Configuration map[string]any
	Position      *int
	Roles         []string
	StartAt       *time.Time
	EndAt         *time.Time
	UserID        string
}

// AddWidget creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if req.AreaCode == "" {
		return errInvalidArea
	}
	if req.DefinitionID == "" {
		return errInvalidDefinition
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return err
	}
	if req.Sources.IsZero() {
		if def, ok := s.opts.Providers.Definition(req.DefinitionID); ok {
			req.Sources = def.DefaultSources
		}
	}
	if err := s.validateSources(req.DefinitionID, req.Sources); err != nil {
		return err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Sources:       req.Sources,
		Configuration: req.Configuration,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": req.UserID,
		},
	})
	if err != nil {
		return err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: req.AreaCode,
		Instance: instance,
		Reason:   "add",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "widgets.widget.add", map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
	})
	return nil
}

// UpdateWidgetRequest carries instance mutations.
type UpdateWidgetRequest struct {
	Configuration map[string]any
	Metadata      map[string]any
	ActorID       string
	UserID        string
	TenantID      string
}

// UpdateWidget replaces configuration/metadata on an existing instance.
func (s *Service) UpdateWidget(ctx context.Context, widgetID string, req UpdateWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidgetID
	}
	current, err := store.Instance(ctx, widgetID)
	if err != nil {
		return err
	}
	if req.Configuration != nil {
		if err := s.validateConfiguration(current.DefinitionID, req.Configuration); err != nil {
			return err
		}
	}
	updated, err := store.UpdateInstance(ctx, widgetID, UpdateWidgetInstanceInput{
		Configuration: req.Configuration,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: updated.AreaCode,
		Instance: updated,
		Reason:   "update",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "widgets.widget.update", map[string]any{"widget_id": widgetID})
	return nil
}

// BindDataSource replaces the data binding of a widget instance. Transform
// settings from the previous binding are carried over when the new selection
// targets the same entity and property; everything else gets codec defaults.
func (s *Service) BindDataSource(ctx context.Context, widgetID string, sources datasource.DataSourceOrList) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidgetID
	}
	current, err := store.Instance(ctx, widgetID)
	if err != nil {
		return err
	}
	if err := s.validateSources(current.DefinitionID, sources); err != nil {
		return err
	}
	merged := mergeTransforms(sources, current.Sources)
	updated, err := store.UpdateInstance(ctx, widgetID, UpdateWidgetInstanceInput{
		Sources: &merged,
	})
	if err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: updated.AreaCode,
		Instance: updated,
		Reason:   "bind",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "widgets.widget.bind", map[string]any{
		"widget_id": widgetID,
		"sources":   merged.Len(),
	})
	return nil
}

func mergeTransforms(next, prev datasource.DataSourceOrList) datasource.DataSourceOrList {
	if next.IsZero() || prev.IsZero() {
		return next
	}
	prevSources := prev.Sources()
	merged := make([]datasource.DataSource, 0, next.Len())
	for _, src := range next.Sources() {
		for _, old := range prevSources {
			src = src.MergeTransform(old)
		}
		merged = append(merged, src)
	}
	if !next.IsList() {
		return datasource.FromSource(merged[0])
	}
	return datasource.FromSources(merged)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// RemoveWidget deletes the widget instance.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidgetID
	}
	if err := store.DeleteInstance(ctx, widgetID); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		Instance: WidgetInstance{ID: widgetID},
		Reason:   "delete",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "widgets.widget.remove", map[string]any{"widget_id": widgetID})
	return nil
}

// ReorderWidgets changes widget ordering within an area.
func (s *Service) ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if areaCode == "" {
		return errInvalidArea
	}
	if err := store.ReorderArea(ctx, ReorderAreaInput{
		AreaCode:  areaCode,
		WidgetIDs: widgetIDs,
	}); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: areaCode,
		Reason:   "reorder",
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "widgets.widget.reorder", map[string]any{
		"area_code": areaCode,
		"count":     len(widgetIDs),
	})
	return nil
}

// ConfigureLayout resolves widgets for each dashboard area respecting
// preferences and authorization.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{Areas: make(map[string][]WidgetInstance)}
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
			AreaCode: area,
			Audience: viewer.Roles,
			Locale:   viewer.Locale,
		})
		if err != nil {
			return Layout{}, err
		}
		for i := range resolved.Widgets {
			resolved.Widgets[i].AreaCode = area
		}
		filtered := s.filterAuthorized(ctx, viewer, resolved.Widgets)
		ordered := applyOrderOverride(filtered, overrides.AreaOrder[area])
		layout.Areas[area] = applyHiddenFilter(ordered, overrides.HiddenWidgets)
	}
	s.recordTelemetry(ctx, "widgets.layout.resolve", map[string]any{
		"viewer": viewer.UserID,
	})
	return layout, nil
}

// ResolveArea retrieves a single area layout for the viewer.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: areaCode,
		Audience: viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return ResolvedArea{}, err
	}
	resolved.Widgets = s.filterAuthorized(ctx, viewer, resolved.Widgets)
	s.recordTelemetry(ctx, "widgets.area.resolve", map[string]any{
		"viewer":    viewer.UserID,
		"area_code": areaCode,
	})
	return resolved, nil
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	if s.opts.ConfigValidator == nil || s.opts.Providers == nil {
		return nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) validateSources(definitionID string, sources datasource.DataSourceOrList) error {
	if sources.IsZero() || s.opts.Providers == nil {
		return nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	if !def.MultiSource && sources.IsList() && sources.Len() > 1 {
		return errSingleSourceOnly
	}
	if def.MultiSource && def.MaxSources > 0 && sources.Len() > def.MaxSources {
		return errTooManySources
	}
	return nil
}

func (s *Service) areaList() []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return defaultAreas
}

func (s *Service) filterAuthorized(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	now := time.Now()
	var filtered []WidgetInstance
	for _, w := range widgets {
		if !w.Visibility.VisibleTo(viewer, now) {
			continue
		}
		if s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			filtered = append(filtered, w)
		}
	}
	return s.attachProviderData(ctx, viewer, filtered)
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 || s.opts.Providers == nil {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance: inst,
			Viewer:   viewer,
		})
		if err != nil {
			s.recordTelemetry(ctx, "widgets.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"error":         err.Error(),
			})
			continue
		}
		if enriched[i].Metadata == nil {
			enriched[i].Metadata = map[string]any{}
		}
		enriched[i].Metadata["data"] = data
	}
	return enriched
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "widgets.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

// SavePreferences persists per-viewer layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errors.New("widgets: viewer context missing user id")
	}
	s.normalizeOverrides(&overrides)
	return s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides)
}

func (s *Service) normalizeOverrides(overrides *LayoutOverrides) {
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewWidget(context.Context, ViewerContext, WidgetInstance) bool {
	return true
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
