package widgets

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemoryWidgetStore is a concurrency-safe WidgetStore for tests and demos.
type InMemoryWidgetStore struct {
	mu          sync.RWMutex
	areas       map[string]WidgetAreaDefinition
	definitions map[string]WidgetDefinition
	instances   map[string]WidgetInstance
	assignments map[string][]string
}

// NewInMemoryWidgetStore creates an empty store.
func NewInMemoryWidgetStore() *InMemoryWidgetStore {
	return &InMemoryWidgetStore{
		areas:       make(map[string]WidgetAreaDefinition),
		definitions: make(map[string]WidgetDefinition),
		instances:   make(map[string]WidgetInstance),
		assignments: make(map[string][]string),
	}
}

// EnsureArea registers the area if missing. Reports whether it was created.
func (s *InMemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidArea
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[def.Code]; ok {
		return false, nil
	}
	s.areas[def.Code] = def
	return true, nil
}

// EnsureDefinition registers the definition if missing.
func (s *InMemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidDefinition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.definitions[def.Code]; ok {
		return false, nil
	}
	s.definitions[def.Code] = def
	return true, nil
}

// CreateInstance stores a new widget instance with a fresh id.
func (s *InMemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	if input.DefinitionID == "" {
		return WidgetInstance{}, errInvalidDefinition
	}
	instance := WidgetInstance{
		ID:            uuid.NewString(),
		DefinitionID:  input.DefinitionID,
		Sources:       input.Sources,
		Configuration: input.Configuration,
		Visibility:    input.Visibility,
		Metadata:      input.Metadata,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[instance.ID] = instance
	return instance, nil
}

// UpdateInstance applies a partial update.
func (s *InMemoryWidgetStore) UpdateInstance(_ context.Context, instanceID string, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, ok := s.instances[instanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("widgets: instance %s not found", instanceID)
	}
	if input.Sources != nil {
		instance.Sources = *input.Sources
	}
	if input.Configuration != nil {
		instance.Configuration = input.Configuration
	}
	if input.Metadata != nil {
		instance.Metadata = input.Metadata
	}
	s.instances[instanceID] = instance
	return instance, nil
}

// DeleteInstance removes the instance and its assignment.
func (s *InMemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[instanceID]; !ok {
		return fmt.Errorf("widgets: instance %s not found", instanceID)
	}
	delete(s.instances, instanceID)
	for area, ids := range s.assignments {
		s.assignments[area] = removeID(ids, instanceID)
	}
	return nil
}

// AssignInstance places an instance in an area, optionally at a position.
func (s *InMemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	if input.AreaCode == "" {
		return errInvalidArea
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, ok := s.instances[input.InstanceID]
	if !ok {
		return fmt.Errorf("widgets: instance %s not found", input.InstanceID)
	}
	for area, ids := range s.assignments {
		s.assignments[area] = removeID(ids, input.InstanceID)
	}
	ids := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position < len(ids) {
		pos := *input.Position
		ids = append(ids[:pos], append([]string{input.InstanceID}, ids[pos:]...)...)
	} else {
		ids = append(ids, input.InstanceID)
	}
	s.assignments[input.AreaCode] = ids
	instance.AreaCode = input.AreaCode
	s.instances[input.InstanceID] = instance
	return nil
}

// ReorderArea replaces the ordering for an area. Unknown ids are ignored;
// unlisted assigned widgets keep their relative order at the end.
func (s *InMemoryWidgetStore) ReorderArea(_ context.Context, input ReorderAreaInput) error {
	if input.AreaCode == "" {
		return errInvalidArea
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.assignments[input.AreaCode]
	known := make(map[string]struct{}, len(current))
	for _, id := range current {
		known[id] = struct{}{}
	}
	ordered := make([]string, 0, len(current))
	seen := make(map[string]struct{}, len(input.WidgetIDs))
	for _, id := range input.WidgetIDs {
		if _, ok := known[id]; !ok {
			continue
		}
		ordered = append(ordered, id)
		seen[id] = struct{}{}
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			ordered = append(ordered, id)
		}
	}
	s.assignments[input.AreaCode] = ordered
	return nil
}

// ResolveArea returns the widgets assigned to an area, in order.
func (s *InMemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		if instance, ok := s.instances[id]; ok {
			widgets = append(widgets, instance)
		}
	}
	return ResolvedArea{AreaCode: input.AreaCode, Widgets: widgets}, nil
}

// Instance fetches a widget instance by id.
func (s *InMemoryWidgetStore) Instance(_ context.Context, instanceID string) (WidgetInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instance, ok := s.instances[instanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("widgets: instance %s not found", instanceID)
	}
	return instance, nil
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
