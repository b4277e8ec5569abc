package activity

import (
	"strings"
	"time"
)

// DefaultChannel is applied to events that do not name one.
const DefaultChannel = "dashboard"

// Event is a normalized activity record emitted when users act on widgets,
// bindings, or agents.
type Event struct {
	Verb           string         `json:"verb"`
	ActorID        string         `json:"actor_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	TenantID       string         `json:"tenant_id,omitempty"`
	ObjectType     string         `json:"object_type,omitempty"`
	ObjectID       string         `json:"object_id,omitempty"`
	Channel        string         `json:"channel,omitempty"`
	DefinitionCode string         `json:"definition_code,omitempty"`
	Recipients     []string       `json:"recipients,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at,omitempty"`
}

// Valid reports whether the event carries the minimum required fields.
func (e Event) Valid() bool {
	return strings.TrimSpace(e.Verb) != ""
}

// NormalizeEvent trims identifier fields, applies the default channel and
// timestamp, and clones mutable members so hooks can't alias caller state.
func NormalizeEvent(evt Event) Event {
	evt.Verb = strings.TrimSpace(evt.Verb)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.UserID = strings.TrimSpace(evt.UserID)
	evt.TenantID = strings.TrimSpace(evt.TenantID)
	evt.ObjectType = strings.TrimSpace(evt.ObjectType)
	evt.ObjectID = strings.TrimSpace(evt.ObjectID)
	evt.Channel = strings.TrimSpace(evt.Channel)
	evt.DefinitionCode = strings.TrimSpace(evt.DefinitionCode)
	if evt.Channel == "" {
		evt.Channel = DefaultChannel
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if len(evt.Metadata) > 0 {
		cloned := make(map[string]any, len(evt.Metadata))
		for key, value := range evt.Metadata {
			cloned[key] = value
		}
		evt.Metadata = cloned
	}
	if len(evt.Recipients) > 0 {
		evt.Recipients = append([]string(nil), evt.Recipients...)
	}
	return evt
}
