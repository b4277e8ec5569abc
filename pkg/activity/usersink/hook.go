// Package usersink bridges activity events into a go-users activity sink.
package usersink

import (
	"context"

	"github.com/google/uuid"

	"github.com/edgekit/go-widgets/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
)

// Sink is the subset of the go-users activity logger the hook needs.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook converts activity events into go-users activity records.
type Hook struct {
	Sink Sink
}

// Notify implements activity.Hook.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil || !evt.Valid() {
		return nil
	}
	evt = activity.NormalizeEvent(evt)

	record := types.ActivityRecord{
		ActorID:    parseUUID(evt.ActorID),
		UserID:     parseUUID(evt.UserID),
		TenantID:   parseUUID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		OccurredAt: evt.OccurredAt,
	}

	data := make(map[string]any, len(evt.Metadata)+2)
	for key, value := range evt.Metadata {
		data[key] = value
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = evt.Recipients
	}
	if len(data) > 0 {
		record.Data = data
	}

	return h.Sink.Log(ctx, record)
}

func parseUUID(value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
