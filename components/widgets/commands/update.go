package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// UpdateWidgetInput captures widget update payloads.
type UpdateWidgetInput struct {
	WidgetID      string         `json:"widget_id"`
	Configuration map[string]any `json:"configuration"`
	Metadata      map[string]any `json:"metadata"`
	ActorID       string         `json:"actor_id"`
	UserID        string         `json:"user_id"`
	TenantID      string         `json:"tenant_id"`
}

type updateService interface {
	UpdateWidget(ctx context.Context, widgetID string, req widgets.UpdateWidgetRequest) error
}

// UpdateWidgetCommand wraps Service.UpdateWidget.
type UpdateWidgetCommand struct {
	service   updateService
	telemetry Telemetry
}

// NewUpdateWidgetCommand creates the command.
func NewUpdateWidgetCommand(service updateService, telemetry Telemetry) *UpdateWidgetCommand {
	return &UpdateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateWidgetInput] = (*UpdateWidgetCommand)(nil)

// Execute updates widget configuration/metadata.
func (c *UpdateWidgetCommand) Execute(ctx context.Context, msg UpdateWidgetInput) error {
	if c.service == nil {
		return errors.New("update command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("update command requires widget id")
	}
	ctx = widgets.ContextWithActivity(ctx, widgets.ActivityContext{
		ActorID:  msg.ActorID,
		UserID:   msg.UserID,
		TenantID: msg.TenantID,
	})
	req := widgets.UpdateWidgetRequest{
		Configuration: msg.Configuration,
		Metadata:      msg.Metadata,
		ActorID:       msg.ActorID,
		UserID:        msg.UserID,
		TenantID:      msg.TenantID,
	}
	if err := c.service.UpdateWidget(ctx, msg.WidgetID, req); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "widgets.widget.update", map[string]any{
		"widget_id": msg.WidgetID,
	})
	return nil
}
