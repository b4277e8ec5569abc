package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// RefreshWidgetInput emits refresh notifications for a widget instance.
type RefreshWidgetInput struct {
	Event widgets.WidgetEvent
}

type refreshNotifier interface {
	NotifyWidgetUpdated(ctx context.Context, event widgets.WidgetEvent) error
}

// RefreshWidgetCommand triggers refresh hooks without forcing transports.
type RefreshWidgetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshNotifier, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute notifies the widget service's refresh hooks.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.NotifyWidgetUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "widgets.widget.refresh", map[string]any{
		"area_code": msg.Event.AreaCode,
		"widget_id": msg.Event.Instance.ID,
	})
	return nil
}
