package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

type assignService interface {
	AddWidget(ctx context.Context, req widgets.AddWidgetRequest) error
}

// AssignWidgetCommand translates incoming requests into service calls and emits
// telemetry so operators can observe widget assignment activity.
type AssignWidgetCommand struct {
	service   assignService
	telemetry Telemetry
}

// NewAssignWidgetCommand creates a command instance.
func NewAssignWidgetCommand(service assignService, telemetry Telemetry) *AssignWidgetCommand {
	return &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[widgets.AddWidgetRequest] = (*AssignWidgetCommand)(nil)

// Execute delegates to the widget service.
func (c *AssignWidgetCommand) Execute(ctx context.Context, msg widgets.AddWidgetRequest) error {
	if c.service == nil {
		return errors.New("assign command requires service")
	}
	if err := c.service.AddWidget(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "widgets.widget.assign", map[string]any{
		"definition_id": msg.DefinitionID,
		"area_code":     msg.AreaCode,
	})
	return nil
}
