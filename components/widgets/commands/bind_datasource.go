package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/edgekit/go-widgets/components/datasource"
	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// BindDataSourceInput rebinds a widget instance to a new data-source selection.
// Items are selection keys as produced by the source picker; they are decoded
// server side so transform settings always start from defaults.
type BindDataSourceInput struct {
	WidgetID string                    `json:"widget_id"`
	Items    []datasource.SelectedItem `json:"items"`
	Multiple bool                      `json:"multiple"`
	ActorID  string                    `json:"actor_id"`
	UserID   string                    `json:"user_id"`
	TenantID string                    `json:"tenant_id"`
}

type bindService interface {
	BindDataSource(ctx context.Context, widgetID string, sources datasource.DataSourceOrList) error
}

// BindDataSourceCommand wraps Service.BindDataSource.
type BindDataSourceCommand struct {
	service   bindService
	telemetry Telemetry
}

// NewBindDataSourceCommand creates the command.
func NewBindDataSourceCommand(service bindService, telemetry Telemetry) *BindDataSourceCommand {
	return &BindDataSourceCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[BindDataSourceInput] = (*BindDataSourceCommand)(nil)

// Execute decodes the selection keys and rebinds the widget.
func (c *BindDataSourceCommand) Execute(ctx context.Context, msg BindDataSourceInput) error {
	if c.service == nil {
		return errors.New("bind command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("bind command requires widget id")
	}
	ctx = widgets.ContextWithActivity(ctx, widgets.ActivityContext{
		ActorID:  msg.ActorID,
		UserID:   msg.UserID,
		TenantID: msg.TenantID,
	})
	sources := datasource.DataSourceFromItems(msg.Items, msg.Multiple)
	if err := c.service.BindDataSource(ctx, msg.WidgetID, sources); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "widgets.widget.bind", map[string]any{
		"widget_id": msg.WidgetID,
		"count":     len(msg.Items),
	})
	return nil
}
