package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// SeedDashboardInput controls bootstrap behavior.
type SeedDashboardInput struct {
	SeedLayout bool
}

// SeedDashboardCommand registers areas/definitions and optionally seeds layout.
type SeedDashboardCommand struct {
	store     widgets.WidgetStore
	registry  widgets.ProviderRegistry
	service   *widgets.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(store widgets.WidgetStore, registry widgets.ProviderRegistry, service *widgets.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.store == nil {
		return errors.New("seed command requires widget store")
	}
	if err := widgets.RegisterAreas(ctx, c.store); err != nil {
		return err
	}
	if err := widgets.RegisterDefinitions(ctx, c.store, c.registry); err != nil {
		return err
	}
	if msg.SeedLayout && c.service != nil {
		if err := widgets.SeedLayout(ctx, c.service); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "widgets.seed", map[string]any{"seed_layout": msg.SeedLayout})
	return nil
}
