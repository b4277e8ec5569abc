package agents

import (
	"context"
	"time"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

// NewMonitorProvider builds the data payload for the agent monitor widget:
// every agent with its latest execution status and recent memory.
func NewMonitorProvider(service *Service) widgets.Provider {
	return widgets.ProviderFunc(func(ctx context.Context, meta widgets.WidgetContext) (widgets.WidgetData, error) {
		agents, err := service.ListAgents(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(agents))
		for _, agent := range agents {
			row := map[string]any{
				"agent_id": agent.ID,
				"name":     agent.Config.Name,
				"status":   "idle",
			}
			execs, err := service.Executions(ctx, agent.ID)
			if err == nil && len(execs) > 0 {
				latest := execs[0]
				row["status"] = string(latest.Status)
				row["task"] = latest.Task
				row["started_at"] = latest.StartedAt.Format(time.RFC3339)
				if latest.Status == ExecutionFailed {
					row["error"] = latest.Error
				}
			}
			if memory, err := service.Memory(ctx, agent.ID); err == nil && len(memory) > 0 {
				last := memory[len(memory)-1]
				row["last_activity"] = map[string]any{
					"kind":    string(last.Kind),
					"content": last.Content,
				}
			}
			rows = append(rows, row)
		}
		return widgets.WidgetData{"agents": rows, "count": len(rows)}, nil
	})
}

// RegisterMonitorProvider wires the agent monitor provider into a widget
// registry.
func RegisterMonitorProvider(reg widgets.ProviderRegistry, service *Service) error {
	return reg.RegisterProvider("widget.agent_monitor", NewMonitorProvider(service))
}
