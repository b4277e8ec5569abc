package backendapi

import (
	"context"

	"github.com/edgekit/go-widgets/components/agents"
	"github.com/edgekit/go-widgets/components/datasource"
)

// Directory fetches the device/extension inventories the source picker is
// built from.
type Directory interface {
	ListExtensions(ctx context.Context) ([]datasource.ExtensionInfo, error)
	ListAllDataSources(ctx context.Context) (datasource.CatalogInput, error)
}

// DeviceReader fetches current device telemetry.
type DeviceReader interface {
	GetDeviceCurrent(ctx context.Context, deviceID string) (DeviceCurrent, error)
}

// CommandClient dispatches commands to devices and extensions.
type CommandClient interface {
	SendCommand(ctx context.Context, deviceID, command string, payload map[string]any) error
	InvokeExtension(ctx context.Context, extensionID, command string, payload map[string]any) error
}

// AgentClient reads and writes agent monitoring state on the backend.
type AgentClient interface {
	GetAgentExecutions(ctx context.Context, agentID string) ([]agents.Execution, error)
	GetAgentMemory(ctx context.Context, agentID string) ([]agents.MemoryEntry, error)
	GetAgentUserMessages(ctx context.Context, agentID string) ([]agents.UserMessage, error)
	AddAgentUserMessage(ctx context.Context, agentID string, msg agents.UserMessage) error
}

// Client is a convenience union for services implementing the full backend
// surface.
type Client interface {
	Directory
	DeviceReader
	CommandClient
	AgentClient
}
