package backendapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/edgekit/go-widgets/components/agents"
	"github.com/edgekit/go-widgets/components/datasource"
)

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	Catalog    datasource.CatalogInput
	Current    map[string]DeviceCurrent
	Executions map[string][]agents.Execution
	Memory     map[string][]agents.MemoryEntry
	Messages   map[string][]agents.UserMessage
}

// MockClient implements Client using in-memory fixtures. Sent commands and
// posted messages are recorded for assertions.
type MockClient struct {
	mu       sync.RWMutex
	data     MockData
	Commands []SentCommand
}

// SentCommand records one dispatched command.
type SentCommand struct {
	TargetID  string
	Command   string
	Payload   map[string]any
	Extension bool
}

// NewMockClient builds a mock backend client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

var _ Client = (*MockClient)(nil)

// ListExtensions returns the configured extension directory.
func (c *MockClient) ListExtensions(context.Context) ([]datasource.ExtensionInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]datasource.ExtensionInfo, len(c.data.Catalog.Extensions))
	copy(out, c.data.Catalog.Extensions)
	return out, nil
}

// ListAllDataSources returns the configured directories.
func (c *MockClient) ListAllDataSources(context.Context) (datasource.CatalogInput, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Catalog, nil
}

// GetDeviceCurrent returns the configured readings for the device.
func (c *MockClient) GetDeviceCurrent(_ context.Context, deviceID string) (DeviceCurrent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	current, ok := c.data.Current[deviceID]
	if !ok {
		return DeviceCurrent{}, fmt.Errorf("backendapi: unknown device %s", deviceID)
	}
	return current, nil
}

// SendCommand records the dispatched device command.
func (c *MockClient) SendCommand(_ context.Context, deviceID, command string, payload map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Commands = append(c.Commands, SentCommand{TargetID: deviceID, Command: command, Payload: payload})
	return nil
}

// InvokeExtension records the dispatched extension command.
func (c *MockClient) InvokeExtension(_ context.Context, extensionID, command string, payload map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Commands = append(c.Commands, SentCommand{TargetID: extensionID, Command: command, Payload: payload, Extension: true})
	return nil
}

// GetAgentExecutions returns the configured execution history.
func (c *MockClient) GetAgentExecutions(_ context.Context, agentID string) ([]agents.Execution, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]agents.Execution(nil), c.data.Executions[agentID]...), nil
}

// GetAgentMemory returns the configured memory stream.
func (c *MockClient) GetAgentMemory(_ context.Context, agentID string) ([]agents.MemoryEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]agents.MemoryEntry(nil), c.data.Memory[agentID]...), nil
}

// GetAgentUserMessages returns the configured message history.
func (c *MockClient) GetAgentUserMessages(_ context.Context, agentID string) ([]agents.UserMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]agents.UserMessage(nil), c.data.Messages[agentID]...), nil
}

// AddAgentUserMessage appends the message to the fixture history.
func (c *MockClient) AddAgentUserMessage(_ context.Context, agentID string, msg agents.UserMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.Messages == nil {
		c.data.Messages = map[string][]agents.UserMessage{}
	}
	c.data.Messages[agentID] = append(c.data.Messages[agentID], msg)
	return nil
}
