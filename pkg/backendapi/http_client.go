package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/edgekit/go-widgets/components/agents"
	"github.com/edgekit/go-widgets/components/datasource"
)

// HTTPConfig configures the HTTP backend client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to the IoT backend via REST endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client capable of hitting a live backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backendapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

var _ Client = (*HTTPClient)(nil)

// ListExtensions fetches the installed backend extensions.
func (c *HTTPClient) ListExtensions(ctx context.Context) ([]datasource.ExtensionInfo, error) {
	var resp struct {
		Extensions []datasource.ExtensionInfo `json:"extensions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/extensions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Extensions, nil
}

// ListAllDataSources fetches every directory the source picker needs in one
// call.
func (c *HTTPClient) ListAllDataSources(ctx context.Context) (datasource.CatalogInput, error) {
	var resp struct {
		Devices       []datasource.Device        `json:"devices"`
		DeviceTypes   []datasource.DeviceType    `json:"device_types"`
		Extensions    []datasource.ExtensionInfo `json:"extensions"`
		SystemMetrics []datasource.MetricDef     `json:"system_metrics"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/datasources", nil, &resp); err != nil {
		return datasource.CatalogInput{}, err
	}
	return datasource.CatalogInput{
		Devices:       resp.Devices,
		DeviceTypes:   resp.DeviceTypes,
		Extensions:    resp.Extensions,
		SystemMetrics: resp.SystemMetrics,
	}, nil
}

// DeviceCurrent is the latest reading per metric for one device.
type DeviceCurrent struct {
	DeviceID string                 `json:"device_id"`
	Metrics  map[string]MetricValue `json:"metrics"`
}

// MetricValue is a single current reading.
type MetricValue struct {
	Value     float64   `json:"value"`
	Text      string    `json:"text,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GetDeviceCurrent fetches the device's current readings.
func (c *HTTPClient) GetDeviceCurrent(ctx context.Context, deviceID string) (DeviceCurrent, error) {
	var resp DeviceCurrent
	path := "/api/devices/" + url.PathEscape(deviceID) + "/current"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return DeviceCurrent{}, err
	}
	return resp, nil
}

type commandRequest struct {
	Command string         `json:"command"`
	Payload map[string]any `json:"payload,omitempty"`
}

// SendCommand dispatches a command to a device.
func (c *HTTPClient) SendCommand(ctx context.Context, deviceID, command string, payload map[string]any) error {
	path := "/api/devices/" + url.PathEscape(deviceID) + "/commands"
	return c.do(ctx, http.MethodPost, path, commandRequest{Command: command, Payload: payload}, nil)
}

// InvokeExtension invokes an extension-exposed command.
func (c *HTTPClient) InvokeExtension(ctx context.Context, extensionID, command string, payload map[string]any) error {
	path := "/api/extensions/" + url.PathEscape(extensionID) + "/invoke"
	return c.do(ctx, http.MethodPost, path, commandRequest{Command: command, Payload: payload}, nil)
}

// GetAgentExecutions fetches an agent's run history.
func (c *HTTPClient) GetAgentExecutions(ctx context.Context, agentID string) ([]agents.Execution, error) {
	var resp struct {
		Executions []agents.Execution `json:"executions"`
	}
	path := "/api/agents/" + url.PathEscape(agentID) + "/executions"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Executions, nil
}

// GetAgentMemory fetches an agent's memory stream.
func (c *HTTPClient) GetAgentMemory(ctx context.Context, agentID string) ([]agents.MemoryEntry, error) {
	var resp struct {
		Memory []agents.MemoryEntry `json:"memory"`
	}
	path := "/api/agents/" + url.PathEscape(agentID) + "/memory"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Memory, nil
}

// GetAgentUserMessages fetches the messages users sent to an agent.
func (c *HTTPClient) GetAgentUserMessages(ctx context.Context, agentID string) ([]agents.UserMessage, error) {
	var resp struct {
		Messages []agents.UserMessage `json:"messages"`
	}
	path := "/api/agents/" + url.PathEscape(agentID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// AddAgentUserMessage posts a new user message to an agent.
func (c *HTTPClient) AddAgentUserMessage(ctx context.Context, agentID string, msg agents.UserMessage) error {
	path := "/api/agents/" + url.PathEscape(agentID) + "/messages"
	return c.do(ctx, http.MethodPost, path, msg, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("backendapi: encode payload: %w", err)
		}
		body = encoded
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backendapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backendapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("backendapi: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("backendapi: decode response: %w", err)
	}
	return nil
}
