package agents

import (
	"context"
	"time"
)

// ExecutionStatus tracks the lifecycle of one agent run.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// AgentConfig is the creation payload for a backend agent.
type AgentConfig struct {
	Name         string         `json:"name"`
	Model        string         `json:"model,omitempty"`
	SystemPrompt string         `json:"system_prompt,omitempty"`
	Tools        []string       `json:"tools,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Agent is a created agent as tracked by the monitor.
type Agent struct {
	ID        string      `json:"id"`
	Config    AgentConfig `json:"config"`
	CreatedAt time.Time   `json:"created_at"`
}

// Execution is one agent run. CompletedAt is nil while running.
type Execution struct {
	ID          string          `json:"id"`
	AgentID     string          `json:"agent_id"`
	Status      ExecutionStatus `json:"status"`
	Task        string          `json:"task,omitempty"`
	Result      string          `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// MemoryKind separates reasoning traces from decisions in the memory feed.
type MemoryKind string

const (
	MemoryThinking MemoryKind = "thinking"
	MemoryDecision MemoryKind = "decision"
)

// MemoryEntry is one item in an agent's displayed memory stream.
type MemoryEntry struct {
	ID          string     `json:"id"`
	AgentID     string     `json:"agent_id"`
	ExecutionID string     `json:"execution_id,omitempty"`
	Kind        MemoryKind `json:"kind"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserMessage is a message a user sent to an agent.
type UserMessage struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// EventKind identifies agent events arriving from the backend stream.
type EventKind string

const (
	AgentExecutionStarted   EventKind = "agent.execution.started"
	AgentExecutionCompleted EventKind = "agent.execution.completed"
	AgentThinking           EventKind = "agent.thinking"
	AgentDecision           EventKind = "agent.decision"
)

// Event is a single agent event. Fields beyond Kind and AgentID are
// kind-dependent.
type Event struct {
	Kind        EventKind `json:"kind"`
	AgentID     string    `json:"agent_id"`
	ExecutionID string    `json:"execution_id,omitempty"`
	Task        string    `json:"task,omitempty"`
	Content     string    `json:"content,omitempty"`
	Failed      bool      `json:"failed,omitempty"`
	OccurredAt  time.Time `json:"occurred_at,omitempty"`
}

// AgentStore persists agents and their monitoring state.
type AgentStore interface {
	CreateAgent(ctx context.Context, agent Agent) error
	Agent(ctx context.Context, agentID string) (Agent, bool, error)
	Agents(ctx context.Context) ([]Agent, error)
	UpsertExecution(ctx context.Context, exec Execution) error
	Executions(ctx context.Context, agentID string) ([]Execution, error)
	Execution(ctx context.Context, executionID string) (Execution, bool, error)
	AppendMemory(ctx context.Context, entry MemoryEntry) error
	Memory(ctx context.Context, agentID string) ([]MemoryEntry, error)
	AppendUserMessage(ctx context.Context, msg UserMessage) error
	UserMessages(ctx context.Context, agentID string) ([]UserMessage, error)
}

// EventHook receives agent events after local state has been updated.
type EventHook interface {
	AgentEvent(ctx context.Context, event Event) error
}

// EventHookFunc adapts a function to EventHook.
type EventHookFunc func(ctx context.Context, event Event) error

// AgentEvent calls the wrapped function.
func (f EventHookFunc) AgentEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}
