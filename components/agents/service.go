package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	errMissingAgentStore = errors.New("agents: agent store is required")
	errInvalidAgentName  = errors.New("agents: agent name is required")
	errInvalidAgentID    = errors.New("agents: agent id is required")
	errUnknownAgent      = errors.New("agents: unknown agent")
	errEmptyMessage      = errors.New("agents: message content is required")
)

// Telemetry allows the service to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// Options configures the agent monitoring service.
type Options struct {
	Store     AgentStore
	EventHook EventHook
	Telemetry Telemetry
	Now       func() time.Time
}

// Service creates agents and folds backend agent events into the display
// state widgets read.
type Service struct {
	store     AgentStore
	hook      EventHook
	telemetry Telemetry
	now       func() time.Time
}

// NewService applies safe defaults for optional collaborators.
func NewService(opts Options) *Service {
	svc := &Service{
		store:     opts.Store,
		hook:      opts.EventHook,
		telemetry: normalizeTelemetry(opts.Telemetry),
		now:       opts.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// CreateAgent registers a new agent.
func (s *Service) CreateAgent(ctx context.Context, cfg AgentConfig) (Agent, error) {
	if s.store == nil {
		return Agent{}, errMissingAgentStore
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return Agent{}, errInvalidAgentName
	}
	agent := Agent{
		ID:        uuid.NewString(),
		Config:    cfg,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateAgent(ctx, agent); err != nil {
		return Agent{}, fmt.Errorf("agents: create agent: %w", err)
	}
	s.telemetry.Record(ctx, "agents.agent.create", map[string]any{
		"agent_id": agent.ID,
		"name":     cfg.Name,
	})
	return agent, nil
}

// ListAgents returns every known agent.
func (s *Service) ListAgents(ctx context.Context) ([]Agent, error) {
	if s.store == nil {
		return nil, errMissingAgentStore
	}
	return s.store.Agents(ctx)
}

// Executions returns the runs recorded for an agent, newest first.
func (s *Service) Executions(ctx context.Context, agentID string) ([]Execution, error) {
	if s.store == nil {
		return nil, errMissingAgentStore
	}
	if agentID == "" {
		return nil, errInvalidAgentID
	}
	return s.store.Executions(ctx, agentID)
}

// Memory returns the agent's displayed memory stream.
func (s *Service) Memory(ctx context.Context, agentID string) ([]MemoryEntry, error) {
	if s.store == nil {
		return nil, errMissingAgentStore
	}
	if agentID == "" {
		return nil, errInvalidAgentID
	}
	return s.store.Memory(ctx, agentID)
}

// UserMessages returns the messages users sent to the agent.
func (s *Service) UserMessages(ctx context.Context, agentID string) ([]UserMessage, error) {
	if s.store == nil {
		return nil, errMissingAgentStore
	}
	if agentID == "" {
		return nil, errInvalidAgentID
	}
	return s.store.UserMessages(ctx, agentID)
}

// AddUserMessage records a message sent to the agent.
func (s *Service) AddUserMessage(ctx context.Context, agentID, author, content string) (UserMessage, error) {
	if s.store == nil {
		return UserMessage{}, errMissingAgentStore
	}
	if agentID == "" {
		return UserMessage{}, errInvalidAgentID
	}
	if strings.TrimSpace(content) == "" {
		return UserMessage{}, errEmptyMessage
	}
	if _, ok, err := s.store.Agent(ctx, agentID); err != nil {
		return UserMessage{}, err
	} else if !ok {
		return UserMessage{}, errUnknownAgent
	}
	msg := UserMessage{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		Author:    author,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendUserMessage(ctx, msg); err != nil {
		return UserMessage{}, fmt.Errorf("agents: add user message: %w", err)
	}
	s.telemetry.Record(ctx, "agents.message.add", map[string]any{"agent_id": agentID})
	return msg, nil
}

// RecordEvent folds a backend agent event into local state and rebroadcasts
// it. Unknown kinds are dropped silently so stream schema growth does not
// break monitoring.
func (s *Service) RecordEvent(ctx context.Context, event Event) error {
	if s.store == nil {
		return errMissingAgentStore
	}
	if event.AgentID == "" {
		return errInvalidAgentID
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}

	var err error
	switch event.Kind {
	case AgentExecutionStarted:
		err = s.recordExecutionStarted(ctx, event)
	case AgentExecutionCompleted:
		err = s.recordExecutionCompleted(ctx, event)
	case AgentThinking:
		err = s.appendMemory(ctx, event, MemoryThinking)
	case AgentDecision:
		err = s.appendMemory(ctx, event, MemoryDecision)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	s.telemetry.Record(ctx, "agents.event", map[string]any{
		"kind":     string(event.Kind),
		"agent_id": event.AgentID,
	})
	if s.hook != nil {
		return s.hook.AgentEvent(ctx, event)
	}
	return nil
}

func (s *Service) recordExecutionStarted(ctx context.Context, event Event) error {
	exec := Execution{
		ID:        event.ExecutionID,
		AgentID:   event.AgentID,
		Status:    ExecutionRunning,
		Task:      event.Task,
		StartedAt: event.OccurredAt,
	}
	if exec.ID == "" {
		exec.ID = uuid.NewString()
	}
	return s.store.UpsertExecution(ctx, exec)
}

func (s *Service) recordExecutionCompleted(ctx context.Context, event Event) error {
	exec, ok, err := s.store.Execution(ctx, event.ExecutionID)
	if err != nil {
		return err
	}
	if !ok {
		// Completion may arrive without a witnessed start.
		exec = Execution{
			ID:        event.ExecutionID,
			AgentID:   event.AgentID,
			StartedAt: event.OccurredAt,
		}
		if exec.ID == "" {
			exec.ID = uuid.NewString()
		}
	}
	completed := event.OccurredAt
	exec.CompletedAt = &completed
	if event.Failed {
		exec.Status = ExecutionFailed
		exec.Error = event.Content
	} else {
		exec.Status = ExecutionCompleted
		exec.Result = event.Content
	}
	return s.store.UpsertExecution(ctx, exec)
}

func (s *Service) appendMemory(ctx context.Context, event Event, kind MemoryKind) error {
	return s.store.AppendMemory(ctx, MemoryEntry{
		ID:          uuid.NewString(),
		AgentID:     event.AgentID,
		ExecutionID: event.ExecutionID,
		Kind:        kind,
		Content:     event.Content,
		CreatedAt:   event.OccurredAt,
	})
}
