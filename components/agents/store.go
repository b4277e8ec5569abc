package agents

import (
	"context"
	"sort"
	"sync"
)

// InMemoryAgentStore is a concurrency-safe AgentStore for tests and demos.
type InMemoryAgentStore struct {
	mu         sync.RWMutex
	agents     map[string]Agent
	agentOrder []string
	executions map[string]Execution
	execOrder  []string
	memory     map[string][]MemoryEntry
	messages   map[string][]UserMessage
}

// NewInMemoryAgentStore creates an empty store.
func NewInMemoryAgentStore() *InMemoryAgentStore {
	return &InMemoryAgentStore{
		agents:     make(map[string]Agent),
		executions: make(map[string]Execution),
		memory:     make(map[string][]MemoryEntry),
		messages:   make(map[string][]UserMessage),
	}
}

var _ AgentStore = (*InMemoryAgentStore)(nil)

// CreateAgent stores the agent.
func (s *InMemoryAgentStore) CreateAgent(_ context.Context, agent Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[agent.ID]; !ok {
		s.agentOrder = append(s.agentOrder, agent.ID)
	}
	s.agents[agent.ID] = agent
	return nil
}

// Agent fetches an agent by id.
func (s *InMemoryAgentStore) Agent(_ context.Context, agentID string) (Agent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[agentID]
	return agent, ok, nil
}

// Agents lists agents in creation order.
func (s *InMemoryAgentStore) Agents(_ context.Context) ([]Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Agent, 0, len(s.agentOrder))
	for _, id := range s.agentOrder {
		out = append(out, s.agents[id])
	}
	return out, nil
}

// UpsertExecution inserts or replaces the execution.
func (s *InMemoryAgentStore) UpsertExecution(_ context.Context, exec Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.executions[exec.ID]; !ok {
		s.execOrder = append(s.execOrder, exec.ID)
	}
	s.executions[exec.ID] = exec
	return nil
}

// Executions lists an agent's runs, newest start first.
func (s *InMemoryAgentStore) Executions(_ context.Context, agentID string) ([]Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Execution
	for _, id := range s.execOrder {
		if exec := s.executions[id]; exec.AgentID == agentID {
			out = append(out, exec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// Execution fetches a run by id.
func (s *InMemoryAgentStore) Execution(_ context.Context, executionID string) (Execution, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exec, ok := s.executions[executionID]
	return exec, ok, nil
}

// AppendMemory appends to the agent's memory stream.
func (s *InMemoryAgentStore) AppendMemory(_ context.Context, entry MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory[entry.AgentID] = append(s.memory[entry.AgentID], entry)
	return nil
}

// Memory returns the agent's memory stream in arrival order.
func (s *InMemoryAgentStore) Memory(_ context.Context, agentID string) ([]MemoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.memory[agentID]
	out := make([]MemoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// AppendUserMessage appends to the agent's message history.
func (s *InMemoryAgentStore) AppendUserMessage(_ context.Context, msg UserMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.AgentID] = append(s.messages[msg.AgentID], msg)
	return nil
}

// UserMessages returns the agent's message history in arrival order.
func (s *InMemoryAgentStore) UserMessages(_ context.Context, agentID string) ([]UserMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[agentID]
	out := make([]UserMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
