package agents

import (
	"context"
	"testing"
	"time"

	widgets "github.com/edgekit/go-widgets/components/widgets"
)

func widgetContext() widgets.WidgetContext {
	return widgets.WidgetContext{
		Instance: widgets.WidgetInstance{DefinitionID: "widget.agent_monitor"},
	}
}

func newTestService(hook EventHook) (*Service, *InMemoryAgentStore) {
	store := NewInMemoryAgentStore()
	svc := NewService(Options{Store: store, EventHook: hook})
	return svc, store
}

func TestCreateAgentRequiresName(t *testing.T) {
	svc, _ := newTestService(nil)
	if _, err := svc.CreateAgent(context.Background(), AgentConfig{}); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestCreateAndListAgents(t *testing.T) {
	svc, _ := newTestService(nil)
	agent, err := svc.CreateAgent(context.Background(), AgentConfig{Name: "watchdog", Model: "small"})
	if err != nil {
		t.Fatalf("CreateAgent returned error: %v", err)
	}
	if agent.ID == "" {
		t.Fatalf("expected generated agent id")
	}
	agents, err := svc.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("ListAgents returned error: %v", err)
	}
	if len(agents) != 1 || agents[0].Config.Name != "watchdog" {
		t.Fatalf("unexpected agents: %+v", agents)
	}
}

func TestRecordEventExecutionLifecycle(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	agent, err := svc.CreateAgent(ctx, AgentConfig{Name: "patrol"})
	if err != nil {
		t.Fatalf("CreateAgent returned error: %v", err)
	}

	start := Event{
		Kind:        AgentExecutionStarted,
		AgentID:     agent.ID,
		ExecutionID: "exec-1",
		Task:        "scan sensors",
	}
	if err := svc.RecordEvent(ctx, start); err != nil {
		t.Fatalf("RecordEvent(start) returned error: %v", err)
	}
	execs, err := svc.Executions(ctx, agent.ID)
	if err != nil {
		t.Fatalf("Executions returned error: %v", err)
	}
	if len(execs) != 1 || execs[0].Status != ExecutionRunning {
		t.Fatalf("expected one running execution, got %+v", execs)
	}

	done := Event{
		Kind:        AgentExecutionCompleted,
		AgentID:     agent.ID,
		ExecutionID: "exec-1",
		Content:     "all sensors nominal",
	}
	if err := svc.RecordEvent(ctx, done); err != nil {
		t.Fatalf("RecordEvent(completed) returned error: %v", err)
	}
	execs, _ = svc.Executions(ctx, agent.ID)
	if execs[0].Status != ExecutionCompleted {
		t.Fatalf("expected completed status, got %s", execs[0].Status)
	}
	if execs[0].Result != "all sensors nominal" {
		t.Fatalf("expected result capture, got %q", execs[0].Result)
	}
	if execs[0].CompletedAt == nil {
		t.Fatalf("expected completion timestamp")
	}
	if execs[0].Task != "scan sensors" {
		t.Fatalf("task should survive completion, got %q", execs[0].Task)
	}
}

func TestRecordEventFailedExecution(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	agent, _ := svc.CreateAgent(ctx, AgentConfig{Name: "patrol"})

	// Completion without a witnessed start still produces a record.
	event := Event{
		Kind:        AgentExecutionCompleted,
		AgentID:     agent.ID,
		ExecutionID: "exec-9",
		Failed:      true,
		Content:     "sensor offline",
	}
	if err := svc.RecordEvent(ctx, event); err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}
	execs, _ := svc.Executions(ctx, agent.ID)
	if len(execs) != 1 || execs[0].Status != ExecutionFailed {
		t.Fatalf("expected failed execution, got %+v", execs)
	}
	if execs[0].Error != "sensor offline" {
		t.Fatalf("expected error capture, got %q", execs[0].Error)
	}
}

func TestRecordEventMemory(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	agent, _ := svc.CreateAgent(ctx, AgentConfig{Name: "planner"})

	events := []Event{
		{Kind: AgentThinking, AgentID: agent.ID, Content: "considering schedule"},
		{Kind: AgentDecision, AgentID: agent.ID, Content: "lower thermostat"},
	}
	for _, event := range events {
		if err := svc.RecordEvent(ctx, event); err != nil {
			t.Fatalf("RecordEvent returned error: %v", err)
		}
	}
	memory, err := svc.Memory(ctx, agent.ID)
	if err != nil {
		t.Fatalf("Memory returned error: %v", err)
	}
	if len(memory) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(memory))
	}
	if memory[0].Kind != MemoryThinking || memory[1].Kind != MemoryDecision {
		t.Fatalf("unexpected memory kinds: %+v", memory)
	}
}

func TestRecordEventUnknownKindIgnored(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	agent, _ := svc.CreateAgent(ctx, AgentConfig{Name: "planner"})
	if err := svc.RecordEvent(ctx, Event{Kind: "agent.unknown", AgentID: agent.ID}); err != nil {
		t.Fatalf("unknown kinds should be dropped, got %v", err)
	}
}

func TestRecordEventBroadcasts(t *testing.T) {
	broadcast := NewBroadcast()
	svc, _ := newTestService(broadcast)
	ctx := context.Background()
	agent, _ := svc.CreateAgent(ctx, AgentConfig{Name: "courier"})

	events, cancel := broadcast.Subscribe()
	defer cancel()

	if err := svc.RecordEvent(ctx, Event{Kind: AgentThinking, AgentID: agent.ID, Content: "hm"}); err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}
	select {
	case event := <-events:
		if event.Kind != AgentThinking {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.OccurredAt.IsZero() {
			t.Fatalf("expected event timestamp to be stamped")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected broadcast delivery")
	}
}

func TestAddUserMessage(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	agent, _ := svc.CreateAgent(ctx, AgentConfig{Name: "concierge"})

	if _, err := svc.AddUserMessage(ctx, agent.ID, "u1", ""); err == nil {
		t.Fatalf("expected error for empty content")
	}
	if _, err := svc.AddUserMessage(ctx, "missing", "u1", "hello"); err == nil {
		t.Fatalf("expected error for unknown agent")
	}

	msg, err := svc.AddUserMessage(ctx, agent.ID, "u1", "dim the lights")
	if err != nil {
		t.Fatalf("AddUserMessage returned error: %v", err)
	}
	if msg.ID == "" || msg.AgentID != agent.ID {
		t.Fatalf("unexpected message: %+v", msg)
	}
	msgs, err := svc.UserMessages(ctx, agent.ID)
	if err != nil {
		t.Fatalf("UserMessages returned error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "dim the lights" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestMonitorProvider(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	agent, _ := svc.CreateAgent(ctx, AgentConfig{Name: "patrol"})
	_ = svc.RecordEvent(ctx, Event{Kind: AgentExecutionStarted, AgentID: agent.ID, ExecutionID: "e1", Task: "scan"})
	_ = svc.RecordEvent(ctx, Event{Kind: AgentDecision, AgentID: agent.ID, Content: "report ok"})

	provider := NewMonitorProvider(svc)
	data, err := provider.Fetch(ctx, widgetContext())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	rows, ok := data["agents"].([]map[string]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("unexpected payload: %+v", data)
	}
	if rows[0]["status"] != "running" {
		t.Fatalf("expected running status, got %v", rows[0]["status"])
	}
	if rows[0]["last_activity"] == nil {
		t.Fatalf("expected last activity from memory")
	}
}
