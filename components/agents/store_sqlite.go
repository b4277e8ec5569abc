package agents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const agentSchema = `
CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	config TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS agent_executions (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	status TEXT NOT NULL,
	task TEXT NOT NULL DEFAULT '',
	result TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_agent_executions_agent ON agent_executions(agent_id, started_at);
CREATE TABLE IF NOT EXISTS agent_memory (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	execution_id TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agent_memory_agent ON agent_memory(agent_id, created_at);
CREATE TABLE IF NOT EXISTS agent_messages (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agent_messages_agent ON agent_messages(agent_id, created_at);
`

// SQLiteAgentStore persists agents and monitoring state in sqlite.
type SQLiteAgentStore struct {
	db *sql.DB
}

// OpenSQLiteAgentStore opens (creating if needed) a sqlite-backed store at the
// given path. Use ":memory:" for an ephemeral store.
func OpenSQLiteAgentStore(path string) (*SQLiteAgentStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("agents: open sqlite store: %w", err)
	}
	if _, err := db.Exec(agentSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("agents: migrate sqlite store: %w", err)
	}
	return &SQLiteAgentStore{db: db}, nil
}

var _ AgentStore = (*SQLiteAgentStore)(nil)

// Close releases the underlying database handle.
func (s *SQLiteAgentStore) Close() error { return s.db.Close() }

// CreateAgent stores the agent. Its config is persisted as JSON.
func (s *SQLiteAgentStore) CreateAgent(ctx context.Context, agent Agent) error {
	config, err := json.Marshal(agent.Config)
	if err != nil {
		return fmt.Errorf("agents: encode config: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agents (id, config, created_at) VALUES (?, ?, ?)`,
		agent.ID, string(config), agent.CreatedAt)
	if err != nil {
		return fmt.Errorf("agents: create agent: %w", err)
	}
	return nil
}

// Agent fetches an agent by id.
func (s *SQLiteAgentStore) Agent(ctx context.Context, agentID string) (Agent, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, config, created_at FROM agents WHERE id = ?`, agentID)
	agent, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Agent{}, false, nil
	}
	if err != nil {
		return Agent{}, false, err
	}
	return agent, true, nil
}

// Agents lists agents in creation order.
func (s *SQLiteAgentStore) Agents(ctx context.Context) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, config, created_at FROM agents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("agents: list agents: %w", err)
	}
	defer rows.Close()
	var out []Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, agent)
	}
	return out, rows.Err()
}

// UpsertExecution inserts or replaces the execution.
func (s *SQLiteAgentStore) UpsertExecution(ctx context.Context, exec Execution) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_executions (id, agent_id, status, task, result, error, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			task = excluded.task,
			result = excluded.result,
			error = excluded.error,
			completed_at = excluded.completed_at`,
		exec.ID, exec.AgentID, string(exec.Status), exec.Task, exec.Result, exec.Error,
		exec.StartedAt, exec.CompletedAt)
	if err != nil {
		return fmt.Errorf("agents: upsert execution %s: %w", exec.ID, err)
	}
	return nil
}

// Executions lists an agent's runs, newest start first.
func (s *SQLiteAgentStore) Executions(ctx context.Context, agentID string) ([]Execution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, status, task, result, error, started_at, completed_at
		 FROM agent_executions WHERE agent_id = ? ORDER BY started_at DESC, id`,
		agentID)
	if err != nil {
		return nil, fmt.Errorf("agents: list executions: %w", err)
	}
	defer rows.Close()
	var out []Execution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, exec)
	}
	return out, rows.Err()
}

// Execution fetches a run by id.
func (s *SQLiteAgentStore) Execution(ctx context.Context, executionID string) (Execution, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, agent_id, status, task, result, error, started_at, completed_at
		 FROM agent_executions WHERE id = ?`, executionID)
	exec, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Execution{}, false, nil
	}
	if err != nil {
		return Execution{}, false, err
	}
	return exec, true, nil
}

// AppendMemory appends to the agent's memory stream.
func (s *SQLiteAgentStore) AppendMemory(ctx context.Context, entry MemoryEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_memory (id, agent_id, execution_id, kind, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.AgentID, entry.ExecutionID, string(entry.Kind), entry.Content, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("agents: append memory: %w", err)
	}
	return nil
}

// Memory returns the agent's memory stream in arrival order.
func (s *SQLiteAgentStore) Memory(ctx context.Context, agentID string) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, execution_id, kind, content, created_at
		 FROM agent_memory WHERE agent_id = ? ORDER BY created_at, id`, agentID)
	if err != nil {
		return nil, fmt.Errorf("agents: list memory: %w", err)
	}
	defer rows.Close()
	var out []MemoryEntry
	for rows.Next() {
		var (
			entry MemoryEntry
			kind  string
		)
		if err := rows.Scan(&entry.ID, &entry.AgentID, &entry.ExecutionID, &kind, &entry.Content, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Kind = MemoryKind(kind)
		out = append(out, entry)
	}
	return out, rows.Err()
}

// AppendUserMessage appends to the agent's message history.
func (s *SQLiteAgentStore) AppendUserMessage(ctx context.Context, msg UserMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_messages (id, agent_id, author, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.AgentID, msg.Author, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("agents: append user message: %w", err)
	}
	return nil
}

// UserMessages returns the agent's message history in arrival order.
func (s *SQLiteAgentStore) UserMessages(ctx context.Context, agentID string) ([]UserMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, author, content, created_at
		 FROM agent_messages WHERE agent_id = ? ORDER BY created_at, id`, agentID)
	if err != nil {
		return nil, fmt.Errorf("agents: list user messages: %w", err)
	}
	defer rows.Close()
	var out []UserMessage
	for rows.Next() {
		var msg UserMessage
		if err := rows.Scan(&msg.ID, &msg.AgentID, &msg.Author, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

type agentRowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row agentRowScanner) (Agent, error) {
	var (
		agent  Agent
		config string
	)
	if err := row.Scan(&agent.ID, &config, &agent.CreatedAt); err != nil {
		return Agent{}, err
	}
	if err := json.Unmarshal([]byte(config), &agent.Config); err != nil {
		return Agent{}, fmt.Errorf("agents: decode config for %s: %w", agent.ID, err)
	}
	return agent, nil
}

func scanExecution(row agentRowScanner) (Execution, error) {
	var (
		exec      Execution
		status    string
		completed sql.NullTime
	)
	if err := row.Scan(&exec.ID, &exec.AgentID, &status, &exec.Task, &exec.Result, &exec.Error, &exec.StartedAt, &completed); err != nil {
		return Execution{}, err
	}
	exec.Status = ExecutionStatus(status)
	if completed.Valid {
		t := completed.Time.UTC()
		exec.CompletedAt = &t
	}
	return exec, nil
}
