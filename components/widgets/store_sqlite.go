package widgets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const widgetSchema = `
CREATE TABLE IF NOT EXISTS widget_areas (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS widget_definitions (
	code TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS widget_instances (
	id TEXT PRIMARY KEY,
	definition_id TEXT NOT NULL,
	area_code TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	sources TEXT NOT NULL DEFAULT 'null',
	configuration TEXT NOT NULL DEFAULT '{}',
	visibility TEXT NOT NULL DEFAULT '{}',
	metadata TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_widget_instances_area ON widget_instances(area_code, position);
`

// SQLiteWidgetStore persists areas, definitions, and instances in sqlite.
type SQLiteWidgetStore struct {
	db *sql.DB
}

// OpenSQLiteWidgetStore opens (creating if needed) a sqlite-backed store at
// the given path. Use ":memory:" for an ephemeral store.
func OpenSQLiteWidgetStore(path string) (*SQLiteWidgetStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("widgets: open sqlite store: %w", err)
	}
	if _, err := db.Exec(widgetSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("widgets: migrate sqlite store: %w", err)
	}
	return &SQLiteWidgetStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteWidgetStore) Close() error { return s.db.Close() }

// EnsureArea inserts the area if missing.
func (s *SQLiteWidgetStore) EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidArea
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO widget_areas (code, name, description) VALUES (?, ?, ?)
		 ON CONFLICT(code) DO NOTHING`,
		def.Code, def.Name, def.Description)
	if err != nil {
		return false, fmt.Errorf("widgets: ensure area %s: %w", def.Code, err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// EnsureDefinition inserts the definition if missing. The full definition is
// stored as JSON; schema and sections round-trip through their JSON tags.
func (s *SQLiteWidgetStore) EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error) {
	if def.Code == "" {
		return false, errInvalidDefinition
	}
	payload, err := json.Marshal(def)
	if err != nil {
		return false, fmt.Errorf("widgets: marshal definition %s: %w", def.Code, err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO widget_definitions (code, payload) VALUES (?, ?)
		 ON CONFLICT(code) DO NOTHING`,
		def.Code, string(payload))
	if err != nil {
		return false, fmt.Errorf("widgets: ensure definition %s: %w", def.Code, err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// CreateInstance inserts a new unassigned instance.
func (s *SQLiteWidgetStore) CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	if input.DefinitionID == "" {
		return WidgetInstance{}, errInvalidDefinition
	}
	instance := WidgetInstance{
		ID:            uuid.NewString(),
		DefinitionID:  input.DefinitionID,
		Sources:       input.Sources,
		Configuration: input.Configuration,
		Visibility:    input.Visibility,
		Metadata:      input.Metadata,
	}
	sources, config, visibility, metadata, err := encodeInstance(instance)
	if err != nil {
		return WidgetInstance{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO widget_instances (id, definition_id, sources, configuration, visibility, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		instance.ID, instance.DefinitionID, sources, config, visibility, metadata)
	if err != nil {
		return WidgetInstance{}, fmt.Errorf("widgets: create instance: %w", err)
	}
	return instance, nil
}

// UpdateInstance applies a partial update and returns the new state.
func (s *SQLiteWidgetStore) UpdateInstance(ctx context.Context, instanceID string, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	instance, err := s.Instance(ctx, instanceID)
	if err != nil {
		return WidgetInstance{}, err
	}
	if input.Sources != nil {
		instance.Sources = *input.Sources
	}
	if input.Configuration != nil {
		instance.Configuration = input.Configuration
	}
	if input.Metadata != nil {
		instance.Metadata = input.Metadata
	}
	sources, config, visibility, metadata, err := encodeInstance(instance)
	if err != nil {
		return WidgetInstance{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE widget_instances SET sources = ?, configuration = ?, visibility = ?, metadata = ? WHERE id = ?`,
		sources, config, visibility, metadata, instanceID)
	if err != nil {
		return WidgetInstance{}, fmt.Errorf("widgets: update instance %s: %w", instanceID, err)
	}
	return instance, nil
}

// DeleteInstance removes the instance.
func (s *SQLiteWidgetStore) DeleteInstance(ctx context.Context, instanceID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM widget_instances WHERE id = ?`, instanceID)
	if err != nil {
		return fmt.Errorf("widgets: delete instance %s: %w", instanceID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("widgets: instance %s not found", instanceID)
	}
	return nil
}

// AssignInstance moves the instance into an area at the requested position.
func (s *SQLiteWidgetStore) AssignInstance(ctx context.Context, input AssignWidgetInput) error {
	if input.AreaCode == "" {
		return errInvalidArea
	}
	position := 1 << 30
	if input.Position != nil {
		position = *input.Position
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE widget_instances SET area_code = ?, position = ? WHERE id = ?`,
		input.AreaCode, position, input.InstanceID)
	if err != nil {
		return fmt.Errorf("widgets: assign instance %s: %w", input.InstanceID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("widgets: instance %s not found", input.InstanceID)
	}
	return s.compactPositions(ctx, input.AreaCode)
}

// ReorderArea rewrites positions to match the provided ordering.
func (s *SQLiteWidgetStore) ReorderArea(ctx context.Context, input ReorderAreaInput) error {
	if input.AreaCode == "" {
		return errInvalidArea
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("widgets: reorder area %s: %w", input.AreaCode, err)
	}
	defer tx.Rollback()
	for idx, id := range input.WidgetIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE widget_instances SET position = ? WHERE id = ? AND area_code = ?`,
			idx, id, input.AreaCode); err != nil {
			return fmt.Errorf("widgets: reorder area %s: %w", input.AreaCode, err)
		}
	}
	// Unlisted widgets keep relative order after the listed ones.
	if _, err := tx.ExecContext(ctx,
		`UPDATE widget_instances SET position = position + ?
		 WHERE area_code = ? AND id NOT IN (SELECT value FROM json_each(?))`,
		len(input.WidgetIDs), input.AreaCode, jsonIDs(input.WidgetIDs)); err != nil {
		return fmt.Errorf("widgets: reorder area %s: %w", input.AreaCode, err)
	}
	return tx.Commit()
}

// ResolveArea loads the area's widgets in position order.
func (s *SQLiteWidgetStore) ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, definition_id, area_code, sources, configuration, visibility, metadata
		 FROM widget_instances WHERE area_code = ? ORDER BY position, id`,
		input.AreaCode)
	if err != nil {
		return ResolvedArea{}, fmt.Errorf("widgets: resolve area %s: %w", input.AreaCode, err)
	}
	defer rows.Close()
	resolved := ResolvedArea{AreaCode: input.AreaCode}
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return ResolvedArea{}, err
		}
		resolved.Widgets = append(resolved.Widgets, instance)
	}
	return resolved, rows.Err()
}

// Instance fetches a widget instance by id.
func (s *SQLiteWidgetStore) Instance(ctx context.Context, instanceID string) (WidgetInstance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, definition_id, area_code, sources, configuration, visibility, metadata
		 FROM widget_instances WHERE id = ?`, instanceID)
	instance, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return WidgetInstance{}, fmt.Errorf("widgets: instance %s not found", instanceID)
	}
	return instance, err
}

func (s *SQLiteWidgetStore) compactPositions(ctx context.Context, areaCode string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE widget_instances SET position = (
			SELECT COUNT(*) FROM widget_instances AS other
			WHERE other.area_code = widget_instances.area_code
			  AND (other.position < widget_instances.position
			       OR (other.position = widget_instances.position AND other.id < widget_instances.id))
		 ) WHERE area_code = ?`, areaCode)
	if err != nil {
		return fmt.Errorf("widgets: compact positions in %s: %w", areaCode, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstance(row rowScanner) (WidgetInstance, error) {
	var (
		instance                              WidgetInstance
		sources, config, visibility, metadata string
	)
	if err := row.Scan(&instance.ID, &instance.DefinitionID, &instance.AreaCode, &sources, &config, &visibility, &metadata); err != nil {
		return WidgetInstance{}, err
	}
	if err := json.Unmarshal([]byte(sources), &instance.Sources); err != nil {
		return WidgetInstance{}, fmt.Errorf("widgets: decode sources for %s: %w", instance.ID, err)
	}
	if err := json.Unmarshal([]byte(config), &instance.Configuration); err != nil {
		return WidgetInstance{}, fmt.Errorf("widgets: decode configuration for %s: %w", instance.ID, err)
	}
	if err := json.Unmarshal([]byte(visibility), &instance.Visibility); err != nil {
		return WidgetInstance{}, fmt.Errorf("widgets: decode visibility for %s: %w", instance.ID, err)
	}
	if err := json.Unmarshal([]byte(metadata), &instance.Metadata); err != nil {
		return WidgetInstance{}, fmt.Errorf("widgets: decode metadata for %s: %w", instance.ID, err)
	}
	return instance, nil
}

func encodeInstance(instance WidgetInstance) (sources, config, visibility, metadata string, err error) {
	srcData, err := json.Marshal(instance.Sources)
	if err != nil {
		return "", "", "", "", fmt.Errorf("widgets: encode sources: %w", err)
	}
	cfgData, err := json.Marshal(orEmptyMap(instance.Configuration))
	if err != nil {
		return "", "", "", "", fmt.Errorf("widgets: encode configuration: %w", err)
	}
	visData, err := json.Marshal(instance.Visibility)
	if err != nil {
		return "", "", "", "", fmt.Errorf("widgets: encode visibility: %w", err)
	}
	metaData, err := json.Marshal(orEmptyMap(instance.Metadata))
	if err != nil {
		return "", "", "", "", fmt.Errorf("widgets: encode metadata: %w", err)
	}
	return string(srcData), string(cfgData), string(visData), string(metaData), nil
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func jsonIDs(ids []string) string {
	data, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(data)
}
