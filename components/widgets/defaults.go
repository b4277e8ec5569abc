package widgets

import (
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: "dashboard.main", Name: "Dashboard (Main)", Description: "Primary dashboard canvas"},
	{Code: "dashboard.sidebar", Name: "Dashboard (Sidebar)", Description: "Secondary widgets"},
	{Code: "dashboard.footer", Name: "Dashboard (Footer)", Description: "Footer widgets"},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: "widget.gauge",
		Name: "Gauge",
		NameLocalized: map[string]string{
			"es": "Indicador",
		},
		Description: "Single metric against a min/max range",
		Category:    "metrics",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"min":  map[string]any{"type": "number", "default": 0},
				"max":  map[string]any{"type": "number", "default": 100},
				"unit": map[string]any{"type": "string"},
			},
		},
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionDataSource, Key: "source"},
			{Tag: datasource.SectionValue, Key: "min", Label: "Minimum", Default: 0},
			{Tag: datasource.SectionValue, Key: "max", Label: "Maximum", Default: 100},
			{Tag: datasource.SectionColor, Key: "accent", Label: "Accent color"},
			{Tag: datasource.SectionText, Key: "unit", Label: "Unit"},
		},
	},
	{
		Code: "widget.line_chart",
		Name: "Line Chart",
		NameLocalized: map[string]string{
			"es": "Gráfico de líneas",
		},
		Description: "Telemetry history for up to four sources",
		Category:    "charts",
		MultiSource: true,
		MaxSources:  4,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":  map[string]any{"type": "string"},
				"smooth": map[string]any{"type": "boolean", "default": true},
			},
		},
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionDataSource, Key: "sources"},
			{Tag: datasource.SectionText, Key: "title", Label: "Title"},
			{Tag: datasource.SectionBoolean, Key: "smooth", Label: "Smooth lines", Default: true},
			{Tag: datasource.SectionMultiColor, Key: "palette", Label: "Series colors", Colors: 4},
			{Tag: datasource.SectionAnimation, Key: "animation", Label: "Animation", Fields: []datasource.ConfigSection{
				{Tag: datasource.SectionBoolean, Key: "enabled", Default: true},
				{Tag: datasource.SectionRange, Key: "duration_ms", Min: 100, Max: 2000, Step: 100, Default: 400},
			}},
		},
	},
	{
		Code: "widget.toggle",
		Name: "Toggle",
		NameLocalized: map[string]string{
			"es": "Interruptor",
		},
		Description: "Sends a device command when switched",
		Category:    "controls",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"label_on":  map[string]any{"type": "string", "default": "On"},
				"label_off": map[string]any{"type": "string", "default": "Off"},
			},
		},
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionDataSource, Key: "command"},
			{Tag: datasource.SectionText, Key: "label_on", Label: "On label", Default: "On"},
			{Tag: datasource.SectionText, Key: "label_off", Label: "Off label", Default: "Off"},
			{Tag: datasource.SectionOrientation, Key: "orientation", Label: "Orientation"},
		},
	},
	{
		Code:        "widget.value_card",
		Name:        "Value Card",
		Description: "Current value with label and unit",
		Category:    "metrics",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"label":     map[string]any{"type": "string"},
				"precision": map[string]any{"type": "integer", "minimum": 0, "maximum": 6, "default": 1},
			},
		},
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionDataSource, Key: "source"},
			{Tag: datasource.SectionText, Key: "label", Label: "Label"},
			{Tag: datasource.SectionValue, Key: "precision", Label: "Decimal places", Default: 1},
			{Tag: datasource.SectionSize, Key: "size", Label: "Card size"},
		},
	},
	{
		Code:        "widget.device_map",
		Name:        "Device Map",
		Description: "Devices plotted by location with status markers",
		Category:    "overview",
		MultiSource: true,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"zoom": map[string]any{"type": "integer", "minimum": 1, "maximum": 20, "default": 12},
			},
		},
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionDataSource, Key: "devices"},
			{Tag: datasource.SectionRange, Key: "zoom", Label: "Zoom", Min: 1, Max: 20, Step: 1, Default: 12},
			{Tag: datasource.SectionBoolean, Key: "cluster", Label: "Cluster markers", Default: true},
		},
	},
	{
		Code: "widget.system_status",
		Name: "System Status",
		NameLocalized: map[string]string{
			"es": "Estado del sistema",
		},
		Description: "Host health indicators",
		DescriptionLocalized: map[string]string{
			"es": "Indicadores de salud del host",
		},
		Category: "status",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"checks": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionDataSource, Key: "metrics"},
			{Tag: datasource.SectionSelect, Key: "layout", Label: "Layout", Options: []datasource.SectionOption{
				{Value: "list", Label: "List"},
				{Value: "grid", Label: "Grid"},
			}, Default: "list"},
		},
	},
	{
		Code:        "widget.agent_monitor",
		Name:        "Agent Monitor",
		Description: "Live execution feed for a backend agent",
		Category:    "agents",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"agent_id"},
			"properties": map[string]any{
				"agent_id": map[string]any{"type": "string", "minLength": 1},
				"limit":    map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": 10},
			},
		},
		Sections: []datasource.ConfigSection{
			{Tag: datasource.SectionText, Key: "agent_id", Label: "Agent"},
			{Tag: datasource.SectionValue, Key: "limit", Label: "Entries", Default: 10},
			{Tag: datasource.SectionBoolean, Key: "show_thinking", Label: "Show thinking events", Default: false},
		},
	},
}

var defaultSeedConfigs = []AddWidgetRequest{
	{
		DefinitionID:  "widget.system_status",
		AreaCode:      "dashboard.main",
		Sources:       datasource.FromSources([]datasource.DataSource{datasource.System("uptime"), datasource.System("memory_usage")}),
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  "widget.gauge",
		AreaCode:      "dashboard.main",
		Configuration: map[string]any{"min": 0, "max": 100},
	},
	{
		DefinitionID:  "widget.agent_monitor",
		AreaCode:      "dashboard.sidebar",
		Configuration: map[string]any{"agent_id": "default", "limit": 10},
	},
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns starter widget configurations.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		copyCfg := cfg
		if cfg.StartAt != nil {
			start := *cfg.StartAt
			copyCfg.StartAt = &start
		}
		if cfg.EndAt != nil {
			end := *cfg.EndAt
			copyCfg.EndAt = &end
		}
		out[i] = copyCfg
	}
	return out
}

// DefaultWidgetVisibility returns a permissive visibility configuration for
// seeds.
func DefaultWidgetVisibility() WidgetVisibility {
	now := time.Now().UTC()
	return WidgetVisibility{
		StartAt: &now,
	}
}
