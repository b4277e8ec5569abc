package datasource

import "encoding/json"

// Type discriminates the DataSource union.
type Type string

const (
	TypeDevice           Type = "device"
	TypeTelemetry        Type = "telemetry"
	TypeCommand          Type = "command"
	TypeDeviceInfo       Type = "device-info"
	TypeSystem           Type = "system"
	TypeExtension        Type = "extension"
	TypeExtensionCommand Type = "extension-command"
	TypeStatic           Type = "static"
)

// Fixed defaults re-applied whenever a data source is rebuilt from a selection
// key. Customized transform settings do not survive a key round-trip.
const (
	DefaultTimeRange = 1
	DefaultLimit     = 50
	DefaultAggregate = "raw"
	DefaultRefresh   = 30
)

// DataSource describes where a dashboard widget's value comes from. The set of
// meaningful fields depends on Type; unrelated fields stay zero.
type DataSource struct {
	Type Type `json:"type"`

	DeviceID     string `json:"device_id,omitempty"`
	MetricID     string `json:"metric_id,omitempty"`
	Command      string `json:"command,omitempty"`
	InfoProperty string `json:"info_property,omitempty"`

	SystemMetric string `json:"system_metric,omitempty"`

	ExtensionID     string `json:"extension_id,omitempty"`
	ExtensionMetric string `json:"extension_metric,omitempty"`

	StaticValue string `json:"static_value,omitempty"`

	// Transform/time-window settings for telemetry sources.
	TimeRange int    `json:"time_range,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Aggregate string `json:"aggregate,omitempty"`
	Transform string `json:"transform,omitempty"`

	// Refresh interval in seconds for system/extension sources.
	Refresh int `json:"refresh,omitempty"`
}

// DeviceRef builds a plain device reference.
func DeviceRef(deviceID string) DataSource {
	return DataSource{Type: TypeDevice, DeviceID: deviceID}
}

// Telemetry builds a metric binding with default transform settings.
func Telemetry(deviceID, metricID string) DataSource {
	return DataSource{
		Type:      TypeTelemetry,
		DeviceID:  deviceID,
		MetricID:  metricID,
		TimeRange: DefaultTimeRange,
		Limit:     DefaultLimit,
		Aggregate: DefaultAggregate,
	}
}

// Command builds a device command binding.
func Command(deviceID, command string) DataSource {
	return DataSource{Type: TypeCommand, DeviceID: deviceID, Command: command}
}

// DeviceInfo builds a device metadata binding.
func DeviceInfo(deviceID, property string) DataSource {
	return DataSource{Type: TypeDeviceInfo, DeviceID: deviceID, InfoProperty: property}
}

// System builds a host metric binding with the default refresh interval.
func System(metric string) DataSource {
	return DataSource{Type: TypeSystem, SystemMetric: metric, Refresh: DefaultRefresh}
}

// Extension builds an extension metric binding.
func Extension(extensionID, metric string) DataSource {
	return DataSource{
		Type:            TypeExtension,
		ExtensionID:     extensionID,
		ExtensionMetric: metric,
		Refresh:         DefaultRefresh,
	}
}

// ExtensionCommand builds an extension command binding.
func ExtensionCommand(extensionID, command string) DataSource {
	return DataSource{Type: TypeExtensionCommand, ExtensionID: extensionID, Command: command}
}

// Static builds a constant fallback source.
func Static(value string) DataSource {
	return DataSource{Type: TypeStatic, StaticValue: value}
}

// MergeTransform copies transform/time-window settings from prev when both
// sources target the same entity and leaf property. The selection-key codec is
// deliberately lossy about these fields; callers that track core and transform
// fields separately use this to carry customizations across a rebind.
func (d DataSource) MergeTransform(prev DataSource) DataSource {
	if d.Type != prev.Type {
		return d
	}
	switch d.Type {
	case TypeTelemetry:
		if d.DeviceID != prev.DeviceID || d.MetricID != prev.MetricID {
			return d
		}
		d.TimeRange = prev.TimeRange
		d.Limit = prev.Limit
		d.Aggregate = prev.Aggregate
		d.Transform = prev.Transform
	case TypeSystem:
		if d.SystemMetric != prev.SystemMetric {
			return d
		}
		d.Refresh = prev.Refresh
	case TypeExtension:
		if d.ExtensionID != prev.ExtensionID || d.ExtensionMetric != prev.ExtensionMetric {
			return d
		}
		d.Refresh = prev.Refresh
	}
	return d
}

// EntityID returns the identifier of the device/extension the source targets.
func (d DataSource) EntityID() string {
	switch d.Type {
	case TypeDevice, TypeTelemetry, TypeCommand, TypeDeviceInfo:
		return d.DeviceID
	case TypeExtension, TypeExtensionCommand:
		return d.ExtensionID
	}
	return ""
}

// Property returns the leaf property identifier for the source, if any.
func (d DataSource) Property() string {
	switch d.Type {
	case TypeTelemetry:
		return d.MetricID
	case TypeCommand, TypeExtensionCommand:
		return d.Command
	case TypeDeviceInfo:
		return d.InfoProperty
	case TypeSystem:
		return d.SystemMetric
	case TypeExtension:
		return d.ExtensionMetric
	case TypeStatic:
		return d.StaticValue
	}
	return ""
}

// DataSourceOrList holds either a single data source or an ordered list of
// them. The zero value means "no selection" and marshals to JSON null.
type DataSourceOrList struct {
	single *DataSource
	list   []DataSource
}

// FromSource wraps a single data source.
func FromSource(ds DataSource) DataSourceOrList {
	return DataSourceOrList{single: &ds}
}

// FromSources wraps an ordered list. A nil/empty list yields the zero value.
func FromSources(list []DataSource) DataSourceOrList {
	if len(list) == 0 {
		return DataSourceOrList{}
	}
	copied := make([]DataSource, len(list))
	copy(copied, list)
	return DataSourceOrList{list: copied}
}

// IsZero reports whether no selection is held.
func (l DataSourceOrList) IsZero() bool {
	return l.single == nil && len(l.list) == 0
}

// IsList reports whether the value carries an ordered list.
func (l DataSourceOrList) IsList() bool {
	return l.list != nil
}

// Source returns the single data source when exactly one is held.
func (l DataSourceOrList) Source() (DataSource, bool) {
	if l.single != nil {
		return *l.single, true
	}
	return DataSource{}, false
}

// Sources normalizes the value into a list; a single source becomes a
// one-element list.
func (l DataSourceOrList) Sources() []DataSource {
	if l.single != nil {
		return []DataSource{*l.single}
	}
	out := make([]DataSource, len(l.list))
	copy(out, l.list)
	return out
}

// Len returns the number of sources held.
func (l DataSourceOrList) Len() int {
	if l.single != nil {
		return 1
	}
	return len(l.list)
}

// MarshalJSON emits an object for a single source, an array for a list, and
// null for the zero value.
func (l DataSourceOrList) MarshalJSON() ([]byte, error) {
	if l.single != nil {
		return json.Marshal(*l.single)
	}
	if l.list != nil {
		return json.Marshal(l.list)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts an object, an array, or null.
func (l *DataSourceOrList) UnmarshalJSON(data []byte) error {
	trimmed := string(data)
	if trimmed == "null" {
		*l = DataSourceOrList{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []DataSource
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = FromSources(list)
		return nil
	}
	var single DataSource
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = FromSource(single)
	return nil
}
