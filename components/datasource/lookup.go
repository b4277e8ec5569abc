package datasource

import "strings"

// Fallback metric/command lists used when a device declares a type with no
// catalog definition. Mirrors the behavior expected by selector UIs: every
// device is always selectable, even when its type is unknown.
var (
	fallbackMetrics = []MetricDef{
		{ID: "value", Name: "Value"},
		{ID: "status", Name: "Status"},
		{ID: "battery", Name: "Battery", Unit: "%"},
	}
	fallbackCommands = []CommandDef{
		{ID: "on", Name: "Turn On"},
		{ID: "off", Name: "Turn Off"},
		{ID: "toggle", Name: "Toggle"},
	}
	deviceInfoProperties = []MetricDef{
		{ID: "name", Name: "Name"},
		{ID: "type", Name: "Type"},
		{ID: "firmware", Name: "Firmware"},
		{ID: "last_seen", Name: "Last Seen"},
	}
)

// MetricsForDevice resolves the metrics a device exposes by cross-referencing
// its declared type against the device-type catalog, falling back to the
// built-in list when no definition exists.
func MetricsForDevice(dev Device, types []DeviceType) []MetricDef {
	if def, ok := typeFor(dev, types); ok && len(def.Metrics) > 0 {
		return cloneMetrics(def.Metrics)
	}
	return cloneMetrics(fallbackMetrics)
}

// CommandsForDevice resolves the commands a device accepts, with the same
// fallback behavior as MetricsForDevice.
func CommandsForDevice(dev Device, types []DeviceType) []CommandDef {
	if def, ok := typeFor(dev, types); ok && len(def.Commands) > 0 {
		out := make([]CommandDef, len(def.Commands))
		copy(out, def.Commands)
		return out
	}
	out := make([]CommandDef, len(fallbackCommands))
	copy(out, fallbackCommands)
	return out
}

// DeviceInfoProperties lists the static metadata fields selectable for any
// device.
func DeviceInfoProperties() []MetricDef {
	return cloneMetrics(deviceInfoProperties)
}

// FilterDevices returns devices whose name or id contains the query,
// case-insensitively. An empty query returns the full list.
func FilterDevices(devices []Device, query string) []Device {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]Device, len(devices))
		copy(out, devices)
		return out
	}
	var out []Device
	for _, dev := range devices {
		if strings.Contains(strings.ToLower(dev.Name), query) ||
			strings.Contains(strings.ToLower(dev.ID), query) {
			out = append(out, dev)
		}
	}
	return out
}

func typeFor(dev Device, types []DeviceType) (DeviceType, bool) {
	if dev.Type == "" {
		return DeviceType{}, false
	}
	for _, def := range types {
		if strings.EqualFold(def.ID, dev.Type) {
			return def, true
		}
	}
	return DeviceType{}, false
}

func cloneMetrics(in []MetricDef) []MetricDef {
	out := make([]MetricDef, len(in))
	copy(out, in)
	return out
}
