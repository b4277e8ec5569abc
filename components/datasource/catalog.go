package datasource

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Category identifies a selectable data origin shown by selector UIs.
type Category string

const (
	CategoryDeviceMetric     Category = "device-metric"
	CategoryDeviceCommand    Category = "device-command"
	CategoryDeviceInfo       Category = "device-info"
	CategorySystem           Category = "system"
	CategoryExtensionMetric  Category = "extension-metric"
	CategoryExtensionCommand Category = "extension-command"
)

// CategoryDescriptor carries the static display metadata for a category.
type CategoryDescriptor struct {
	ID       Category
	Icon     string
	LabelKey string
	Label    string
}

var categoryDescriptors = []CategoryDescriptor{
	{ID: CategoryDeviceMetric, Icon: "activity", LabelKey: "datasource.category.device_metric", Label: "Device Metrics"},
	{ID: CategoryDeviceCommand, Icon: "terminal", LabelKey: "datasource.category.device_command", Label: "Device Commands"},
	{ID: CategoryDeviceInfo, Icon: "info", LabelKey: "datasource.category.device_info", Label: "Device Info"},
	{ID: CategorySystem, Icon: "cpu", LabelKey: "datasource.category.system", Label: "System Metrics"},
	{ID: CategoryExtensionMetric, Icon: "puzzle", LabelKey: "datasource.category.extension_metric", Label: "Extension Metrics"},
	{ID: CategoryExtensionCommand, Icon: "zap", LabelKey: "datasource.category.extension_command", Label: "Extension Commands"},
}

// Categories returns copies of the built-in category descriptors.
func Categories() []CategoryDescriptor {
	out := make([]CategoryDescriptor, len(categoryDescriptors))
	copy(out, categoryDescriptors)
	return out
}

// LocalizedCategories resolves labels through the provided translate function,
// falling back to the default label when the lookup returns "".
func LocalizedCategories(translate func(key string) string) []CategoryDescriptor {
	out := Categories()
	if translate == nil {
		return out
	}
	for i := range out {
		if label := translate(out[i].LabelKey); label != "" {
			out[i].Label = label
		}
	}
	return out
}

// Device is the directory entry for a physical device.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// MetricDef describes a selectable metric exposed by a device type, extension,
// or the host system.
type MetricDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// CommandDef describes an invokable command.
type CommandDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeviceType declares the metrics/commands available on devices of its kind.
type DeviceType struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Metrics  []MetricDef  `json:"metrics,omitempty"`
	Commands []CommandDef `json:"commands,omitempty"`
}

// ExtensionInfo describes a backend plugin exposing metrics and commands.
type ExtensionInfo struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Metrics  []MetricDef  `json:"metrics,omitempty"`
	Commands []CommandDef `json:"commands,omitempty"`
}

// Entry is one selectable data source in a built catalog.
type Entry struct {
	Key         SelectedItem `json:"key"`
	Category    Category     `json:"category"`
	Source      DataSource   `json:"source"`
	DisplayName string       `json:"display_name"`
	Unit        string       `json:"unit,omitempty"`
}

// CatalogInput carries all data needed to build a catalog. Everything is
// passed explicitly so the build stays pure and testable.
type CatalogInput struct {
	Devices       []Device
	DeviceTypes   []DeviceType
	Extensions    []ExtensionInfo
	SystemMetrics []MetricDef
}

// Catalog is the full set of selectable data sources grouped by category.
type Catalog struct {
	entries []Entry
	byKey   map[SelectedItem]Entry
}

// BuildCatalog assembles a catalog from the provided directories. Duplicate
// keys are dropped and reported through the aggregated error; the catalog is
// still usable when err != nil.
func BuildCatalog(in CatalogInput) (*Catalog, error) {
	c := &Catalog{byKey: make(map[SelectedItem]Entry)}
	var err error

	for _, dev := range in.Devices {
		label := dev.Name
		if label == "" {
			label = dev.ID
		}
		for _, metric := range MetricsForDevice(dev, in.DeviceTypes) {
			err = multierr.Append(err, c.add(Entry{
				Category:    CategoryDeviceMetric,
				Source:      Telemetry(dev.ID, metric.ID),
				DisplayName: label + " / " + metric.Name,
				Unit:        metric.Unit,
			}))
		}
		for _, cmd := range CommandsForDevice(dev, in.DeviceTypes) {
			err = multierr.Append(err, c.add(Entry{
				Category:    CategoryDeviceCommand,
				Source:      Command(dev.ID, cmd.ID),
				DisplayName: label + " / " + cmd.Name,
			}))
		}
		for _, prop := range DeviceInfoProperties() {
			err = multierr.Append(err, c.add(Entry{
				Category:    CategoryDeviceInfo,
				Source:      DeviceInfo(dev.ID, prop.ID),
				DisplayName: label + " / " + prop.Name,
			}))
		}
	}

	for _, metric := range in.SystemMetrics {
		err = multierr.Append(err, c.add(Entry{
			Category:    CategorySystem,
			Source:      System(metric.ID),
			DisplayName: metric.Name,
			Unit:        metric.Unit,
		}))
	}

	for _, ext := range in.Extensions {
		label := ext.Name
		if label == "" {
			label = ext.ID
		}
		for _, metric := range ext.Metrics {
			err = multierr.Append(err, c.add(Entry{
				Category:    CategoryExtensionMetric,
				Source:      Extension(ext.ID, metric.ID),
				DisplayName: label + " / " + metric.Name,
				Unit:        metric.Unit,
			}))
		}
		for _, cmd := range ext.Commands {
			err = multierr.Append(err, c.add(Entry{
				Category:    CategoryExtensionCommand,
				Source:      ExtensionCommand(ext.ID, cmd.ID),
				DisplayName: label + " / " + cmd.Name,
			}))
		}
	}

	return c, err
}

func (c *Catalog) add(entry Entry) error {
	key, ok := EncodeKey(entry.Source)
	if !ok {
		// Partial definitions are dropped without error, matching key codec
		// behavior.
		return nil
	}
	entry.Key = key
	if _, exists := c.byKey[key]; exists {
		return fmt.Errorf("datasource: duplicate catalog entry %s", key)
	}
	c.byKey[key] = entry
	c.entries = append(c.entries, entry)
	return nil
}

// Entries returns all catalog entries in insertion order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByCategory filters entries to one category, preserving order.
func (c *Catalog) ByCategory(cat Category) []Entry {
	var out []Entry
	for _, entry := range c.entries {
		if entry.Category == cat {
			out = append(out, entry)
		}
	}
	return out
}

// Lookup resolves a selection key to its catalog entry.
func (c *Catalog) Lookup(key SelectedItem) (Entry, bool) {
	entry, ok := c.byKey[key]
	return entry, ok
}

// DisplayName resolves a key to its display name, degrading to the raw entity
// id when the referenced entry no longer exists.
func (c *Catalog) DisplayName(key SelectedItem) string {
	if entry, ok := c.byKey[key]; ok {
		return entry.DisplayName
	}
	if src, ok := DecodeKey(key); ok {
		if prop := src.Property(); prop != "" && src.EntityID() != "" {
			return src.EntityID() + " / " + prop
		}
		if id := src.EntityID(); id != "" {
			return id
		}
		return src.Property()
	}
	return strings.TrimSpace(string(key))
}

// Search filters entries whose display name or key contains the query,
// case-insensitively. An empty query returns everything.
func (c *Catalog) Search(query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.Entries()
	}
	var out []Entry
	for _, entry := range c.entries {
		if strings.Contains(strings.ToLower(entry.DisplayName), query) ||
			strings.Contains(strings.ToLower(string(entry.Key)), query) {
			out = append(out, entry)
		}
	}
	return out
}
