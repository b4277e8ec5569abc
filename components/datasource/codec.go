package datasource

import "strings"

// SelectedItem is the transient string encoding of a selection used by
// selector UI state: "category:entityId:property" (plain device references use
// the two-segment "device:id" form). Keys are never persisted.
type SelectedItem string

const keySeparator = ":"

// Key prefixes. Device references are distinguished from three-segment
// metric/command keys purely by prefix literal, not by arity.
const (
	keyPrefixDevice           = "device"
	keyPrefixDeviceMetric     = "device-metric"
	keyPrefixDeviceCommand    = "device-command"
	keyPrefixDeviceInfo       = "device-info"
	keyPrefixSystem           = "system"
	keyPrefixExtensionMetric  = "extension-metric"
	keyPrefixExtensionCommand = "extension-command"
	keyPrefixStatic           = "static"
)

// EncodeKey converts a data source into its selection key. Unrecognized or
// partial variants report ok=false and are dropped by callers.
func EncodeKey(src DataSource) (SelectedItem, bool) {
	switch src.Type {
	case TypeDevice:
		if src.DeviceID == "" {
			return "", false
		}
		return joinKey(keyPrefixDevice, src.DeviceID), true
	case TypeTelemetry:
		if src.DeviceID == "" || src.MetricID == "" {
			return "", false
		}
		return joinKey(keyPrefixDeviceMetric, src.DeviceID, src.MetricID), true
	case TypeCommand:
		if src.DeviceID == "" || src.Command == "" {
			return "", false
		}
		return joinKey(keyPrefixDeviceCommand, src.DeviceID, src.Command), true
	case TypeDeviceInfo:
		if src.DeviceID == "" || src.InfoProperty == "" {
			return "", false
		}
		return joinKey(keyPrefixDeviceInfo, src.DeviceID, src.InfoProperty), true
	case TypeSystem:
		if src.SystemMetric == "" {
			return "", false
		}
		return joinKey(keyPrefixSystem, src.SystemMetric), true
	case TypeExtension:
		if src.ExtensionID == "" || src.ExtensionMetric == "" {
			return "", false
		}
		return joinKey(keyPrefixExtensionMetric, src.ExtensionID, src.ExtensionMetric), true
	case TypeExtensionCommand:
		if src.ExtensionID == "" || src.Command == "" {
			return "", false
		}
		return joinKey(keyPrefixExtensionCommand, src.ExtensionID, src.Command), true
	case TypeStatic:
		if src.StaticValue == "" {
			return "", false
		}
		return joinKey(keyPrefixStatic, src.StaticValue), true
	}
	return "", false
}

// DecodeKey rebuilds a data source from its selection key. Transform and
// refresh settings are reset to fixed defaults; a malformed key with the wrong
// segment count for its prefix yields empty fields rather than an error.
// Unknown prefixes report ok=false. Only the first two separators split: the
// trailing segment keeps any embedded separators, so static values and system
// metrics containing ":" survive the round trip.
func DecodeKey(item SelectedItem) (DataSource, bool) {
	prefix, rest, _ := strings.Cut(string(item), keySeparator)
	switch prefix {
	case keyPrefixDevice:
		return DeviceRef(rest), true
	case keyPrefixSystem:
		return System(rest), true
	case keyPrefixStatic:
		return Static(rest), true
	}
	entity, property, _ := strings.Cut(rest, keySeparator)
	switch prefix {
	case keyPrefixDeviceMetric:
		return Telemetry(entity, property), true
	case keyPrefixDeviceCommand:
		return Command(entity, property), true
	case keyPrefixDeviceInfo:
		return DeviceInfo(entity, property), true
	case keyPrefixExtensionMetric:
		return Extension(entity, property), true
	case keyPrefixExtensionCommand:
		return ExtensionCommand(entity, property), true
	}
	return DataSource{}, false
}

// SelectedItems derives the selection keys for a data source value, one key
// per recognized variant. Unrecognized/partial variants are silently dropped.
// A zero value yields an empty set.
func SelectedItems(ds DataSourceOrList) []SelectedItem {
	sources := ds.Sources()
	items := make([]SelectedItem, 0, len(sources))
	for _, src := range sources {
		if key, ok := EncodeKey(src); ok {
			items = append(items, key)
		}
	}
	return items
}

// DataSourceFromItems rebuilds a data source value from selection keys. With
// multiple=false and exactly one valid key the result is a single source;
// otherwise it is a list. Unknown keys map to the zero value in single mode
// and are skipped in multi mode. Transform fields come back as defaults.
func DataSourceFromItems(items []SelectedItem, multiple bool) DataSourceOrList {
	if !multiple && len(items) == 1 {
		src, ok := DecodeKey(items[0])
		if !ok {
			return DataSourceOrList{}
		}
		return FromSource(src)
	}
	list := make([]DataSource, 0, len(items))
	for _, item := range items {
		if src, ok := DecodeKey(item); ok {
			list = append(list, src)
		}
	}
	return FromSources(list)
}

// CategoryOf reports the selectable category a key belongs to.
func CategoryOf(item SelectedItem) (Category, bool) {
	prefix, _, _ := strings.Cut(string(item), keySeparator)
	switch prefix {
	case keyPrefixDeviceMetric:
		return CategoryDeviceMetric, true
	case keyPrefixDeviceCommand:
		return CategoryDeviceCommand, true
	case keyPrefixDeviceInfo:
		return CategoryDeviceInfo, true
	case keyPrefixSystem:
		return CategorySystem, true
	case keyPrefixExtensionMetric:
		return CategoryExtensionMetric, true
	case keyPrefixExtensionCommand:
		return CategoryExtensionCommand, true
	}
	return "", false
}

func joinKey(parts ...string) SelectedItem {
	return SelectedItem(strings.Join(parts, keySeparator))
}
