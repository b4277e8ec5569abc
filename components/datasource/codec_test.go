package datasource

import (
	"encoding/json"
	"testing"
)

func TestEncodeKeyCommandExample(t *testing.T) {
	key, ok := EncodeKey(Command("d1", "toggle"))
	if !ok {
		t.Fatalf("EncodeKey reported not ok")
	}
	if key != "device-command:d1:toggle" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestEncodeKeyAllVariants(t *testing.T) {
	cases := []struct {
		name string
		src  DataSource
		want SelectedItem
	}{
		{"device", DeviceRef("d1"), "device:d1"},
		{"telemetry", Telemetry("d1", "temperature"), "device-metric:d1:temperature"},
		{"command", Command("d1", "toggle"), "device-command:d1:toggle"},
		{"device info", DeviceInfo("d1", "firmware"), "device-info:d1:firmware"},
		{"system", System("cpu_usage"), "system:cpu_usage"},
		{"extension metric", Extension("weather", "outdoor_temp"), "extension-metric:weather:outdoor_temp"},
		{"extension command", ExtensionCommand("weather", "refresh"), "extension-command:weather:refresh"},
		{"static", Static("42"), "static:42"},
	}
	for _, tc := range cases {
		key, ok := EncodeKey(tc.src)
		if !ok {
			t.Fatalf("%s: EncodeKey reported not ok", tc.name)
		}
		if key != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, key, tc.want)
		}
	}
}

func TestEncodeKeyPartialVariantsDropped(t *testing.T) {
	cases := []DataSource{
		{Type: TypeDevice},
		{Type: TypeTelemetry, DeviceID: "d1"},
		{Type: TypeCommand, Command: "toggle"},
		{Type: TypeExtension, ExtensionID: "weather"},
		{Type: TypeStatic},
		{Type: Type("bogus")},
		{},
	}
	for _, src := range cases {
		if key, ok := EncodeKey(src); ok {
			t.Fatalf("expected partial %v to be dropped, got %q", src.Type, key)
		}
	}
}

func TestDecodeKeyRoundTripPreservesIdentity(t *testing.T) {
	sources := []DataSource{
		DeviceRef("d1"),
		Telemetry("d1", "temperature"),
		Command("d1", "toggle"),
		DeviceInfo("d1", "firmware"),
		System("cpu_usage"),
		Extension("weather", "outdoor_temp"),
		ExtensionCommand("weather", "refresh"),
		Static("42"),
	}
	for _, src := range sources {
		key, ok := EncodeKey(src)
		if !ok {
			t.Fatalf("EncodeKey(%v) not ok", src.Type)
		}
		got, ok := DecodeKey(key)
		if !ok {
			t.Fatalf("DecodeKey(%q) not ok", key)
		}
		if got != src {
			t.Fatalf("round trip mismatch for %q: got %#v want %#v", key, got, src)
		}
	}
}

func TestDecodeKeyResetsTransformSettings(t *testing.T) {
	src := Telemetry("d1", "temperature")
	src.TimeRange = 24
	src.Limit = 500
	src.Aggregate = "avg"
	src.Transform = "round:1"

	key, _ := EncodeKey(src)
	got, ok := DecodeKey(key)
	if !ok {
		t.Fatalf("DecodeKey(%q) not ok", key)
	}
	if got.TimeRange != DefaultTimeRange || got.Limit != DefaultLimit || got.Aggregate != DefaultAggregate {
		t.Fatalf("transform settings not reset: %#v", got)
	}
	if got.Transform != "" {
		t.Fatalf("transform expression survived round trip: %q", got.Transform)
	}
}

func TestDecodeKeyMalformedArityYieldsEmptyFields(t *testing.T) {
	got, ok := DecodeKey("device-metric")
	if !ok {
		t.Fatalf("known prefix should decode")
	}
	if got.Type != TypeTelemetry || got.DeviceID != "" || got.MetricID != "" {
		t.Fatalf("expected empty fields, got %#v", got)
	}

	got, ok = DecodeKey("system")
	if !ok || got.SystemMetric != "" {
		t.Fatalf("expected empty system metric, got %#v ok=%v", got, ok)
	}
}

func TestDecodeKeyKeepsSeparatorInTrailingSegment(t *testing.T) {
	sources := []DataSource{
		Static("lat:lon"),
		DeviceRef("bus:7"),
		System("disk:/var"),
		Telemetry("d1", "ns:temperature"),
		Command("d1", "set:mode"),
	}
	for _, src := range sources {
		key, ok := EncodeKey(src)
		if !ok {
			t.Fatalf("EncodeKey(%v) not ok", src.Type)
		}
		got, ok := DecodeKey(key)
		if !ok {
			t.Fatalf("DecodeKey(%q) not ok", key)
		}
		if got != src {
			t.Fatalf("embedded separator lost for %q: got %#v want %#v", key, got, src)
		}
	}
}

func TestDecodeKeyUnknownPrefix(t *testing.T) {
	if _, ok := DecodeKey("mystery:d1:x"); ok {
		t.Fatalf("unknown prefix should not decode")
	}
	if _, ok := DecodeKey(""); ok {
		t.Fatalf("empty key should not decode")
	}
}

func TestSelectedItemsZeroValueYieldsEmptySet(t *testing.T) {
	if items := SelectedItems(DataSourceOrList{}); len(items) != 0 {
		t.Fatalf("expected empty set, got %v", items)
	}
}

func TestSelectedItemsSkipsInvalidEntries(t *testing.T) {
	items := SelectedItems(FromSources([]DataSource{
		Telemetry("d1", "temperature"),
		{Type: TypeTelemetry},
		System("cpu_usage"),
	}))
	want := []SelectedItem{"device-metric:d1:temperature", "system:cpu_usage"}
	if len(items) != len(want) {
		t.Fatalf("got %v want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("got %v want %v", items, want)
		}
	}
}

func TestDataSourceFromItemsSingleMode(t *testing.T) {
	ds := DataSourceFromItems([]SelectedItem{"device-metric:d1:temperature"}, false)
	src, ok := ds.Source()
	if !ok {
		t.Fatalf("expected single source, got %#v", ds)
	}
	if src != Telemetry("d1", "temperature") {
		t.Fatalf("unexpected source %#v", src)
	}

	if ds := DataSourceFromItems([]SelectedItem{"mystery:d1:x"}, false); !ds.IsZero() {
		t.Fatalf("invalid key in single mode should yield zero value, got %#v", ds)
	}
	if ds := DataSourceFromItems(nil, false); !ds.IsZero() {
		t.Fatalf("empty selection in single mode should yield zero value")
	}
}

func TestDataSourceFromItemsMultiMode(t *testing.T) {
	ds := DataSourceFromItems([]SelectedItem{
		"device-metric:d1:temperature",
		"mystery:skip:me",
		"system:cpu_usage",
	}, true)
	if !ds.IsList() {
		t.Fatalf("expected list, got %#v", ds)
	}
	sources := ds.Sources()
	if len(sources) != 2 {
		t.Fatalf("expected invalid key skipped, got %d sources", len(sources))
	}
	if sources[0].MetricID != "temperature" || sources[1].SystemMetric != "cpu_usage" {
		t.Fatalf("unexpected sources %#v", sources)
	}
}

func TestCategoryOf(t *testing.T) {
	cases := map[SelectedItem]Category{
		"device-metric:d1:temperature":     CategoryDeviceMetric,
		"device-command:d1:toggle":         CategoryDeviceCommand,
		"device-info:d1:firmware":          CategoryDeviceInfo,
		"system:cpu_usage":                 CategorySystem,
		"extension-metric:weather:temp":    CategoryExtensionMetric,
		"extension-command:weather:reload": CategoryExtensionCommand,
	}
	for key, want := range cases {
		got, ok := CategoryOf(key)
		if !ok || got != want {
			t.Fatalf("CategoryOf(%q) = %q, %v; want %q", key, got, ok, want)
		}
	}
	if _, ok := CategoryOf("static:42"); ok {
		t.Fatalf("static keys carry no selector category")
	}
}

func TestDataSourceOrListJSON(t *testing.T) {
	single := FromSource(Telemetry("d1", "temperature"))
	data, err := json.Marshal(single)
	if err != nil {
		t.Fatalf("marshal single: %v", err)
	}
	var back DataSourceOrList
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal single: %v", err)
	}
	if src, ok := back.Source(); !ok || src.MetricID != "temperature" {
		t.Fatalf("single did not survive JSON: %#v", back)
	}

	list := FromSources([]DataSource{System("cpu_usage"), Static("42")})
	data, err = json.Marshal(list)
	if err != nil {
		t.Fatalf("marshal list: %v", err)
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if !back.IsList() || back.Len() != 2 {
		t.Fatalf("list did not survive JSON: %#v", back)
	}

	data, err = json.Marshal(DataSourceOrList{})
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("zero value should marshal to null, got %s", data)
	}
	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !back.IsZero() {
		t.Fatalf("null should decode to zero value")
	}
}

func TestMergeTransformCarriesSettingsAcrossRebind(t *testing.T) {
	prev := Telemetry("d1", "temperature")
	prev.TimeRange = 24
	prev.Limit = 500
	prev.Aggregate = "avg"
	prev.Transform = "round:1"

	rebound := Telemetry("d1", "temperature").MergeTransform(prev)
	if rebound.TimeRange != 24 || rebound.Limit != 500 || rebound.Aggregate != "avg" || rebound.Transform != "round:1" {
		t.Fatalf("settings not carried: %#v", rebound)
	}

	other := Telemetry("d1", "humidity").MergeTransform(prev)
	if other.TimeRange != DefaultTimeRange || other.Aggregate != DefaultAggregate {
		t.Fatalf("settings leaked across different metric: %#v", other)
	}
}
