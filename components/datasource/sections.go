package datasource

// SectionTag discriminates the ConfigSection union.
type SectionTag string

const (
	SectionValue       SectionTag = "value"
	SectionRange       SectionTag = "range"
	SectionSize        SectionTag = "size"
	SectionColor       SectionTag = "color"
	SectionMultiColor  SectionTag = "multi-color"
	SectionLabel       SectionTag = "label"
	SectionBoolean     SectionTag = "boolean"
	SectionSelect      SectionTag = "select"
	SectionText        SectionTag = "text"
	SectionOrientation SectionTag = "orientation"
	SectionAnimation   SectionTag = "animation"
	SectionDataMapping SectionTag = "data-mapping"
	SectionCustom      SectionTag = "custom"
	// SectionDataSource is declared by widget definitions but never rendered
	// as a form control; the source picker owns it.
	SectionDataSource SectionTag = "data-source"
)

// ConfigSection declares one configurable aspect of a widget. The meaningful
// fields depend on Tag.
type ConfigSection struct {
	Tag     SectionTag      `json:"tag" yaml:"tag"`
	Key     string          `json:"key" yaml:"key"`
	Label   string          `json:"label,omitempty" yaml:"label,omitempty"`
	Min     float64         `json:"min,omitempty" yaml:"min,omitempty"`
	Max     float64         `json:"max,omitempty" yaml:"max,omitempty"`
	Step    float64         `json:"step,omitempty" yaml:"step,omitempty"`
	Options []SectionOption `json:"options,omitempty" yaml:"options,omitempty"`
	Default any             `json:"default,omitempty" yaml:"default,omitempty"`
	Colors  int             `json:"colors,omitempty" yaml:"colors,omitempty"`
	Fields  []ConfigSection `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// SectionOption is one choice of a select/orientation control.
type SectionOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ControlKind identifies the form control a transport should render.
type ControlKind string

const (
	ControlNumber      ControlKind = "number"
	ControlSlider      ControlKind = "slider"
	ControlSize        ControlKind = "size"
	ControlColor       ControlKind = "color"
	ControlColorList   ControlKind = "color-list"
	ControlStatic      ControlKind = "static-label"
	ControlCheckbox    ControlKind = "checkbox"
	ControlDropdown    ControlKind = "dropdown"
	ControlTextInput   ControlKind = "text-input"
	ControlOrientation ControlKind = "orientation"
	ControlGroup       ControlKind = "group"
	ControlMapping     ControlKind = "mapping"
	ControlCustom      ControlKind = "custom"
)

// Control is a renderable form-control descriptor derived from a
// ConfigSection. Transports serialize the tree to JSON as-is.
type Control struct {
	Kind     ControlKind     `json:"kind"`
	Key      string          `json:"key"`
	Label    string          `json:"label,omitempty"`
	Min      float64         `json:"min,omitempty"`
	Max      float64         `json:"max,omitempty"`
	Step     float64         `json:"step,omitempty"`
	Options  []SectionOption `json:"options,omitempty"`
	Default  any             `json:"default,omitempty"`
	Colors   int             `json:"colors,omitempty"`
	Children []Control       `json:"children,omitempty"`
}

// RenderSection converts one section into its control descriptor. Sections
// with the data-source tag or an unknown tag yield nil.
func RenderSection(sec ConfigSection) *Control {
	base := Control{
		Key:     sec.Key,
		Label:   sec.Label,
		Min:     sec.Min,
		Max:     sec.Max,
		Step:    sec.Step,
		Options: sec.Options,
		Default: sec.Default,
		Colors:  sec.Colors,
	}
	switch sec.Tag {
	case SectionValue:
		base.Kind = ControlNumber
	case SectionRange:
		base.Kind = ControlSlider
	case SectionSize:
		base.Kind = ControlSize
	case SectionColor:
		base.Kind = ControlColor
	case SectionMultiColor:
		base.Kind = ControlColorList
		if base.Colors <= 0 {
			base.Colors = 2
		}
	case SectionLabel:
		base.Kind = ControlStatic
	case SectionBoolean:
		base.Kind = ControlCheckbox
	case SectionSelect:
		base.Kind = ControlDropdown
	case SectionText:
		base.Kind = ControlTextInput
	case SectionOrientation:
		base.Kind = ControlOrientation
		if len(base.Options) == 0 {
			base.Options = []SectionOption{
				{Value: "horizontal", Label: "Horizontal"},
				{Value: "vertical", Label: "Vertical"},
			}
		}
	case SectionAnimation:
		base.Kind = ControlGroup
		base.Children = RenderSections(sec.Fields)
	case SectionDataMapping:
		base.Kind = ControlMapping
		base.Children = RenderSections(sec.Fields)
	case SectionCustom:
		base.Kind = ControlCustom
		base.Children = RenderSections(sec.Fields)
	default:
		return nil
	}
	return &base
}

// RenderSections converts an ordered section list into its control tree,
// skipping sections that render nil.
func RenderSections(sections []ConfigSection) []Control {
	var out []Control
	for _, sec := range sections {
		if control := RenderSection(sec); control != nil {
			out = append(out, *control)
		}
	}
	return out
}
