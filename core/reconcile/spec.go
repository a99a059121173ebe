package reconcile

import (
	"path"
	"strings"
)

// DimensionPolicy selects where a row's Dimension comes from.
type DimensionPolicy string

const (
	// DimensionFixed uses a constant label for every row.
	DimensionFixed DimensionPolicy = "fixed"
	// DimensionColumn reads the label from a field of each row.
	DimensionColumn DimensionPolicy = "column"
	// DimensionUnit derives the label once per unit from its name (file or sheet).
	DimensionUnit DimensionPolicy = "unit"
)

// DimensionSpec configures Dimension resolution for a source.
type DimensionSpec struct {
	Policy DimensionPolicy `yaml:"policy"`
	// Value is the constant label for DimensionFixed.
	Value string `yaml:"value"`
	// Column is the field holding the label for DimensionColumn.
	Column string `yaml:"column"`
	// StripSuffix is removed from the unit label for DimensionUnit (e.g. "_extract.csv").
	StripSuffix string `yaml:"strip_suffix"`
}

// FromUnit derives a Dimension from a unit label: the configured suffix (or else the
// file extension) is removed, underscores become spaces, and the result is trimmed.
func (d DimensionSpec) FromUnit(label string) string {
	base := path.Base(label)
	if d.StripSuffix != "" && strings.HasSuffix(base, d.StripSuffix) {
		base = strings.TrimSuffix(base, d.StripSuffix)
	} else {
		base = strings.TrimSuffix(base, path.Ext(base))
	}
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}

// ExclusionRule drops a wide row whose Field holds one of Values.
type ExclusionRule struct {
	Field  string   `yaml:"field"`
	Values []string `yaml:"values"`
}

// Rules is the rule configuration for one source.
type Rules struct {
	ExcludeRows       []ExclusionRule   `yaml:"exclude_rows"`
	RenameDimensions  map[string]string `yaml:"rename_dimensions"`
	RenameAttributes  map[string]string `yaml:"rename_attributes"`
	ExcludeDimensions []string          `yaml:"exclude_dimensions"`
	ExcludeAttributes []string          `yaml:"exclude_attributes"`
}

// Merge returns r extended with other. Rename entries in other override r.
func (r Rules) Merge(other Rules) Rules {
	out := Rules{
		ExcludeRows:       append(append([]ExclusionRule{}, r.ExcludeRows...), other.ExcludeRows...),
		ExcludeDimensions: append(append([]string{}, r.ExcludeDimensions...), other.ExcludeDimensions...),
		ExcludeAttributes: append(append([]string{}, r.ExcludeAttributes...), other.ExcludeAttributes...),
		RenameDimensions:  mergeMaps(r.RenameDimensions, other.RenameDimensions),
		RenameAttributes:  mergeMaps(r.RenameAttributes, other.RenameAttributes),
	}
	return out
}

func mergeMaps(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// SourceSpec tells the Normalizer how to read one source.
type SourceSpec struct {
	Dimension DimensionSpec
	// NameField names the field holding the entity name when no "Name" field exists.
	NameField string
	// NamePosition is the 0-based field position used as Name when no "Name" field exists.
	// Nil means unset. NameField and NamePosition are mutually exclusive.
	NamePosition *int
	// NameKeySeparator, when set, keys entities on the part of the name before the first separator.
	NameKeySeparator string
	// CanonicalNumbers rewrites decimal values in reduced plain form; zero-padded codes are kept.
	CanonicalNumbers bool
	Rules            Rules
}

// validate reports contradictory configuration. It never inspects data.
func (s SourceSpec) validate(side Side) error {
	switch s.Dimension.Policy {
	case DimensionFixed:
		if strings.TrimSpace(s.Dimension.Value) == "" {
			return invalidConfig("side %s: fixed dimension requires a value", side)
		}
	case DimensionColumn:
		if strings.TrimSpace(s.Dimension.Column) == "" {
			return invalidConfig("side %s: column dimension requires a column", side)
		}
	case DimensionUnit:
	default:
		return invalidConfig("side %s: unknown dimension policy %q", side, s.Dimension.Policy)
	}
	if s.NameField != "" && s.NamePosition != nil {
		return invalidConfig("side %s: name_field and name_position are mutually exclusive", side)
	}
	if s.NamePosition != nil && *s.NamePosition < 0 {
		return invalidConfig("side %s: name_position must not be negative", side)
	}
	if s.Dimension.Policy == DimensionColumn && s.NameField != "" &&
		strings.TrimSpace(s.NameField) == strings.TrimSpace(s.Dimension.Column) {
		return invalidConfig("side %s: name_field %q is also the dimension column", side, s.NameField)
	}
	return nil
}
