package reconcile

import (
	"context"
	"strings"
)

// Side identifies one of the two reconciled sources.
type Side string

const (
	// SideA is the reference side (typically the spreadsheet export).
	SideA Side = "A"
	// SideB is the extract side (typically the archive of delimited files).
	SideB Side = "B"
	// SideNone marks a record that is present and equal on both sides (full-union policy only).
	SideNone Side = ""
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// NameAttribute is the attribute carrying an entity's display name.
const NameAttribute = "Name"

// WideRow is one record of a wide table: an ordered mapping of field name to value.
// Values are stringified at the ingestion boundary, so a WideRow never carries a null marker.
type WideRow struct {
	names  []string
	values map[string]string
}

// NewWideRow creates an empty row with room for n fields.
func NewWideRow(n int) *WideRow {
	return &WideRow{
		names:  make([]string, 0, n),
		values: make(map[string]string, n),
	}
}

// RowFromPairs builds a row from a header and a record. Missing cells become "".
func RowFromPairs(header, cells []string) *WideRow {
	row := NewWideRow(len(header))
	for i, name := range header {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		row.Set(name, value)
	}
	return row
}

// Set assigns a field. An existing field keeps its position.
func (r *WideRow) Set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns a field value and whether the field exists.
func (r *WideRow) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// GetFold is Get with a case-insensitive fallback on the field name.
func (r *WideRow) GetFold(name string) (string, bool) {
	if v, ok := r.values[name]; ok {
		return v, true
	}
	for _, n := range r.names {
		if strings.EqualFold(n, name) {
			return r.values[n], true
		}
	}
	return "", false
}

// Has reports whether the field exists.
func (r *WideRow) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Names returns the field names in order.
func (r *WideRow) Names() []string {
	return r.names
}

// Len returns the number of fields.
func (r *WideRow) Len() int {
	return len(r.names)
}

// LongFact is one (entity, attribute, value) triple in melt form.
type LongFact struct {
	Dimension string `json:"dimension"`
	// EntityRef correlates the facts of one source row during normalization only.
	EntityRef string `json:"entity_ref"`
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// KeyedFact is a LongFact with its resolved RefName and identity keys.
type KeyedFact struct {
	LongFact
	RefName  string `json:"ref_name"`
	GroupKey string `json:"group_key"`
	Key      string `json:"key"`
}

// DiscrepancyRecord is one line of the missing-items report.
type DiscrepancyRecord struct {
	Dimension string `json:"dimension" yaml:"dimension"`
	Name      string `json:"name" yaml:"name"`
	Attribute string `json:"attribute" yaml:"attribute"`
	Value     string `json:"value" yaml:"value"`
	// MissingIn is the side lacking (or disagreeing with) the fact. Empty for matching facts under full-union.
	MissingIn Side     `json:"missing_in" yaml:"missing_in"`
	Comments  []string `json:"comments,omitempty" yaml:"comments,omitempty"`
	Key       string   `json:"key" yaml:"key"`
	// Note carries the cross-join cardinality annotation.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
	// RefName is the name part used in keys; it differs from Name only when a name key separator is configured.
	RefName string `json:"-" yaml:"-"`
}

// ExceptionEntry is one row of the exception table.
type ExceptionEntry struct {
	Key      string   `json:"key"`
	Comments []string `json:"comments"`
	Hide     bool     `json:"hide"`
}

// Unit is one independently readable part of a source: a sheet, an archive entry, a table.
// A failing unit contributes no facts; it never aborts the run.
type Unit struct {
	Label string
	Read  func(ctx context.Context) ([]*WideRow, error)
}

// TabularSource supplies wide rows, split into units.
type TabularSource interface {
	// Name identifies the source in logs and issues.
	Name() string
	// Units lists the readable units. An error means the whole source is unreadable.
	Units(ctx context.Context) ([]Unit, error)
}
