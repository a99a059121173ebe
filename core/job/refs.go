package job

import "sheet-reconciler/core/reconcile"

// SourceRef is one location a job reads.
type SourceRef struct {
	// Role is "sources.a", "sources.b" or "exceptions".
	Role     string `json:"role"`
	Kind     Kind   `json:"kind"`
	Location string `json:"location"`
	// Require lists the columns a table source must have.
	Require []string `json:"require,omitempty"`
}

// SourceRefs lists the locations the job reads. The database exception table is
// not listed.
func (d *Definition) SourceRefs() []SourceRef {
	refs := []SourceRef{
		d.Sources.A.ref("sources.a"),
		d.Sources.B.ref("sources.b"),
	}
	if e := d.Exceptions; e != nil && !e.Database {
		refs = append(refs, SourceRef{Role: "exceptions", Kind: e.kind(), Location: e.Location})
	}
	return refs
}

func (s SourceDef) ref(role string) SourceRef {
	r := SourceRef{Role: role, Kind: s.kind(), Location: s.Location}
	if r.Kind != KindTable {
		return r
	}
	if s.NameField != "" {
		r.Require = append(r.Require, s.NameField)
	}
	if s.Dimension.Policy == reconcile.DimensionColumn && s.Dimension.Column != "" {
		r.Require = append(r.Require, s.Dimension.Column)
	}
	return r
}
