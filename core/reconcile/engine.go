package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// ComparisonPolicy selects how two-sided entities are compared.
type ComparisonPolicy string

const (
	// StrictNameMatch compares attributes of entities with a Name on both sides and reports differences only.
	StrictNameMatch ComparisonPolicy = "strict-name-match"
	// NameLiteralMatch additionally requires the literal Name strings to agree before comparing attributes.
	NameLiteralMatch ComparisonPolicy = "name-literal-match"
	// FullUnion reports matching facts as well, with an empty MissingIn.
	FullUnion ComparisonPolicy = "full-union"
)

// ParsePolicy parses a policy name. The empty string selects StrictNameMatch.
func ParsePolicy(s string) (ComparisonPolicy, error) {
	switch p := ComparisonPolicy(strings.TrimSpace(strings.ToLower(s))); p {
	case "":
		return StrictNameMatch, nil
	case StrictNameMatch, NameLiteralMatch, FullUnion:
		return p, nil
	default:
		return "", invalidConfig("unknown comparison policy %q", s)
	}
}

// Cardinality selects how several source rows of one GroupKey are compared.
type Cardinality string

const (
	// CardinalityFirst compares the folded first-wins attributes of each side.
	CardinalityFirst Cardinality = "first"
	// CardinalityCrossJoin compares every pairing of candidate rows and annotates each record.
	CardinalityCrossJoin Cardinality = "cross-join"
)

// ParseCardinality parses a cardinality name. The empty string selects CardinalityFirst.
func ParseCardinality(s string) (Cardinality, error) {
	switch c := Cardinality(strings.TrimSpace(strings.ToLower(s))); c {
	case "":
		return CardinalityFirst, nil
	case CardinalityFirst, CardinalityCrossJoin:
		return c, nil
	default:
		return "", invalidConfig("unknown join cardinality %q", s)
	}
}

// Reconciler compares two attribute indexes.
type Reconciler struct {
	policy          ComparisonPolicy
	cardinality     Cardinality
	equalAsMismatch bool
	active          ActivityFunc
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithCardinality sets the join cardinality policy.
func WithCardinality(c Cardinality) Option {
	return func(r *Reconciler) { r.cardinality = c }
}

// WithEqualAsMismatch reports equal values as a pair of records, like a mismatch.
// It has no effect under FullUnion.
func WithEqualAsMismatch(enabled bool) Option {
	return func(r *Reconciler) { r.equalAsMismatch = enabled }
}

// WithActivity sets the predicate counting active candidates in cross-join notes.
func WithActivity(fn ActivityFunc) Option {
	return func(r *Reconciler) { r.active = fn }
}

// NewReconciler creates a Reconciler for policy.
func NewReconciler(policy ComparisonPolicy, opts ...Option) *Reconciler {
	r := &Reconciler{policy: policy, cardinality: CardinalityFirst}
	for _, opt := range opts {
		opt(r)
	}
	if r.active == nil {
		r.active = func(map[string]string) bool { return true }
	}
	return r
}

// view is one side of a comparison: an entity's folded attributes or one candidate row.
type view struct {
	attrs map[string]string
	order []string
}

// Reconcile visits every GroupKey of the union of a and b exactly once, in sorted
// order, and returns the discrepancy records.
func (r *Reconciler) Reconcile(a, b *AttributeIndex) []DiscrepancyRecord {
	var out []DiscrepancyRecord
	for _, gk := range unionKeys(a, b) {
		ea, inA := a.Get(gk)
		eb, inB := b.Get(gk)
		dimension, refName := SplitGroupKey(gk)

		switch {
		case inA && !inB:
			out = r.appendOneSided(out, dimension, refName, ea, SideB)
		case inB && !inA:
			out = r.appendOneSided(out, dimension, refName, eb, SideA)
		case r.cardinality == CardinalityCrossJoin && len(ea.Candidates) > 0 && len(eb.Candidates) > 0:
			note := r.crossJoinNote(ea.Candidates, eb.Candidates)
			for _, ca := range ea.Candidates {
				for _, cb := range eb.Candidates {
					out = r.compare(out, dimension, refName,
						view{ca.Attributes, ca.Order}, view{cb.Attributes, cb.Order}, note)
				}
			}
		default:
			out = r.compare(out, dimension, refName,
				view{ea.Attributes, ea.Order}, view{eb.Attributes, eb.Order}, "")
		}
	}
	return out
}

func unionKeys(a, b *AttributeIndex) []string {
	seen := make(map[string]struct{}, a.Len()+b.Len())
	keys := make([]string, 0, a.Len()+b.Len())
	for _, x := range []*AttributeIndex{a, b} {
		for _, k := range x.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// appendOneSided reports the present side's Name once. Nameless entities report nothing.
func (r *Reconciler) appendOneSided(out []DiscrepancyRecord, dimension, refName string, e *Entity, missingIn Side) []DiscrepancyRecord {
	name, ok := e.Name()
	if !ok {
		return out
	}
	return append(out, record(dimension, refName, name, NameAttribute, name, missingIn, ""))
}

func (r *Reconciler) compare(out []DiscrepancyRecord, dimension, refName string, a, b view, note string) []DiscrepancyRecord {
	nameA, okA := nameOf(a.attrs)
	nameB, okB := nameOf(b.attrs)

	// A side without a Name is never attribute-compared.
	if !okA || !okB {
		if okA {
			out = append(out, record(dimension, refName, nameA, NameAttribute, nameA, SideB, note))
		}
		if okB {
			out = append(out, record(dimension, refName, nameB, NameAttribute, nameB, SideA, note))
		}
		return out
	}

	if r.policy == NameLiteralMatch && nameA != nameB {
		return append(out,
			record(dimension, refName, nameA, NameAttribute, nameA, SideB, note),
			record(dimension, refName, nameB, NameAttribute, nameB, SideA, note),
		)
	}

	if r.policy == FullUnion {
		out = append(out, record(dimension, refName, nameA, NameAttribute, nameA, SideNone, note))
	}

	for _, attr := range mergedOrder(a.order, b.order) {
		if attr == NameAttribute {
			continue
		}
		va, inA := a.attrs[attr]
		vb, inB := b.attrs[attr]

		switch {
		case inA && !inB:
			out = append(out, record(dimension, refName, nameA, attr, va, SideB, note))
		case inB && !inA:
			out = append(out, record(dimension, refName, nameB, attr, vb, SideA, note))
		case va != vb:
			out = append(out,
				record(dimension, refName, nameA, attr, va, SideB, note),
				record(dimension, refName, nameB, attr, vb, SideA, note),
			)
		case r.policy == FullUnion:
			out = append(out, record(dimension, refName, nameA, attr, va, SideNone, note))
		case r.equalAsMismatch:
			out = append(out,
				record(dimension, refName, nameA, attr, va, SideB, note),
				record(dimension, refName, nameB, attr, vb, SideA, note),
			)
		}
	}
	return out
}

// mergedOrder returns a's attributes followed by those only b has.
func mergedOrder(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, attr := range a {
		seen[attr] = struct{}{}
		out = append(out, attr)
	}
	for _, attr := range b {
		if _, ok := seen[attr]; !ok {
			out = append(out, attr)
		}
	}
	return out
}

func (r *Reconciler) crossJoinNote(a, b []*Candidate) string {
	kind := "many-to-many"
	switch {
	case len(a) == 1 && len(b) == 1:
		kind = "one-to-one"
	case len(a) == 1:
		kind = "one-to-many"
	case len(b) == 1:
		kind = "many-to-one"
	}
	return fmt.Sprintf("%s; candidates A=%d (%d active), B=%d (%d active)",
		kind, len(a), r.countActive(a), len(b), r.countActive(b))
}

func (r *Reconciler) countActive(cs []*Candidate) int {
	n := 0
	for _, c := range cs {
		if r.active(c.Attributes) {
			n++
		}
	}
	return n
}

func record(dimension, refName, name, attribute, value string, missingIn Side, note string) DiscrepancyRecord {
	return DiscrepancyRecord{
		Dimension: dimension,
		Name:      name,
		Attribute: attribute,
		Value:     value,
		MissingIn: missingIn,
		Note:      note,
		RefName:   refName,
	}
}
