package reconcile

import (
	"sort"
	"strings"
)

// RuleEngine applies row exclusion, renaming and fact exclusion for one source.
// Row exclusion runs on wide rows before melting; renaming runs before fact exclusion
// so exclusion lists match final names.
type RuleEngine struct {
	rows        []rowRule
	renameDims  map[string]string
	renameAttrs map[string]string
	excludeDims map[string]struct{}
	excludeAttr map[string]struct{}
}

type rowRule struct {
	field  string
	values []string
}

// NewRuleEngine compiles rules. Names and values are compared after trimming.
func NewRuleEngine(r Rules) *RuleEngine {
	e := &RuleEngine{
		renameDims:  trimMap(r.RenameDimensions),
		renameAttrs: trimMap(r.RenameAttributes),
		excludeDims: toSet(r.ExcludeDimensions),
		excludeAttr: toSet(r.ExcludeAttributes),
	}
	for _, rule := range r.ExcludeRows {
		e.rows = append(e.rows, rowRule{
			field:  strings.TrimSpace(rule.Field),
			values: rule.Values,
		})
	}
	return e
}

// FilterRows drops rows matching any exclusion rule. Cells and rule values are
// both passed through clean before comparison (nil means trim only), so a rule
// matches the value the fact will carry. Rules naming a field that no row of the
// unit has are reported and otherwise ignored.
func (e *RuleEngine) FilterRows(source, unit string, rows []*WideRow, clean func(string) string) ([]*WideRow, []Issue) {
	if len(e.rows) == 0 || len(rows) == 0 {
		return rows, nil
	}
	if clean == nil {
		clean = strings.TrimSpace
	}

	var issues []Issue
	active := make([]activeRule, 0, len(e.rows))
	for _, rule := range e.rows {
		if !rows[0].Has(rule.field) {
			issues = append(issues, Issue{
				Kind:    IssueConfigReferenceMissing,
				Source:  source,
				Unit:    unit,
				Field:   rule.field,
				Rule:    "exclude_rows",
				Message: "row exclusion field not found, rule ignored",
			})
			continue
		}
		values := make(map[string]struct{}, len(rule.values))
		for _, v := range rule.values {
			values[clean(v)] = struct{}{}
		}
		active = append(active, activeRule{field: rule.field, values: values})
	}

	kept := make([]*WideRow, 0, len(rows))
	for _, row := range rows {
		if !matchesAny(row, active, clean) {
			kept = append(kept, row)
		}
	}
	return kept, issues
}

type activeRule struct {
	field  string
	values map[string]struct{}
}

func matchesAny(row *WideRow, rules []activeRule, clean func(string) string) bool {
	for _, rule := range rules {
		v, ok := row.Get(rule.field)
		if !ok {
			continue
		}
		if _, hit := rule.values[clean(v)]; hit {
			return true
		}
	}
	return false
}

// Apply renames dimensions and attributes, then drops facts whose dimension or
// attribute is excluded. Rename and exclusion entries that matched nothing are reported.
func (e *RuleEngine) Apply(source string, facts []LongFact) ([]LongFact, []Issue) {
	usedDims := make(map[string]bool)
	usedAttrs := make(map[string]bool)
	usedExDims := make(map[string]bool)
	usedExAttrs := make(map[string]bool)

	out := make([]LongFact, 0, len(facts))
	for _, f := range facts {
		if to, ok := e.renameDims[f.Dimension]; ok {
			usedDims[f.Dimension] = true
			f.Dimension = to
		}
		if to, ok := e.renameAttrs[f.Attribute]; ok {
			usedAttrs[f.Attribute] = true
			f.Attribute = to
		}
		if _, ok := e.excludeDims[f.Dimension]; ok {
			usedExDims[f.Dimension] = true
			continue
		}
		if _, ok := e.excludeAttr[f.Attribute]; ok {
			usedExAttrs[f.Attribute] = true
			continue
		}
		out = append(out, f)
	}

	var issues []Issue
	issues = appendUnused(issues, source, "rename_dimensions", keysOf(e.renameDims), usedDims)
	issues = appendUnused(issues, source, "rename_attributes", keysOf(e.renameAttrs), usedAttrs)
	issues = appendUnused(issues, source, "exclude_dimensions", keysOf(e.excludeDims), usedExDims)
	issues = appendUnused(issues, source, "exclude_attributes", keysOf(e.excludeAttr), usedExAttrs)
	return out, issues
}

func appendUnused(issues []Issue, source, rule string, names []string, used map[string]bool) []Issue {
	sort.Strings(names)
	for _, name := range names {
		if used[name] {
			continue
		}
		issues = append(issues, Issue{
			Kind:    IssueConfigReferenceMissing,
			Source:  source,
			Field:   name,
			Rule:    rule,
			Message: "rule entry matched nothing",
		})
	}
	return issues
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func trimMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.TrimSpace(v)] = struct{}{}
	}
	return out
}
