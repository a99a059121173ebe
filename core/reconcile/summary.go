package reconcile

// Summary contains aggregate counts of a run.
type Summary struct {
	EntitiesA int `json:"entities_a" yaml:"entities_a"`
	EntitiesB int `json:"entities_b" yaml:"entities_b"`
	// SharedEntities counts GroupKeys present on both sides.
	SharedEntities int `json:"shared_entities" yaml:"shared_entities"`
	// EntitiesWithDiscrepancies counts GroupKeys with at least one reported difference.
	EntitiesWithDiscrepancies int `json:"entities_with_discrepancies" yaml:"entities_with_discrepancies"`
	MissingInA                int `json:"missing_in_a" yaml:"missing_in_a"`
	MissingInB                int `json:"missing_in_b" yaml:"missing_in_b"`
	Matches                   int `json:"matches" yaml:"matches"`
	Suppressed                int `json:"suppressed" yaml:"suppressed"`
	Records                   int `json:"records" yaml:"records"`
	Issues                    int `json:"issues" yaml:"issues"`
}

// Summarize counts entities and the records that survived exception filtering.
func Summarize(a, b *AttributeIndex, records []DiscrepancyRecord, suppressed, issues int) Summary {
	s := Summary{
		EntitiesA:  a.Len(),
		EntitiesB:  b.Len(),
		Suppressed: suppressed,
		Records:    len(records),
		Issues:     issues,
	}

	for _, k := range a.Keys() {
		if _, ok := b.Get(k); ok {
			s.SharedEntities++
		}
	}

	withDiff := make(map[string]struct{})
	for _, r := range records {
		switch r.MissingIn {
		case SideA:
			s.MissingInA++
		case SideB:
			s.MissingInB++
		default:
			s.Matches++
			continue
		}
		ref := r.RefName
		if ref == "" {
			ref = r.Name
		}
		withDiff[GroupKey(r.Dimension, ref)] = struct{}{}
	}
	s.EntitiesWithDiscrepancies = len(withDiff)

	return s
}
