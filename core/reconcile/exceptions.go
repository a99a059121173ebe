package reconcile

import "strings"

// ExceptionTable is the read-only lookup of exception entries by Key.
type ExceptionTable struct {
	entries map[string]ExceptionEntry
}

// NewExceptionTable indexes entries by trimmed Key. Entries without a Key are
// ignored and the first entry of a duplicated Key wins.
func NewExceptionTable(entries []ExceptionEntry) *ExceptionTable {
	t := &ExceptionTable{entries: make(map[string]ExceptionEntry, len(entries))}
	for _, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			continue
		}
		if _, ok := t.entries[key]; ok {
			continue
		}
		e.Key = key
		t.entries[key] = e
	}
	return t
}

// Len returns the number of entries. A nil table is empty.
func (t *ExceptionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the entry for key.
func (t *ExceptionTable) Lookup(key string) (ExceptionEntry, bool) {
	if t == nil {
		return ExceptionEntry{}, false
	}
	e, ok := t.entries[strings.TrimSpace(key)]
	return e, ok
}

// Apply sets every record's Key, drops records whose entry is hidden and copies
// non-empty entry comments onto the survivors position by position. A nil or
// empty table suppresses nothing.
func (t *ExceptionTable) Apply(records []DiscrepancyRecord) ([]DiscrepancyRecord, int) {
	kept := make([]DiscrepancyRecord, 0, len(records))
	suppressed := 0
	for _, rec := range records {
		ref := rec.RefName
		if ref == "" {
			ref = rec.Name
		}
		rec.Key = FactKey(rec.Dimension, ref, rec.Attribute, rec.Value)

		entry, ok := t.Lookup(rec.Key)
		if !ok {
			kept = append(kept, rec)
			continue
		}
		if entry.Hide {
			suppressed++
			continue
		}
		for i, c := range entry.Comments {
			if strings.TrimSpace(c) == "" {
				continue
			}
			for len(rec.Comments) <= i {
				rec.Comments = append(rec.Comments, "")
			}
			rec.Comments[i] = c
		}
		kept = append(kept, rec)
	}
	return kept, suppressed
}
