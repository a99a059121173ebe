package reconcile

import (
	"context"
	"errors"
)

// memSource is an in-memory TabularSource.
type memSource struct {
	name  string
	units []Unit
	err   error
}

func (s memSource) Name() string { return s.name }

func (s memSource) Units(context.Context) ([]Unit, error) { return s.units, s.err }

func rowsUnit(label string, header []string, records ...[]string) Unit {
	return Unit{
		Label: label,
		Read: func(context.Context) ([]*WideRow, error) {
			rows := make([]*WideRow, 0, len(records))
			for _, rec := range records {
				rows = append(rows, RowFromPairs(header, rec))
			}
			return rows, nil
		},
	}
}

func failingUnit(label string) Unit {
	return Unit{
		Label: label,
		Read: func(context.Context) ([]*WideRow, error) {
			return nil, errors.New("corrupt entry")
		},
	}
}

func fact(dimension, ref, attribute, value string) LongFact {
	return LongFact{Dimension: dimension, EntityRef: ref, Attribute: attribute, Value: value}
}

// indexOf keys, deduplicates and folds facts, attaching candidate rows.
func indexOf(facts ...LongFact) *AttributeIndex {
	keyed := NewKeyBuilder("").Key(facts)
	x := BuildIndex(Dedup(keyed))
	x.AttachCandidates(keyed)
	return x
}

func fixedSpec(dimension string) SourceSpec {
	return SourceSpec{Dimension: DimensionSpec{Policy: DimensionFixed, Value: dimension}}
}
