package reconcile

import "strings"

// KeySeparator joins the parts of a GroupKey and a Key.
const KeySeparator = " | "

// GroupKey identifies one entity within a dimension.
func GroupKey(dimension, refName string) string {
	return strings.TrimSpace(dimension) + KeySeparator + strings.TrimSpace(refName)
}

// FactKey identifies one fact. It is the join key against the exception table.
func FactKey(dimension, refName, attribute, value string) string {
	return strings.Join([]string{
		strings.TrimSpace(dimension),
		strings.TrimSpace(refName),
		strings.TrimSpace(attribute),
		strings.TrimSpace(value),
	}, KeySeparator)
}

// SplitGroupKey splits a GroupKey at its first separator.
func SplitGroupKey(groupKey string) (dimension, refName string) {
	dimension, refName, _ = strings.Cut(groupKey, KeySeparator)
	return dimension, refName
}

// KeyBuilder resolves RefNames and keys facts.
type KeyBuilder struct {
	separator string
}

// NewKeyBuilder creates a KeyBuilder. A non-empty nameSeparator keys entities on
// the part of their name before the first occurrence of the separator.
func NewKeyBuilder(nameSeparator string) *KeyBuilder {
	return &KeyBuilder{separator: nameSeparator}
}

// RefName derives the key name from a literal name.
func (b *KeyBuilder) RefName(name string) string {
	name = strings.TrimSpace(name)
	if b.separator != "" {
		name, _, _ = strings.Cut(name, b.separator)
	}
	return strings.TrimSpace(name)
}

// Build keys every fact and drops exact duplicates. See Key and Dedup.
func (b *KeyBuilder) Build(facts []LongFact) []KeyedFact {
	return Dedup(b.Key(facts))
}

// Key resolves the RefName of every entity (its first Name fact, "" when it has none)
// and populates GroupKey and Key. Stream order is preserved.
func (b *KeyBuilder) Key(facts []LongFact) []KeyedFact {
	refs := make(map[string]string)
	for _, f := range facts {
		if f.Attribute != NameAttribute {
			continue
		}
		if _, ok := refs[f.EntityRef]; !ok {
			refs[f.EntityRef] = b.RefName(f.Value)
		}
	}

	out := make([]KeyedFact, 0, len(facts))
	for _, f := range facts {
		ref := refs[f.EntityRef]
		out = append(out, KeyedFact{
			LongFact: f,
			RefName:  ref,
			GroupKey: GroupKey(f.Dimension, ref),
			Key:      FactKey(f.Dimension, ref, f.Attribute, f.Value),
		})
	}
	return out
}

// Dedup collapses facts with identical Key and GroupKey, keeping the first occurrence.
func Dedup(facts []KeyedFact) []KeyedFact {
	type dedupKey struct{ key, group string }
	seen := make(map[dedupKey]struct{}, len(facts))
	out := make([]KeyedFact, 0, len(facts))
	for _, f := range facts {
		dk := dedupKey{f.Key, f.GroupKey}
		if _, dup := seen[dk]; dup {
			continue
		}
		seen[dk] = struct{}{}
		out = append(out, f)
	}
	return out
}
