package reconcile

// Candidate is one source row folded into an entity. Cross-join reconciliation
// compares candidates pairwise instead of the folded attributes.
type Candidate struct {
	EntityRef  string
	Attributes map[string]string
	Order      []string
}

// Entity is the folded view of one GroupKey within one source.
type Entity struct {
	GroupKey  string
	Dimension string
	RefName   string
	// Attributes holds the first value seen for each attribute.
	Attributes map[string]string
	// Order lists attributes in first-seen order.
	Order      []string
	Candidates []*Candidate
}

// Name returns the entity's Name attribute. An empty Name counts as absent.
func (e *Entity) Name() (string, bool) {
	return nameOf(e.Attributes)
}

func nameOf(attrs map[string]string) (string, bool) {
	v, ok := attrs[NameAttribute]
	return v, ok && v != ""
}

// AttributeIndex maps GroupKey to entity for one source.
type AttributeIndex struct {
	entities map[string]*Entity
	keys     []string
}

// BuildIndex folds deduplicated facts. For a repeated attribute of the same
// GroupKey the first value in stream order wins and later ones are dropped.
func BuildIndex(facts []KeyedFact) *AttributeIndex {
	x := &AttributeIndex{entities: make(map[string]*Entity)}
	for _, f := range facts {
		e := x.entity(f)
		if _, ok := e.Attributes[f.Attribute]; ok {
			continue
		}
		e.Attributes[f.Attribute] = f.Value
		e.Order = append(e.Order, f.Attribute)
	}

	// Implicit Name for entities keyed on a name part without a Name fact.
	for _, e := range x.entities {
		if _, ok := e.Attributes[NameAttribute]; !ok && e.RefName != "" {
			e.Attributes[NameAttribute] = e.RefName
			e.Order = append([]string{NameAttribute}, e.Order...)
		}
	}
	return x
}

func (x *AttributeIndex) entity(f KeyedFact) *Entity {
	if e, ok := x.entities[f.GroupKey]; ok {
		return e
	}
	dimension, _ := SplitGroupKey(f.GroupKey)
	e := &Entity{
		GroupKey:   f.GroupKey,
		Dimension:  dimension,
		RefName:    f.RefName,
		Attributes: make(map[string]string),
	}
	x.entities[f.GroupKey] = e
	x.keys = append(x.keys, f.GroupKey)
	return e
}

// AttachCandidates records the source rows of every entity from the keyed,
// not yet deduplicated, fact stream. Facts for unknown GroupKeys are ignored.
func (x *AttributeIndex) AttachCandidates(facts []KeyedFact) {
	byRef := make(map[string]*Candidate)
	for _, f := range facts {
		e, ok := x.entities[f.GroupKey]
		if !ok {
			continue
		}
		c, ok := byRef[f.EntityRef]
		if !ok {
			c = &Candidate{EntityRef: f.EntityRef, Attributes: make(map[string]string)}
			byRef[f.EntityRef] = c
			e.Candidates = append(e.Candidates, c)
		}
		if _, seen := c.Attributes[f.Attribute]; seen {
			continue
		}
		c.Attributes[f.Attribute] = f.Value
		c.Order = append(c.Order, f.Attribute)
	}

	for _, e := range x.entities {
		for _, c := range e.Candidates {
			if _, ok := c.Attributes[NameAttribute]; !ok && e.RefName != "" {
				c.Attributes[NameAttribute] = e.RefName
				c.Order = append([]string{NameAttribute}, c.Order...)
			}
		}
	}
}

// Get returns the entity for a GroupKey.
func (x *AttributeIndex) Get(groupKey string) (*Entity, bool) {
	e, ok := x.entities[groupKey]
	return e, ok
}

// Keys returns GroupKeys in first-seen order.
func (x *AttributeIndex) Keys() []string {
	return x.keys
}

// Len returns the number of entities.
func (x *AttributeIndex) Len() int {
	return len(x.keys)
}

// Snapshot copies the folded attributes of every entity.
func (x *AttributeIndex) Snapshot() map[string]map[string]string {
	out := make(map[string]map[string]string, len(x.entities))
	for k, e := range x.entities {
		attrs := make(map[string]string, len(e.Attributes))
		for a, v := range e.Attributes {
			attrs[a] = v
		}
		out[k] = attrs
	}
	return out
}
