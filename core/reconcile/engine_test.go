package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(dimension, name, attribute, value string, missingIn Side) DiscrepancyRecord {
	return DiscrepancyRecord{
		Dimension: dimension,
		Name:      name,
		Attribute: attribute,
		Value:     value,
		MissingIn: missingIn,
		RefName:   name,
	}
}

// TestReconcile_MissingEntity covers an entity present on one side only.
func TestReconcile_MissingEntity(t *testing.T) {
	a := indexOf(
		fact("Region", "0:0", "Name", "East"),
		fact("Region", "0:0", "Code", "100"),
	)
	b := indexOf()

	records := NewReconciler(StrictNameMatch).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		rec("Region", "East", "Name", "East", SideB),
	}, records)

	records = NewReconciler(StrictNameMatch).Reconcile(b, a)
	assert.Equal(t, []DiscrepancyRecord{
		rec("Region", "East", "Name", "East", SideA),
	}, records)
}

func TestReconcile_AttributeMismatch(t *testing.T) {
	a := indexOf(
		fact("Region", "0:0", "Name", "West"),
		fact("Region", "0:0", "Status", "Active"),
	)
	b := indexOf(
		fact("Region", "0:0", "Name", "West"),
		fact("Region", "0:0", "Status", "Inactive"),
	)

	records := NewReconciler(StrictNameMatch).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		rec("Region", "West", "Status", "Active", SideB),
		rec("Region", "West", "Status", "Inactive", SideA),
	}, records)
}

func TestReconcile_AttributeOnOneSide(t *testing.T) {
	a := indexOf(
		fact("Region", "0:0", "Name", "North"),
		fact("Region", "0:0", "Owner", "Alice"),
	)
	b := indexOf(
		fact("Region", "0:0", "Name", "North"),
		fact("Region", "0:0", "Manager", "Bob"),
	)

	records := NewReconciler(StrictNameMatch).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		rec("Region", "North", "Owner", "Alice", SideB),
		rec("Region", "North", "Manager", "Bob", SideA),
	}, records)
}

func TestReconcile_IdenticalIndexesProduceNothing(t *testing.T) {
	facts := []LongFact{
		fact("Region", "0:0", "Name", "East"),
		fact("Region", "0:0", "Code", "100"),
		fact("Region", "0:1", "Name", "West"),
		fact("Region", "0:1", "Code", ""),
		fact("Site", "0:2", "Name", "East"),
		fact("Site", "0:2", "Code", "7"),
	}

	for _, policy := range []ComparisonPolicy{StrictNameMatch, NameLiteralMatch} {
		assert.Empty(t, NewReconciler(policy).Reconcile(indexOf(facts...), indexOf(facts...)), policy)
	}
}

func TestReconcile_NamelessEntities(t *testing.T) {
	a := indexOf(
		fact("D", "0:0", "Code", "1"),
		fact("D", "0:1", "Name", "x"),
		fact("D", "0:1", "Code", "1"),
	)
	b := indexOf(
		fact("D", "0:0", "Code", "2"),
	)

	// "D | " is shared but nameless on both sides, "D | x" is A only.
	records := NewReconciler(StrictNameMatch).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		rec("D", "x", "Name", "x", SideB),
	}, records)
}

func TestReconcile_SideLackingNameSkipsAttributes(t *testing.T) {
	a := &AttributeIndex{entities: map[string]*Entity{
		"D | x": {GroupKey: "D | x", Attributes: map[string]string{"Name": "x", "Code": "1"}, Order: []string{"Name", "Code"}},
	}, keys: []string{"D | x"}}
	b := &AttributeIndex{entities: map[string]*Entity{
		"D | x": {GroupKey: "D | x", Attributes: map[string]string{"Code": "2"}, Order: []string{"Code"}},
	}, keys: []string{"D | x"}}

	records := NewReconciler(StrictNameMatch).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		rec("D", "x", "Name", "x", SideB),
	}, records)
}

func TestReconcile_NameLiteralMatch(t *testing.T) {
	keyed := func(name, code string) *AttributeIndex {
		facts := []LongFact{fact("D", "0:0", "Name", name), fact("D", "0:0", "Code", code)}
		return BuildIndex(NewKeyBuilder("_").Build(facts))
	}
	a := keyed("AAAA_0001", "1")
	b := keyed("AAAA_0002", "2")

	literal := NewReconciler(NameLiteralMatch).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		{Dimension: "D", Name: "AAAA_0001", Attribute: "Name", Value: "AAAA_0001", MissingIn: SideB, RefName: "AAAA"},
		{Dimension: "D", Name: "AAAA_0002", Attribute: "Name", Value: "AAAA_0002", MissingIn: SideA, RefName: "AAAA"},
	}, literal)

	strict := NewReconciler(StrictNameMatch).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		{Dimension: "D", Name: "AAAA_0001", Attribute: "Code", Value: "1", MissingIn: SideB, RefName: "AAAA"},
		{Dimension: "D", Name: "AAAA_0002", Attribute: "Code", Value: "2", MissingIn: SideA, RefName: "AAAA"},
	}, strict)
}

func TestReconcile_FullUnion(t *testing.T) {
	a := indexOf(
		fact("D", "0:0", "Name", "x"),
		fact("D", "0:0", "Code", "1"),
		fact("D", "0:0", "Kind", "k"),
	)
	b := indexOf(
		fact("D", "0:0", "Name", "x"),
		fact("D", "0:0", "Code", "1"),
		fact("D", "0:0", "Kind", "j"),
	)

	records := NewReconciler(FullUnion, WithEqualAsMismatch(true)).Reconcile(a, b)
	assert.Equal(t, []DiscrepancyRecord{
		rec("D", "x", "Name", "x", SideNone),
		rec("D", "x", "Code", "1", SideNone),
		rec("D", "x", "Kind", "k", SideB),
		rec("D", "x", "Kind", "j", SideA),
	}, records)
}

func TestReconcile_EqualAsMismatch(t *testing.T) {
	a := indexOf(fact("D", "0:0", "Name", "x"), fact("D", "0:0", "Code", "1"))
	b := indexOf(fact("D", "0:0", "Name", "x"), fact("D", "0:0", "Code", "1"))

	assert.Empty(t, NewReconciler(StrictNameMatch).Reconcile(a, b))
	assert.Equal(t, []DiscrepancyRecord{
		rec("D", "x", "Code", "1", SideB),
		rec("D", "x", "Code", "1", SideA),
	}, NewReconciler(StrictNameMatch, WithEqualAsMismatch(true)).Reconcile(a, b))
}

func TestReconcile_CrossJoin(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	activity := ActivitySpec{StatusField: "Status", ExpiryField: "Expiry", Now: now}.Predicate()

	a := indexOf(
		fact("D", "0:0", "Name", "x"),
		fact("D", "0:0", "Code", "1"),
		fact("D", "0:0", "Status", "Open"),
		fact("D", "0:1", "Name", "x"),
		fact("D", "0:1", "Code", "2"),
		fact("D", "0:1", "Status", "Closed"),
	)
	b := indexOf(
		fact("D", "0:0", "Name", "x"),
		fact("D", "0:0", "Code", "1"),
		fact("D", "0:0", "Status", "Open"),
	)

	r := NewReconciler(StrictNameMatch, WithCardinality(CardinalityCrossJoin), WithActivity(activity))
	records := r.Reconcile(a, b)

	note := "many-to-one; candidates A=2 (1 active), B=1 (1 active)"
	expected := []DiscrepancyRecord{
		rec("D", "x", "Code", "2", SideB),
		rec("D", "x", "Code", "1", SideA),
		rec("D", "x", "Status", "Closed", SideB),
		rec("D", "x", "Status", "Open", SideA),
	}
	for i := range expected {
		expected[i].Note = note
	}
	assert.Equal(t, expected, records)

	// First-match cardinality only sees the folded first row, which agrees.
	assert.Empty(t, NewReconciler(StrictNameMatch).Reconcile(a, b))
}

func TestReconcile_VisitsEveryKeyOnce(t *testing.T) {
	a := indexOf(
		fact("D", "0:0", "Name", "c"),
		fact("D", "0:1", "Name", "a"),
		fact("E", "0:2", "Name", "a"),
	)
	b := indexOf(
		fact("D", "0:0", "Name", "b"),
		fact("D", "0:1", "Name", "a"),
	)

	records := NewReconciler(StrictNameMatch).Reconcile(a, b)
	require.Len(t, records, 3)
	assert.Equal(t, rec("D", "b", "Name", "b", SideA), records[0])
	assert.Equal(t, rec("D", "c", "Name", "c", SideB), records[1])
	assert.Equal(t, rec("E", "a", "Name", "a", SideB), records[2])
	assert.Equal(t, []string{"D | a", "D | b", "D | c", "E | a"}, unionKeys(a, b))
}

func TestParsePolicyAndCardinality(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, StrictNameMatch, p)

	p, err = ParsePolicy(" Full-Union ")
	require.NoError(t, err)
	assert.Equal(t, FullUnion, p)

	_, err = ParsePolicy("fuzzy")
	assert.Error(t, err)

	c, err := ParseCardinality("cross-join")
	require.NoError(t, err)
	assert.Equal(t, CardinalityCrossJoin, c)

	c, err = ParseCardinality("")
	require.NoError(t, err)
	assert.Equal(t, CardinalityFirst, c)

	_, err = ParseCardinality("all")
	assert.Error(t, err)
}

func TestActivityPredicate(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	active := ActivitySpec{StatusField: "Daytona", ExpiryField: "Elastic Daytona", Now: now}.Predicate()

	assert.True(t, active(map[string]string{"Daytona": "Open", "Elastic Daytona": "2024-06-01"}))
	assert.True(t, active(map[string]string{}))
	assert.False(t, active(map[string]string{"Daytona": "CLOSED"}))
	assert.False(t, active(map[string]string{"Elastic Daytona": "2024-05-31"}))
	assert.False(t, active(map[string]string{"Elastic Daytona": "31/05/2024"}))
	assert.True(t, active(map[string]string{"Elastic Daytona": "not a date"}))
}
