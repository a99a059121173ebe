package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_FirstValueWins(t *testing.T) {
	x := indexOf(
		fact("Region", "0:0", "Name", "East"),
		fact("Region", "0:0", "Code", "100"),
		fact("Region", "0:1", "Name", "East"),
		fact("Region", "0:1", "Code", "200"),
	)

	e, ok := x.Get("Region | East")
	require.True(t, ok)
	assert.Equal(t, "100", e.Attributes["Code"])
	assert.Equal(t, []string{"Name", "Code"}, e.Order)
	assert.Equal(t, "Region", e.Dimension)
	assert.Equal(t, 1, x.Len())
}

func TestBuildIndex_SingleValuedAfterFold(t *testing.T) {
	x := indexOf(
		fact("D", "0:0", "Name", "a"),
		fact("D", "0:0", "Code", "1"),
		fact("D", "0:1", "Name", "a"),
		fact("D", "0:1", "Code", "2"),
		fact("D", "0:2", "Name", "b"),
		fact("D", "0:2", "Code", "3"),
	)

	assert.Equal(t, map[string]map[string]string{
		"D | a": {"Name": "a", "Code": "1"},
		"D | b": {"Name": "b", "Code": "3"},
	}, x.Snapshot())
	assert.Equal(t, []string{"D | a", "D | b"}, x.Keys())
}

func TestBuildIndex_ImplicitName(t *testing.T) {
	keyed := []KeyedFact{
		{LongFact: fact("D", "0:0", "Code", "1"), RefName: "AAAA", GroupKey: "D | AAAA", Key: "D | AAAA | Code | 1"},
	}

	x := BuildIndex(keyed)
	x.AttachCandidates(keyed)

	e, ok := x.Get("D | AAAA")
	require.True(t, ok)
	name, ok := e.Name()
	assert.True(t, ok)
	assert.Equal(t, "AAAA", name)
	assert.Equal(t, []string{"Name", "Code"}, e.Order)
	require.Len(t, e.Candidates, 1)
	assert.Equal(t, "AAAA", e.Candidates[0].Attributes["Name"])
}

func TestBuildIndex_EmptyNameIsAbsent(t *testing.T) {
	x := indexOf(
		fact("D", "0:0", "Name", ""),
		fact("D", "0:0", "Code", "1"),
	)
	e, ok := x.Get("D | ")
	require.True(t, ok)
	_, ok = e.Name()
	assert.False(t, ok)
}

func TestAttachCandidates_KeepsDuplicatedFactsPerRow(t *testing.T) {
	x := indexOf(
		fact("D", "0:0", "Name", "a"),
		fact("D", "0:0", "Code", "1"),
		fact("D", "0:1", "Name", "a"),
		fact("D", "0:1", "Code", "1"),
	)

	e, _ := x.Get("D | a")
	require.Len(t, e.Candidates, 2)
	for _, c := range e.Candidates {
		assert.Equal(t, map[string]string{"Name": "a", "Code": "1"}, c.Attributes)
	}
	assert.Equal(t, "0:1", e.Candidates[1].EntityRef)
}
