package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExceptionTable_HideSuppresses(t *testing.T) {
	records := []DiscrepancyRecord{
		rec("Region", "West", "Status", "Active", SideB),
		rec("Region", "West", "Status", "Inactive", SideA),
	}
	table := NewExceptionTable([]ExceptionEntry{
		{Key: " Region | West | Status | Active ", Hide: true},
	})

	kept, suppressed := table.Apply(records)
	assert.Equal(t, 1, suppressed)
	require.Len(t, kept, 1)
	assert.Equal(t, "Inactive", kept[0].Value)
	assert.Equal(t, "Region | West | Status | Inactive", kept[0].Key)
	assert.Empty(t, kept[0].Comments)
}

func TestExceptionTable_Comments(t *testing.T) {
	records := []DiscrepancyRecord{
		rec("D", "x", "Code", "1", SideB),
		rec("D", "x", "Code", "2", SideA),
	}
	records[1].Comments = []string{"keep", "old"}

	table := NewExceptionTable([]ExceptionEntry{
		{Key: "D | x | Code | 1", Comments: []string{"", "known gap"}},
		{Key: "D | x | Code | 2", Comments: []string{"", "new"}},
		{Key: "D | x | Code | 2", Comments: []string{"ignored duplicate"}},
	})
	assert.Equal(t, 2, table.Len())

	kept, suppressed := table.Apply(records)
	assert.Zero(t, suppressed)
	assert.Equal(t, []string{"", "known gap"}, kept[0].Comments)
	assert.Equal(t, []string{"keep", "new"}, kept[1].Comments)
}

func TestExceptionTable_EmptyOrNil(t *testing.T) {
	records := []DiscrepancyRecord{rec("D", "x", "Name", "x", SideB)}

	var nilTable *ExceptionTable
	kept, suppressed := nilTable.Apply(records)
	assert.Zero(t, suppressed)
	require.Len(t, kept, 1)
	assert.Equal(t, "D | x | Name | x", kept[0].Key)
	assert.Zero(t, nilTable.Len())

	kept, _ = NewExceptionTable(nil).Apply(records)
	assert.Len(t, kept, 1)
}

func TestExceptionTable_KeysUseRefName(t *testing.T) {
	r := DiscrepancyRecord{Dimension: "D", Name: "AAAA_0001", Attribute: "Code", Value: "1", MissingIn: SideB, RefName: "AAAA"}
	table := NewExceptionTable([]ExceptionEntry{{Key: "D | AAAA | Code | 1", Hide: true}})

	kept, suppressed := table.Apply([]DiscrepancyRecord{r})
	assert.Empty(t, kept)
	assert.Equal(t, 1, suppressed)
}
