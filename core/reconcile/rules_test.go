package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleEngine_FilterRows(t *testing.T) {
	header := []string{"Name", "Status", "Type"}
	rows := []*WideRow{
		RowFromPairs(header, []string{"a", "Active", "X"}),
		RowFromPairs(header, []string{"b", " Closed ", "X"}),
		RowFromPairs(header, []string{"c", "Active", "Test"}),
	}

	e := NewRuleEngine(Rules{ExcludeRows: []ExclusionRule{
		{Field: "Status", Values: []string{"Closed"}},
		{Field: "Type", Values: []string{"Test"}},
		{Field: "Owner", Values: []string{"nobody"}},
	}})

	kept, issues := e.FilterRows("src", "unit", rows, nil)
	require.Len(t, kept, 1)
	v, _ := kept[0].Get("Name")
	assert.Equal(t, "a", v)

	require.Len(t, issues, 1)
	assert.Equal(t, IssueConfigReferenceMissing, issues[0].Kind)
	assert.Equal(t, "Owner", issues[0].Field)
	assert.Equal(t, "exclude_rows", issues[0].Rule)
}

func TestRuleEngine_FilterRowsWithoutRules(t *testing.T) {
	rows := []*WideRow{RowFromPairs([]string{"Name"}, []string{"a"})}
	kept, issues := NewRuleEngine(Rules{}).FilterRows("src", "unit", rows, nil)
	assert.Equal(t, rows, kept)
	assert.Empty(t, issues)
}

func TestRuleEngine_RenameBeforeExclusion(t *testing.T) {
	e := NewRuleEngine(Rules{
		RenameDimensions:  map[string]string{"TempDim": "Region"},
		ExcludeDimensions: []string{"Region"},
	})
	facts := []LongFact{
		fact("TempDim", "0:0", "Name", "East"),
		fact("TempDim", "0:0", "Code", "100"),
		fact("Other", "0:1", "Name", "West"),
	}

	out, issues := e.Apply("src", facts)
	assert.Equal(t, []LongFact{fact("Other", "0:1", "Name", "West")}, out)
	assert.Empty(t, issues)
}

func TestRuleEngine_RenameAndExcludeAttributes(t *testing.T) {
	e := NewRuleEngine(Rules{
		RenameAttributes:  map[string]string{"Cd": "Code", "Notes": "Remarks"},
		ExcludeAttributes: []string{"Remarks"},
	})
	facts := []LongFact{
		fact("D", "0:0", "Name", "x"),
		fact("D", "0:0", "Cd", "1"),
		fact("D", "0:0", "Notes", "ignore me"),
	}

	out, issues := e.Apply("src", facts)
	assert.Equal(t, []LongFact{
		fact("D", "0:0", "Name", "x"),
		fact("D", "0:0", "Code", "1"),
	}, out)
	assert.Empty(t, issues)
}

func TestRuleEngine_UnusedEntriesAreReported(t *testing.T) {
	e := NewRuleEngine(Rules{
		RenameDimensions:  map[string]string{"Ghost": "Region"},
		RenameAttributes:  map[string]string{"Old": "New"},
		ExcludeDimensions: []string{"Nowhere"},
		ExcludeAttributes: []string{"B", "A"},
	})

	_, issues := e.Apply("src", []LongFact{fact("D", "0:0", "Name", "x")})
	require.Len(t, issues, 5)

	var fields []string
	for _, i := range issues {
		assert.Equal(t, IssueConfigReferenceMissing, i.Kind)
		assert.Equal(t, "src", i.Source)
		fields = append(fields, i.Rule+":"+i.Field)
	}
	assert.Equal(t, []string{
		"rename_dimensions:Ghost",
		"rename_attributes:Old",
		"exclude_dimensions:Nowhere",
		"exclude_attributes:A",
		"exclude_attributes:B",
	}, fields)
}

func TestRules_Merge(t *testing.T) {
	base := Rules{
		RenameAttributes:  map[string]string{"a": "b", "c": "d"},
		ExcludeAttributes: []string{"x"},
	}
	side := Rules{
		RenameAttributes:  map[string]string{"c": "e"},
		ExcludeAttributes: []string{"y"},
	}

	merged := base.Merge(side)
	assert.Equal(t, map[string]string{"a": "b", "c": "e"}, merged.RenameAttributes)
	assert.Equal(t, []string{"x", "y"}, merged.ExcludeAttributes)
	assert.Nil(t, merged.RenameDimensions)
	assert.Equal(t, []string{"x"}, base.ExcludeAttributes, "inputs are not modified")
}

func TestRuleEngine_FilterRowsCleansBothSides(t *testing.T) {
	header := []string{"Name", "Code"}
	rows := []*WideRow{
		RowFromPairs(header, []string{"a", "100.0"}),
		RowFromPairs(header, []string{"b", "200"}),
	}
	e := NewRuleEngine(Rules{ExcludeRows: []ExclusionRule{{Field: "Code", Values: []string{"1E2"}}}})

	kept, _ := e.FilterRows("src", "unit", rows, nil)
	assert.Len(t, kept, 2, "raw cells only match raw rule values")

	kept, issues := e.FilterRows("src", "unit", rows, CanonicalNumber)
	assert.Empty(t, issues)
	require.Len(t, kept, 1)
	v, _ := kept[0].Get("Name")
	assert.Equal(t, "b", v)
}
