package reconcile

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FixedDimensionAndLiteralName(t *testing.T) {
	src := memSource{name: "a", units: []Unit{
		rowsUnit("Sheet1", []string{"Name", "Code"},
			[]string{" East ", "100"},
			[]string{"West"},
		),
	}}

	facts, issues, err := NewNormalizer(fixedSpec("Region"), nil, 1, nil).Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, []LongFact{
		fact("Region", "0:0", "Name", "East"),
		fact("Region", "0:0", "Code", "100"),
		fact("Region", "0:1", "Name", "West"),
		fact("Region", "0:1", "Code", ""),
	}, facts)
}

func TestNormalize_DimensionPolicies(t *testing.T) {
	tests := []struct {
		name     string
		spec     DimensionSpec
		label    string
		expected []LongFact
	}{
		{
			name:  "unit label with configured suffix",
			spec:  DimensionSpec{Policy: DimensionUnit, StripSuffix: "_extract.csv"},
			label: "north_america_extract.csv",
			expected: []LongFact{
				fact("north america", "0:0", "Name", "Ohio"),
				fact("north america", "0:0", "Kind", "State"),
			},
		},
		{
			name:  "unit label falls back to extension",
			spec:  DimensionSpec{Policy: DimensionUnit, StripSuffix: "_x.csv"},
			label: "dir/sub_region.txt",
			expected: []LongFact{
				fact("sub region", "0:0", "Name", "Ohio"),
				fact("sub region", "0:0", "Kind", "State"),
			},
		},
		{
			name:  "column is consumed and not emitted",
			spec:  DimensionSpec{Policy: DimensionColumn, Column: "Kind"},
			label: "any.csv",
			expected: []LongFact{
				fact("State", "0:0", "Name", "Ohio"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := memSource{name: "a", units: []Unit{
				rowsUnit(tt.label, []string{"Name", "Kind"}, []string{"Ohio", "State"}),
			}}
			facts, _, err := NewNormalizer(SourceSpec{Dimension: tt.spec}, nil, 1, nil).Normalize(context.Background(), src)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, facts)
		})
	}
}

func TestNormalize_ConfiguredNameField(t *testing.T) {
	pos := 1
	tests := []struct {
		name string
		spec SourceSpec
	}{
		{name: "by field name", spec: SourceSpec{Dimension: DimensionSpec{Policy: DimensionFixed, Value: "D"}, NameField: "Label"}},
		{name: "by position", spec: SourceSpec{Dimension: DimensionSpec{Policy: DimensionFixed, Value: "D"}, NamePosition: &pos}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := memSource{name: "a", units: []Unit{
				rowsUnit("u", []string{"Code", "Label"}, []string{"1", "Alpha"}),
			}}
			facts, issues, err := NewNormalizer(tt.spec, nil, 1, nil).Normalize(context.Background(), src)
			require.NoError(t, err)
			assert.Empty(t, issues)
			assert.Equal(t, []LongFact{
				fact("D", "0:0", "Code", "1"),
				fact("D", "0:0", "Name", "Alpha"),
			}, facts)
		})
	}
}

func TestNormalize_MissingNameFieldIsSchemaMismatch(t *testing.T) {
	spec := fixedSpec("D")
	spec.NameField = "Label"
	src := memSource{name: "a", units: []Unit{
		rowsUnit("u", []string{"Code"}, []string{"1"}, []string{"2"}),
	}}

	facts, issues, err := NewNormalizer(spec, nil, 1, nil).Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, facts, 2)
	require.Len(t, issues, 1, "reported once per unit")
	assert.Equal(t, IssueSchemaMismatch, issues[0].Kind)
	assert.Equal(t, "Label", issues[0].Field)
	assert.Equal(t, "u", issues[0].Unit)
}

func TestNormalize_UnitFailureIsIsolated(t *testing.T) {
	src := memSource{name: "archive.zip", units: []Unit{
		rowsUnit("first.csv", []string{"Name"}, []string{"One"}),
		failingUnit("broken.csv"),
		rowsUnit("third.csv", []string{"Name"}, []string{"Three"}),
	}}

	facts, issues, err := NewNormalizer(SourceSpec{Dimension: DimensionSpec{Policy: DimensionUnit}}, nil, 3, nil).
		Normalize(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, []LongFact{
		fact("first", "0:0", "Name", "One"),
		fact("third", "2:0", "Name", "Three"),
	}, facts, "units merge in unit order regardless of scheduling")
	require.Len(t, issues, 1)
	assert.Equal(t, IssueSourceUnreadable, issues[0].Kind)
	assert.Equal(t, "broken.csv", issues[0].Unit)
	assert.True(t, eris.Is(issues[0].Err(), ErrSourceUnreadable))
}

func TestNormalize_UnreadableSource(t *testing.T) {
	src := memSource{name: "missing.xlsx", err: assert.AnError}

	facts, issues, err := NewNormalizer(fixedSpec("D"), nil, 1, nil).Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, facts)
	require.Len(t, issues, 1)
	assert.Equal(t, "missing.xlsx", issues[0].Source)
}

func TestNormalize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := memSource{name: "a", units: []Unit{rowsUnit("u", []string{"Name"}, []string{"x"})}}

	_, _, err := NewNormalizer(fixedSpec("D"), nil, 1, nil).Normalize(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize_ValueCleaning(t *testing.T) {
	spec := fixedSpec("D")
	spec.CanonicalNumbers = true
	src := memSource{name: "a", units: []Unit{
		rowsUnit("u", []string{"Name", "Amount", "Exp", "Text", "Accent"},
			[]string{"X", " 100.0 ", "1e3", "N/A", "Café"}),
	}}

	facts, _, err := NewNormalizer(spec, nil, 1, nil).Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "100", facts[1].Value)
	assert.Equal(t, "1000", facts[2].Value)
	assert.Equal(t, "N/A", facts[3].Value)
	assert.Equal(t, "Café", facts[4].Value)
}

func TestCanonicalNumber(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"100":    "100",
		"100.50": "100.5",
		"-0.0":   "0",
		"2.5E2":  "250",
		"abc":    "abc",
		"NaN":    "NaN",
		"0.50":   "0.5",
		"007":    "007",
		"00123":  "00123",
		"0001":   "0001",
		"-007":   "-007",
		"00.5":   "00.5",
		"0":      "0",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalNumber(in), in)
	}
}

func TestDimensionSpec_FromUnit(t *testing.T) {
	d := DimensionSpec{Policy: DimensionUnit, StripSuffix: "_data.txt"}
	assert.Equal(t, "cost centers", d.FromUnit("exports/cost_centers_data.txt"))
	assert.Equal(t, "cost centers", d.FromUnit(" cost_centers .csv"))
}

func TestNormalize_CanonicalNumbersKeepPaddedCodes(t *testing.T) {
	spec := fixedSpec("Branch")
	spec.CanonicalNumbers = true
	src := memSource{name: "a", units: []Unit{
		rowsUnit("u", []string{"Name", "Rate"}, []string{"007", "1.50"}, []string{"7", "2.0"}),
	}}

	facts, issues, err := NewNormalizer(spec, nil, 1, nil).Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, []LongFact{
		fact("Branch", "0:0", "Name", "007"),
		fact("Branch", "0:0", "Rate", "1.5"),
		fact("Branch", "0:1", "Name", "7"),
		fact("Branch", "0:1", "Rate", "2"),
	}, facts)
}

func TestNormalize_RowExclusionMatchesCleanedValues(t *testing.T) {
	spec := fixedSpec("D")
	spec.CanonicalNumbers = true
	spec.Rules = Rules{ExcludeRows: []ExclusionRule{{Field: "Code", Values: []string{"100"}}}}
	src := memSource{name: "a", units: []Unit{
		rowsUnit("u", []string{"Name", "Code"}, []string{"a", "100.0"}, []string{"b", "200"}),
	}}

	facts, issues, err := NewNormalizer(spec, NewRuleEngine(spec.Rules), 1, nil).Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, []LongFact{
		fact("D", "0:0", "Name", "b"),
		fact("D", "0:0", "Code", "200"),
	}, facts)
}

func TestNormalize_NameCannotBeTheDimensionColumn(t *testing.T) {
	pos := 0
	tests := []struct {
		name  string
		spec  SourceSpec
		field string
	}{
		{
			name:  "literal Name is the dimension",
			spec:  SourceSpec{Dimension: DimensionSpec{Policy: DimensionColumn, Column: "Name"}},
			field: "Name",
		},
		{
			name:  "position points at the dimension",
			spec:  SourceSpec{Dimension: DimensionSpec{Policy: DimensionColumn, Column: "Name"}, NamePosition: &pos},
			field: "#0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := memSource{name: "a", units: []Unit{
				rowsUnit("u", []string{"Name", "Owner"}, []string{"X1", "Alice"}),
			}}
			facts, issues, err := NewNormalizer(tt.spec, nil, 1, nil).Normalize(context.Background(), src)
			require.NoError(t, err)
			assert.Equal(t, []LongFact{fact("X1", "0:0", "Owner", "Alice")}, facts)
			require.Len(t, issues, 1, "a nameless unit is always reported")
			assert.Equal(t, IssueSchemaMismatch, issues[0].Kind)
			assert.Equal(t, tt.field, issues[0].Field)
		})
	}
}
