package reconcile

import (
	"testing"

	"catalogrecon/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_FirstReferenceWins(t *testing.T) {
	reference := recordSet("xorosoft.csv", []string{"part_number", "title"},
		[]string{"ABC-1", "first"},
		[]string{"abc1", "second"},
		[]string{"", "blank"},
	)

	index, err := BuildIndex(reference, Field("part_number"))
	require.NoError(t, err)

	assert.Equal(t, 1, index.Len())
	assert.Equal(t, 1, index.Duplicates)
	record, ok := index.Lookup("ABC1")
	require.True(t, ok)
	assert.Equal(t, "first", record.Value("title"))

	_, ok = index.Lookup("")
	assert.False(t, ok)
}

func TestMatcher_FirstMatchingRuleWins(t *testing.T) {
	primary := recordSet("products.csv", []string{"Variant SKU", "Handle", "Barcode"},
		[]string{"ABC-1", "h-one", "111"},
		[]string{"", "h-two", "222"},
		[]string{"NOPE", "nope", "333"},
		[]string{"xyz-9", "h-one", ""},
	)
	parts := recordSet("xorosoft.csv", []string{"part_number", "title"},
		[]string{"abc1", "Alpha"},
		[]string{"XYZ9", "Xylo"},
		[]string{"HONE", "by handle"},
	)
	barcodes := recordSet("barcodes.csv", []string{"barcode", "title"},
		[]string{"222", "Two"},
		[]string{"111", "One"},
	)

	partIndex, err := BuildIndex(parts, Field("part_number"))
	require.NoError(t, err)
	barcodeIndex, err := BuildIndex(barcodes, Field("barcode"))
	require.NoError(t, err)

	matcher := NewMatcher(
		Rule{Name: "sku", Primary: Field("sku", "sku", "Variant SKU"), Index: partIndex},
		Rule{Name: "handle", Primary: Field("Handle"), Index: partIndex},
		Rule{Name: "barcode", Primary: Field("Barcode"), Index: barcodeIndex},
	)

	outcome, err := matcher.Match(primary)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 4)

	first := outcome.Results[0]
	require.True(t, first.Matched())
	assert.Equal(t, "sku", first.Rule)
	assert.Equal(t, "Variant SKU", first.Field)
	assert.Equal(t, "ABC1", first.Key)
	assert.Equal(t, "Alpha", first.Reference.Value("title"))

	second := outcome.Results[1]
	require.True(t, second.Matched())
	assert.Equal(t, "barcode", second.Rule, "blank sku and unknown handle fall through to barcode")
	assert.Equal(t, "Two", second.Reference.Value("title"))

	third := outcome.Results[2]
	assert.False(t, third.Matched())
	assert.Empty(t, third.Rule)

	fourth := outcome.Results[3]
	assert.Equal(t, "sku", fourth.Rule, "sku precedes handle even though both match")

	assert.Equal(t, 4, outcome.Total)
	assert.Equal(t, 3, outcome.Matched)
	assert.Equal(t, 1, outcome.Unmatched)
	assert.Equal(t, []RuleStats{{Rule: "sku", Matched: 2}, {Rule: "handle", Matched: 0}, {Rule: "barcode", Matched: 1}}, outcome.PerRule)
	assert.NoError(t, outcome.Summary().Verify())
}

func TestMatcher_SkipsRulesWithMissingColumns(t *testing.T) {
	primary := recordSet("products.csv", []string{"sku"}, []string{"A"})
	reference := recordSet("ref.csv", []string{"sku"}, []string{"a"})
	index, err := BuildIndex(reference, Field("sku"))
	require.NoError(t, err)

	outcome, err := NewMatcher(
		Rule{Name: "handle", Primary: Field("handle"), Index: index},
		Rule{Name: "sku", Primary: Field("sku"), Index: index},
	).Match(primary)
	require.NoError(t, err)
	assert.Len(t, outcome.Skipped, 1)
	assert.Equal(t, 1, outcome.Matched)

	_, err = NewMatcher(Rule{Name: "handle", Primary: Field("handle"), Index: index}).Match(primary)
	assert.ErrorIs(t, err, catalog.ErrSchema)

	_, err = NewMatcher().Match(primary)
	assert.Error(t, err)
}

func TestMatcher_EmptyReferenceMatchesNothing(t *testing.T) {
	primary := recordSet("products.csv", []string{"sku"}, []string{"A"}, []string{"B"})
	reference := recordSet("ref.csv", []string{"sku"})
	index, err := BuildIndex(reference, Field("sku"))
	require.NoError(t, err)

	outcome, err := NewMatcher(Rule{Name: "sku", Primary: Field("sku"), Index: index}).Match(primary)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Matched)
	assert.Equal(t, 2, outcome.Unmatched)
}

func TestBuildReport(t *testing.T) {
	primary := recordSet("products.csv", []string{"sku", "title"},
		[]string{"A-1", "Primary A"},
		[]string{"B-2", "Primary B"},
	)
	reference := recordSet("ref.csv", []string{"part_number", "title", "qty"},
		[]string{"a1", "Ref A", "7"},
	)
	index, err := BuildIndex(reference, Field("part_number"))
	require.NoError(t, err)

	outcome, err := NewMatcher(Rule{Name: "sku", Primary: Field("sku"), Index: index}).Match(primary)
	require.NoError(t, err)

	report, notes, err := BuildReport(primary, outcome, ReportOptions{
		ReferenceColumns: []KeyField{Field("title"), Field("qty"), Field("price")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sku", "title", "match_status", "match_rule", "match_field", "match_key", "ref_title", "qty"}, report.Header)
	require.Len(t, report.Records, 2)
	assert.Equal(t, []string{"A-1", "Primary A", "matched", "sku", "sku", "A1", "Ref A", "7"}, report.Row(report.Records[0]))
	assert.Equal(t, []string{"B-2", "Primary B", "unmatched", "", "", "", "", ""}, report.Row(report.Records[1]))
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "price")

	unmatched, _, err := BuildReport(primary, outcome, ReportOptions{Columns: []KeyField{Field("sku")}, Only: StatusUnmatched})
	require.NoError(t, err)
	assert.Equal(t, []string{"sku", "match_status", "match_rule", "match_field", "match_key"}, unmatched.Header)
	assert.Equal(t, []string{"B-2"}, columnValues(unmatched, "sku"))

	_, _, err = BuildReport(primary, outcome, ReportOptions{Only: "maybe"})
	assert.Error(t, err)
}
