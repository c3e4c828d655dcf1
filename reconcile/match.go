package reconcile

import (
	"fmt"

	"catalogrecon/catalog"
	"catalogrecon/internal/keynorm"
)

// Rule pairs a primary key field with a reference index. Rules are evaluated
// in the order given; the first one that finds the record's key wins.
type Rule struct {
	Name    string
	Primary KeyField
	Index   *Index
}

type MatchResult struct {
	Primary   catalog.Record
	Reference *catalog.Record
	Rule      string
	Field     string
	Key       string
	Index     *Index
}

func (m MatchResult) Matched() bool {
	return m.Reference != nil
}

type RuleStats struct {
	Rule    string
	Matched int
}

type MatchOutcome struct {
	Results   []MatchResult
	Total     int
	Matched   int
	Unmatched int
	PerRule   []RuleStats
	Skipped   []string
	Indexes   []*Index
}

type Matcher struct {
	rules []Rule
}

func NewMatcher(rules ...Rule) *Matcher {
	return &Matcher{rules: append([]Rule(nil), rules...)}
}

func (m *Matcher) Rules() []Rule {
	return append([]Rule(nil), m.rules...)
}

type activeRule struct {
	rule   Rule
	column string
	stats  int
}

// Match produces one MatchResult per primary record, in primary order.
// Rules whose primary column is missing are skipped and reported in Skipped;
// when none remain the call fails with ErrSchema.
func (m *Matcher) Match(primary *catalog.RecordSet) (*MatchOutcome, error) {
	if len(m.rules) == 0 {
		return nil, fmt.Errorf("match needs at least one rule")
	}

	outcome := &MatchOutcome{Results: make([]MatchResult, 0, primary.Len()), Total: primary.Len()}
	active := make([]*activeRule, 0, len(m.rules))
	for _, rule := range m.rules {
		if rule.Index == nil {
			return nil, fmt.Errorf("rule %s has no reference index", rule.Name)
		}
		column, ok := primary.ResolveColumn(rule.Primary.Candidates...)
		if !ok {
			outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("rule %s skipped: %s has none of %q", rule.Name, primary.Source, rule.Primary.Candidates))
			continue
		}
		active = append(active, &activeRule{rule: rule, column: column})
		outcome.addIndex(rule.Index)
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no match rule applies to %s", catalog.ErrSchema, primary.Source)
	}

	for _, record := range primary.Records {
		result := MatchResult{Primary: record}
		for _, candidate := range active {
			key := keynorm.Normalize(record.Value(candidate.column))
			if key == "" {
				continue
			}
			reference, ok := candidate.rule.Index.Lookup(key)
			if !ok {
				continue
			}
			ref := reference
			result.Reference = &ref
			result.Rule = candidate.rule.Name
			result.Field = candidate.column
			result.Key = key
			result.Index = candidate.rule.Index
			candidate.stats++
			break
		}

		if result.Matched() {
			outcome.Matched++
		} else {
			outcome.Unmatched++
		}
		outcome.Results = append(outcome.Results, result)
	}

	for _, candidate := range active {
		outcome.PerRule = append(outcome.PerRule, RuleStats{Rule: candidate.rule.Name, Matched: candidate.stats})
	}
	return outcome, nil
}

func (o *MatchOutcome) Summary() *Summary {
	summary := NewSummary("match")
	summary.Count("total", o.Total)
	summary.Count("matched", o.Matched)
	summary.Count("unmatched", o.Unmatched)
	perRule := 0
	for _, rule := range o.PerRule {
		summary.Count("matched_by["+rule.Rule+"]", rule.Matched)
		perRule += rule.Matched
	}
	for _, note := range o.Skipped {
		summary.Note(note)
	}
	summary.Expect("matched + unmatched == total", o.Matched+o.Unmatched, o.Total)
	summary.Expect("sum(matched_by) == matched", perRule, o.Matched)
	return summary
}

const (
	StatusMatched   = "matched"
	StatusUnmatched = "unmatched"
)

// ReportOptions shapes the match report.
type ReportOptions struct {
	// Columns are primary columns to keep; empty keeps all of them.
	Columns []KeyField
	// ReferenceColumns are copied from the matched reference record when present.
	ReferenceColumns []KeyField
	// Only limits rows to StatusMatched or StatusUnmatched; empty keeps both.
	Only string
}

// BuildReport renders match results as a record set: primary columns, match
// metadata, then carried reference columns. Reference columns no reference
// set carries are skipped and returned as notes.
func BuildReport(primary *catalog.RecordSet, outcome *MatchOutcome, options ReportOptions) (*catalog.RecordSet, []string, error) {
	switch options.Only {
	case "", StatusMatched, StatusUnmatched:
	default:
		return nil, nil, fmt.Errorf("unsupported report filter %q (supported: matched, unmatched)", options.Only)
	}

	primaryColumns := primary.Header
	outputPrimary := primary.Header
	if len(options.Columns) > 0 {
		primaryColumns = make([]string, 0, len(options.Columns))
		outputPrimary = make([]string, 0, len(options.Columns))
		for _, field := range options.Columns {
			column, err := field.Resolve(primary)
			if err != nil {
				return nil, nil, err
			}
			primaryColumns = append(primaryColumns, column)
			outputPrimary = append(outputPrimary, column)
		}
	}

	header := append([]string(nil), outputPrimary...)
	taken := make(map[string]struct{}, len(header)+4)
	for _, column := range header {
		taken[column] = struct{}{}
	}
	metaColumns := []string{"match_status", "match_rule", "match_field", "match_key"}
	for i, column := range metaColumns {
		metaColumns[i] = uniqueColumn(column, taken)
	}
	header = append(header, metaColumns...)

	indexes := outcome.Indexes
	type carried struct {
		output   string
		resolved map[*Index]string
	}
	var notes []string
	carriedColumns := make([]carried, 0, len(options.ReferenceColumns))
	for _, field := range options.ReferenceColumns {
		resolved := make(map[*Index]string, len(indexes))
		for _, index := range indexes {
			if column, ok := index.Set.ResolveColumn(field.Candidates...); ok {
				resolved[index] = column
			}
		}
		if len(resolved) == 0 {
			notes = append(notes, fmt.Sprintf("reference column %s skipped: no reference set has it", field.Name))
			continue
		}
		name := field.Name
		if _, clash := taken[name]; clash {
			name = "ref_" + name
		}
		name = uniqueColumn(name, taken)
		header = append(header, name)
		carriedColumns = append(carriedColumns, carried{output: name, resolved: resolved})
	}

	records := make([]catalog.Record, 0, len(outcome.Results))
	for _, result := range outcome.Results {
		status := StatusUnmatched
		if result.Matched() {
			status = StatusMatched
		}
		if options.Only != "" && options.Only != status {
			continue
		}

		values := make(map[string]string, len(header))
		for i, column := range primaryColumns {
			values[outputPrimary[i]] = result.Primary.Values[column]
		}
		values[metaColumns[0]] = status
		values[metaColumns[1]] = result.Rule
		values[metaColumns[2]] = result.Field
		values[metaColumns[3]] = result.Key
		for _, column := range carriedColumns {
			value := ""
			if result.Matched() {
				if source, ok := column.resolved[result.Index]; ok {
					value = result.Reference.Values[source]
				}
			}
			values[column.output] = value
		}
		records = append(records, catalog.Record{RowNumber: result.Primary.RowNumber, Values: values})
	}

	report := primary.WithRecords(records)
	report.Header = header
	return report, notes, nil
}

func (o *MatchOutcome) addIndex(index *Index) {
	for _, existing := range o.Indexes {
		if existing == index {
			return
		}
	}
	o.Indexes = append(o.Indexes, index)
}

func uniqueColumn(name string, taken map[string]struct{}) string {
	candidate := name
	for i := 2; ; i++ {
		if _, exists := taken[candidate]; !exists {
			taken[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
}
