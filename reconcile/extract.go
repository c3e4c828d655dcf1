package reconcile

import (
	"fmt"

	"catalogrecon/catalog"
)

type ExtractResult struct {
	Set          *catalog.RecordSet
	Total        int
	Kept         int
	DroppedEmpty int
}

// Extract projects set onto columns, naming output columns after each field.
// Rows whose value is blank for any field in requireKeys are dropped.
func Extract(set *catalog.RecordSet, columns []KeyField, requireKeys []KeyField) (*ExtractResult, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("extract needs at least one column")
	}

	sources := make([]string, len(columns))
	header := make([]string, len(columns))
	taken := make(map[string]struct{}, len(columns))
	for i, field := range columns {
		column, err := field.Resolve(set)
		if err != nil {
			return nil, err
		}
		sources[i] = column
		header[i] = uniqueColumn(field.Name, taken)
	}

	required := make([]string, len(requireKeys))
	for i, field := range requireKeys {
		column, err := field.Resolve(set)
		if err != nil {
			return nil, err
		}
		required[i] = column
	}

	records := make([]catalog.Record, 0, set.Len())
	dropped := 0
	for _, record := range set.Records {
		if hasBlank(record, required) {
			dropped++
			continue
		}
		values := make(map[string]string, len(header))
		for i, column := range sources {
			values[header[i]] = record.Values[column]
		}
		records = append(records, catalog.Record{RowNumber: record.RowNumber, Values: values})
	}

	out := set.WithRecords(records)
	out.Header = header
	return &ExtractResult{Set: out, Total: set.Len(), Kept: len(records), DroppedEmpty: dropped}, nil
}

func hasBlank(record catalog.Record, columns []string) bool {
	for _, column := range columns {
		if record.Value(column) == "" {
			return true
		}
	}
	return false
}

func (r *ExtractResult) Summary() *Summary {
	summary := NewSummary("extract")
	summary.Count("total", r.Total)
	summary.Count("kept", r.Kept)
	summary.Count("dropped_empty_key", r.DroppedEmpty)
	summary.Expect("kept + dropped_empty_key == total", r.Kept+r.DroppedEmpty, r.Total)
	return summary
}
