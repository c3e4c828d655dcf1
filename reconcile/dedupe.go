package reconcile

import (
	"fmt"

	"catalogrecon/catalog"
	"catalogrecon/internal/keynorm"
)

// FieldDupStats counts duplicates for one key field. Found counts every record
// whose key collided on this field; Removed counts records dropped because this
// was their first colliding field.
type FieldDupStats struct {
	Field   string
	Column  string
	Found   int
	Removed int
}

type DedupResult struct {
	Set      *catalog.RecordSet
	Total    int
	Kept     int
	Removed  int
	PerField []FieldDupStats
}

// Deduplicate keeps the first record for every normalized key on every field.
// A record is dropped when any of its non-empty keys was already claimed by a
// kept record on the same field.
func Deduplicate(set *catalog.RecordSet, fields []KeyField) (*DedupResult, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("deduplicate needs at least one key field")
	}

	columns := make([]string, len(fields))
	stats := make([]FieldDupStats, len(fields))
	seen := make([]map[string]struct{}, len(fields))
	for i, field := range fields {
		column, err := field.Resolve(set)
		if err != nil {
			return nil, err
		}
		columns[i] = column
		stats[i] = FieldDupStats{Field: field.Name, Column: column}
		seen[i] = make(map[string]struct{}, set.Len())
	}

	kept := make([]catalog.Record, 0, set.Len())
	removed := 0
	keys := make([]string, len(fields))
	for _, record := range set.Records {
		firstCollision := -1
		for i, column := range columns {
			keys[i] = keynorm.Normalize(record.Value(column))
			if keys[i] == "" {
				continue
			}
			if _, exists := seen[i][keys[i]]; exists {
				stats[i].Found++
				if firstCollision < 0 {
					firstCollision = i
				}
			}
		}

		if firstCollision >= 0 {
			stats[firstCollision].Removed++
			removed++
			continue
		}

		for i, key := range keys {
			if key != "" {
				seen[i][key] = struct{}{}
			}
		}
		kept = append(kept, record)
	}

	out := set.WithRecords(kept)
	if err := VerifyUnique(out, columns); err != nil {
		return nil, err
	}

	return &DedupResult{
		Set:      out,
		Total:    set.Len(),
		Kept:     len(kept),
		Removed:  removed,
		PerField: stats,
	}, nil
}

// VerifyUnique fails when two records share a non-empty normalized key on any column.
func VerifyUnique(set *catalog.RecordSet, columns []string) error {
	for _, column := range columns {
		firstRow := make(map[string]int, set.Len())
		for _, record := range set.Records {
			key := keynorm.Normalize(record.Value(column))
			if key == "" {
				continue
			}
			if row, exists := firstRow[key]; exists {
				return fmt.Errorf("duplicate key %q on %s: rows %d and %d", key, column, row, record.RowNumber)
			}
			firstRow[key] = record.RowNumber
		}
	}
	return nil
}

func (r *DedupResult) Summary() *Summary {
	summary := NewSummary("dedupe")
	summary.Count("total", r.Total)
	summary.Count("kept", r.Kept)
	summary.Count("removed", r.Removed)
	removedByField := 0
	for _, field := range r.PerField {
		summary.Count("duplicates_found["+field.Field+"]", field.Found)
		summary.Count("duplicates_removed["+field.Field+"]", field.Removed)
		removedByField += field.Removed
	}
	summary.Expect("kept + removed == total", r.Kept+r.Removed, r.Total)
	summary.Expect("sum(duplicates_removed) == removed", removedByField, r.Removed)
	return summary
}
