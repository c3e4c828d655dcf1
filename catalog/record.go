package catalog

import (
	"strings"
)

// Record is one data row keyed by the original header text.
type Record struct {
	RowNumber int
	Values    map[string]string
}

// Get returns the trimmed value for column. ok is false when the column is not
// part of the record at all, as opposed to present but empty.
func (r Record) Get(column string) (string, bool) {
	value, ok := r.Values[column]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// Value returns the trimmed value for column or "" when absent.
func (r Record) Value(column string) string {
	value, _ := r.Get(column)
	return value
}

// Raw returns the untrimmed value for column or "" when absent.
func (r Record) Raw(column string) string {
	return r.Values[column]
}

// NewRecord pairs header and row positionally. Missing trailing cells become "".
func NewRecord(rowNumber int, header, row []string) Record {
	values := make(map[string]string, len(header))
	for i, column := range header {
		if i < len(row) {
			values[column] = row[i]
		} else {
			values[column] = ""
		}
	}
	return Record{RowNumber: rowNumber, Values: values}
}

// NormalizeHeader folds a header for loose comparison: lower case, no spaces,
// underscores or hyphens.
func NormalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.TrimPrefix(trimmed, "\ufeff")
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}
