package reconcile

import (
	"fmt"
	"strings"

	"catalogrecon/catalog"
)

// Mode selects which side of a partition is written out.
type Mode string

const (
	ModeKeepMatching    Mode = "keep-matching"
	ModeKeepNonMatching Mode = "keep-non-matching"
)

func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ModeKeepMatching), "matching", "keep":
		return ModeKeepMatching, nil
	case string(ModeKeepNonMatching), "non-matching", "exclude":
		return ModeKeepNonMatching, nil
	default:
		return "", fmt.Errorf("invalid filter mode %q (supported: keep-matching|keep-non-matching)", value)
	}
}

// PartitionResult holds a stable split of the primary records. Retained is
// what the mode keeps; Excluded is the rest.
type PartitionResult struct {
	Mode     Mode
	Column   string
	Retained *catalog.RecordSet
	Excluded *catalog.RecordSet
	Total    int
	Matching int
}

// Partition splits set by membership of field's normalized key in keys.
// Records with an empty key never match.
func Partition(set *catalog.RecordSet, field KeyField, keys *KeySet, mode Mode) (*PartitionResult, error) {
	if mode != ModeKeepMatching && mode != ModeKeepNonMatching {
		return nil, fmt.Errorf("invalid filter mode %q", mode)
	}
	if keys == nil {
		keys = NewKeySet()
	}

	column, err := field.Resolve(set)
	if err != nil {
		return nil, err
	}

	matching := make([]catalog.Record, 0, set.Len())
	rest := make([]catalog.Record, 0, set.Len())
	for _, record := range set.Records {
		if keys.Contains(record.Value(column)) {
			matching = append(matching, record)
			continue
		}
		rest = append(rest, record)
	}

	result := &PartitionResult{Mode: mode, Column: column, Total: set.Len(), Matching: len(matching)}
	if mode == ModeKeepMatching {
		result.Retained = set.WithRecords(matching)
		result.Excluded = set.WithRecords(rest)
	} else {
		result.Retained = set.WithRecords(rest)
		result.Excluded = set.WithRecords(matching)
	}
	return result, nil
}

func (r *PartitionResult) Summary() *Summary {
	summary := NewSummary("filter")
	summary.Note("mode: " + string(r.Mode))
	summary.Count("total", r.Total)
	summary.Count("matching", r.Matching)
	summary.Count("retained", r.Retained.Len())
	summary.Count("excluded", r.Excluded.Len())
	summary.Expect("retained + excluded == total", r.Retained.Len()+r.Excluded.Len(), r.Total)
	return summary
}
