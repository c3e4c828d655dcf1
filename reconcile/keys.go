package reconcile

import (
	"catalogrecon/catalog"
	"catalogrecon/internal/keynorm"
)

// KeyField names a logical key and the header names it may appear under.
type KeyField struct {
	Name       string
	Candidates []string
}

// Field builds a KeyField. Without candidates the name itself is the only candidate.
func Field(name string, candidates ...string) KeyField {
	if len(candidates) == 0 {
		candidates = []string{name}
	}
	return KeyField{Name: name, Candidates: candidates}
}

// Resolve returns the actual header for the field in set, or an ErrSchema error.
func (f KeyField) Resolve(set *catalog.RecordSet) (string, error) {
	return set.MustResolveColumn(f.Candidates...)
}

// KeySet is a set of normalized keys. Empty keys are never stored.
type KeySet struct {
	keys map[string]struct{}
}

// NewKeySet builds a set from raw, unnormalized keys.
func NewKeySet(raw ...string) *KeySet {
	set := &KeySet{keys: make(map[string]struct{}, len(raw))}
	for _, value := range raw {
		set.Add(value)
	}
	return set
}

// BuildKeySet collects the normalized keys of field across set.
func BuildKeySet(set *catalog.RecordSet, field KeyField) (*KeySet, error) {
	column, err := field.Resolve(set)
	if err != nil {
		return nil, err
	}
	keys := &KeySet{keys: make(map[string]struct{}, set.Len())}
	for _, record := range set.Records {
		keys.Add(record.Value(column))
	}
	return keys, nil
}

// Add normalizes raw and inserts it. It reports whether the key was new.
func (k *KeySet) Add(raw string) bool {
	key := keynorm.Normalize(raw)
	if key == "" {
		return false
	}
	if _, exists := k.keys[key]; exists {
		return false
	}
	k.keys[key] = struct{}{}
	return true
}

// Merge adds every key of other.
func (k *KeySet) Merge(other *KeySet) {
	if other == nil {
		return
	}
	for key := range other.keys {
		k.keys[key] = struct{}{}
	}
}

// Contains reports whether the normalized form of raw is present.
func (k *KeySet) Contains(raw string) bool {
	key := keynorm.Normalize(raw)
	if key == "" {
		return false
	}
	_, ok := k.keys[key]
	return ok
}

// Len returns the number of distinct normalized keys.
func (k *KeySet) Len() int {
	return len(k.keys)
}

// Index maps normalized keys to the first reference record carrying them.
type Index struct {
	Set        *catalog.RecordSet
	Column     string
	Duplicates int
	entries    map[string]catalog.Record
}

// BuildIndex indexes set by field. Later records with an already-seen key are
// counted in Duplicates and otherwise ignored.
func BuildIndex(set *catalog.RecordSet, field KeyField) (*Index, error) {
	column, err := field.Resolve(set)
	if err != nil {
		return nil, err
	}

	index := &Index{Set: set, Column: column, entries: make(map[string]catalog.Record, set.Len())}
	for _, record := range set.Records {
		key := keynorm.Normalize(record.Value(column))
		if key == "" {
			continue
		}
		if _, exists := index.entries[key]; exists {
			index.Duplicates++
			continue
		}
		index.entries[key] = record
	}
	return index, nil
}

// Lookup finds the reference record for an already-normalized key.
func (i *Index) Lookup(key string) (catalog.Record, bool) {
	if key == "" {
		return catalog.Record{}, false
	}
	record, ok := i.entries[key]
	return record, ok
}

// Len returns the number of indexed keys; repeated keys count once.
func (i *Index) Len() int {
	return len(i.entries)
}

// Source names the indexed record set.
func (i *Index) Source() string {
	if i.Set == nil {
		return ""
	}
	return i.Set.Source
}
