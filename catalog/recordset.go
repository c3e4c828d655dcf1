package catalog

// RecordSet is an ordered collection of records loaded from one source.
type RecordSet struct {
	Source   string
	Encoding string
	Header   []string
	Records  []Record
	Warnings []RowWarning
}

// Len returns the number of data records.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Row returns the record values in header order.
func (s *RecordSet) Row(record Record) []string {
	row := make([]string, len(s.Header))
	for i, column := range s.Header {
		row[i] = record.Values[column]
	}
	return row
}

// HasColumn reports whether column is an exact header name.
func (s *RecordSet) HasColumn(column string) bool {
	for _, header := range s.Header {
		if header == column {
			return true
		}
	}
	return false
}

// ResolveColumn maps candidate names to an actual header. Exact matches win over
// loose matches, and earlier candidates win over later ones.
func (s *RecordSet) ResolveColumn(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		if s.HasColumn(candidate) {
			return candidate, true
		}
	}
	for _, candidate := range candidates {
		want := NormalizeHeader(candidate)
		if want == "" {
			continue
		}
		for _, header := range s.Header {
			if NormalizeHeader(header) == want {
				return header, true
			}
		}
	}
	return "", false
}

// MustResolveColumn is ResolveColumn returning an ErrSchema error when nothing matches.
func (s *RecordSet) MustResolveColumn(candidates ...string) (string, error) {
	column, ok := s.ResolveColumn(candidates...)
	if !ok {
		return "", MissingColumnError(s.Source, candidates)
	}
	return column, nil
}

// WithRecords returns a copy of the set metadata holding records instead.
func (s *RecordSet) WithRecords(records []Record) *RecordSet {
	return &RecordSet{
		Source:   s.Source,
		Encoding: s.Encoding,
		Header:   append([]string(nil), s.Header...),
		Records:  records,
		Warnings: append([]RowWarning(nil), s.Warnings...),
	}
}

// Project returns a copy restricted to columns, in the given order.
// Every column must be an exact header name.
func (s *RecordSet) Project(columns []string) (*RecordSet, error) {
	for _, column := range columns {
		if !s.HasColumn(column) {
			return nil, MissingColumnError(s.Source, []string{column})
		}
	}

	records := make([]Record, 0, len(s.Records))
	for _, record := range s.Records {
		values := make(map[string]string, len(columns))
		for _, column := range columns {
			values[column] = record.Values[column]
		}
		records = append(records, Record{RowNumber: record.RowNumber, Values: values})
	}

	out := s.WithRecords(records)
	out.Header = append([]string(nil), columns...)
	return out, nil
}

// Warn appends a row warning for this set.
func (s *RecordSet) Warn(row int, message string) {
	s.Warnings = append(s.Warnings, RowWarning{Source: s.Source, Row: row, Message: message})
}
