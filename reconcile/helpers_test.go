package reconcile

import (
	"catalogrecon/catalog"
)

func recordSet(source string, header []string, rows ...[]string) *catalog.RecordSet {
	set := &catalog.RecordSet{Source: source, Encoding: "utf-8", Header: header}
	for i, row := range rows {
		set.Records = append(set.Records, catalog.NewRecord(i+2, header, row))
	}
	return set
}

func columnValues(set *catalog.RecordSet, column string) []string {
	values := make([]string, 0, set.Len())
	for _, record := range set.Records {
		values = append(values, record.Value(column))
	}
	return values
}
