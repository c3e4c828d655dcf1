package storage

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"catalogrecon/catalog"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SplitTableAddress splits "<dsn-or-path>#<table>" into its parts.
func SplitTableAddress(address string) (string, string, error) {
	idx := strings.LastIndex(address, "#")
	if idx < 0 {
		return "", "", fmt.Errorf("database source %q must name a table as <source>#<table>", address)
	}
	location := strings.TrimSpace(address[:idx])
	table := strings.TrimSpace(address[idx+1:])
	if location == "" {
		return "", "", fmt.Errorf("database source %q has an empty location", address)
	}
	if err := ValidateTableName(table); err != nil {
		return "", "", err
	}
	return location, table, nil
}

// ValidateTableName accepts plain or schema-qualified identifiers only.
func ValidateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

func quoteIdentifier(table string) string {
	parts := strings.Split(table, ".")
	for i, part := range parts {
		parts[i] = `"` + part + `"`
	}
	return strings.Join(parts, ".")
}

// snapshotBuilder accumulates query rows into a RecordSet.
type snapshotBuilder struct {
	set *catalog.RecordSet
}

func newSnapshotBuilder(source string, columns []string) *snapshotBuilder {
	return &snapshotBuilder{set: &catalog.RecordSet{
		Source:   source,
		Encoding: "database",
		Header:   append([]string(nil), columns...),
		Records:  make([]catalog.Record, 0, 128),
	}}
}

func (b *snapshotBuilder) add(values []any) {
	row := make([]string, len(values))
	for i, value := range values {
		row[i] = formatCell(value)
	}
	rowNumber := len(b.set.Records) + 2
	b.set.Records = append(b.set.Records, catalog.NewRecord(rowNumber, b.set.Header, row))
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return ""
		}
		if _, nested := inner.(driver.Valuer); nested {
			return fmt.Sprint(inner)
		}
		return formatCell(inner)
	default:
		return fmt.Sprint(v)
	}
}
