// Package keynorm derives comparison keys from raw catalog identifiers so that
// "ABC-123", "abc123" and " AB-C-1-2-3 " all compare equal.
package keynorm

import (
	"strconv"
	"strings"
)

// Normalize trims surrounding whitespace, removes hyphens and upper-cases the rest.
// An empty result never matches anything.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(trimmed, "-", ""))
}

// NormalizeAny accepts the value shapes found in loaded rows and DB snapshots.
// nil and unsupported types yield "".
func NormalizeAny(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return Normalize(v)
	case *string:
		if v == nil {
			return ""
		}
		return Normalize(*v)
	case []byte:
		return Normalize(string(v))
	case int:
		return Normalize(strconv.Itoa(v))
	case int32:
		return Normalize(strconv.FormatInt(int64(v), 10))
	case int64:
		return Normalize(strconv.FormatInt(v, 10))
	case float64:
		return Normalize(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return ""
	}
}
