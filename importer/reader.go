package importer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"catalogrecon/catalog"
)

type Reader interface {
	Read(path string) (*catalog.RecordSet, error)
}

// Options configures how sources are read.
type Options struct {
	Format     string
	Encodings  []string
	Delimiter  rune
	LazyQuotes bool
	Sheet      string
	DBTimeout  time.Duration
}

func SupportedFormats() []string {
	return []string{"csv", "tsv", "excel", "sqlite", "postgres"}
}

func ReaderForFormat(format string, options Options) (Reader, error) {
	switch catalog.NormalizeHeader(format) {
	case "csv", "txt":
		return &CSVReader{Encodings: options.Encodings, Delimiter: options.Delimiter, LazyQuotes: options.LazyQuotes}, nil
	case "tsv":
		return &CSVReader{Encodings: options.Encodings, Delimiter: '\t', LazyQuotes: options.LazyQuotes}, nil
	case "excel", "xlsx", "xlsm":
		return &ExcelReader{Sheet: options.Sheet}, nil
	case "sqlite", "sqlite3", "db":
		return &SQLiteReader{Timeout: options.DBTimeout}, nil
	case "postgres", "postgresql":
		return &PostgresReader{Timeout: options.DBTimeout}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// InferFormat returns format when set, otherwise derives it from the path.
// Database sources are addressed as "<path-or-dsn>#<table>".
func InferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	lower := strings.ToLower(strings.TrimSpace(path))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres", nil
	}
	if idx := strings.LastIndex(lower, "#"); idx >= 0 {
		lower = lower[:idx]
	}

	extension := strings.TrimPrefix(filepath.Ext(lower), ".")
	switch extension {
	case "csv", "txt":
		return "csv", nil
	case "tsv":
		return "tsv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	case "db", "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

// Load infers the format of path and reads it into a RecordSet.
func Load(path string, options Options) (*catalog.RecordSet, error) {
	format, err := InferFormat(path, options.Format)
	if err != nil {
		return nil, err
	}
	reader, err := ReaderForFormat(format, options)
	if err != nil {
		return nil, err
	}
	return reader.Read(path)
}
