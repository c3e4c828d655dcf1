package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalogrecon/catalog"
	"catalogrecon/internal/timeutil"
	"catalogrecon/storage"
)

type Writer interface {
	Write(path string, set *catalog.RecordSet) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "tsv":
		return &CSVWriter{Delimiter: '\t'}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

// DetectFormat infers the output format from the path extension, defaulting to csv.
func DetectFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx", "xlsm":
		return "excel"
	case "tsv":
		return "tsv"
	default:
		return "csv"
	}
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	switch normalizeFormat(format) {
	case "excel", "xlsx":
		return ".xlsx"
	case "tsv":
		return ".tsv"
	default:
		return ".csv"
	}
}

// DerivedPath builds "<dir>/<input-base>_<operation>_<stamp><ext>". When dir is
// empty the input's directory is used; database inputs fall back to the
// working directory and use the table name as base.
func DerivedPath(input, operation, format, dir string, now time.Time) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	inputDir := filepath.Dir(input)
	if location, table, err := storage.SplitTableAddress(input); err == nil {
		base = strings.ReplaceAll(table, ".", "_")
		inputDir = filepath.Dir(location)
		if strings.Contains(location, "://") {
			inputDir = "."
		}
	}
	if dir == "" {
		dir = inputDir
	}
	name := fmt.Sprintf("%s_%s_%s%s", base, operation, timeutil.FileStamp(now), Extension(format))
	return filepath.Join(dir, name)
}

// replaceFile writes through a temp file in the destination directory and
// renames it into place only when write succeeds.
func replaceFile(path string, write func(file *os.File) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync output %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move output into place %s: %w", path, err)
	}
	return nil
}
