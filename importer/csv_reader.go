package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"catalogrecon/catalog"
)

var errNoHeader = errors.New("no header row")

// CSVReader reads delimited text, trying each encoding candidate in order.
// The first candidate that decodes and yields a parseable header wins.
type CSVReader struct {
	Encodings  []string
	Delimiter  rune
	LazyQuotes bool
}

func (r *CSVReader) Read(path string) (*catalog.RecordSet, error) {
	raw, err := readSourceFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", catalog.ErrUnreadable, path)
	}

	candidates := r.Encodings
	if len(candidates) == 0 {
		candidates = DefaultEncodings
	}

	attempts := make([]string, 0, len(candidates))
	for _, name := range candidates {
		encoding, err := LookupEncoding(name)
		if err != nil {
			return nil, err
		}

		decoded, err := encoding.Decode(raw)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", encoding.Name, err))
			continue
		}

		set, err := r.parse(path, decoded)
		if err != nil {
			if errors.Is(err, errNoHeader) {
				return nil, fmt.Errorf("%w: %s: %v", catalog.ErrUnreadable, path, err)
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				attempts = append(attempts, fmt.Sprintf("%s: %v", encoding.Name, err))
				continue
			}
			return nil, err
		}

		set.Encoding = encoding.Name
		return set, nil
	}

	return nil, fmt.Errorf("%w: %s (tried %s)", catalog.ErrEncoding, path, strings.Join(attempts, "; "))
}

func (r *CSVReader) parse(path string, decoded []byte) (*catalog.RecordSet, error) {
	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = r.LazyQuotes
	if r.Delimiter != 0 {
		reader.Comma = r.Delimiter
	}

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, err
	}

	set := &catalog.RecordSet{Source: path}
	set.Header = cleanHeader(set, headers)

	records := make([]catalog.Record, 0, 128)
	attempted := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		attempted++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				set.Warn(parseErr.StartLine, fmt.Sprintf("skipped malformed row: %v", parseErr.Err))
				continue
			}
			return nil, fmt.Errorf("read csv row %d: %w", attempted+1, err)
		}

		line, _ := reader.FieldPos(0)
		if len(row) > len(set.Header) {
			set.Warn(line, fmt.Sprintf("row has %d fields, header has %d; extra fields dropped", len(row), len(set.Header)))
		}
		records = append(records, catalog.NewRecord(line, set.Header, row))
	}

	if attempted > 0 && len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: none of %d rows could be parsed", catalog.ErrUnreadable, path, attempted)
	}

	set.Records = records
	return set, nil
}

// cleanHeader strips a BOM, trims names and makes blank or repeated names unique
// so every column stays addressable.
func cleanHeader(set *catalog.RecordSet, headers []string) []string {
	cleaned := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, header := range headers {
		name := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		seen[name]++
		if count := seen[name]; count > 1 {
			set.Warn(1, fmt.Sprintf("duplicate column %q renamed to %q", name, fmt.Sprintf("%s (%d)", name, count)))
			name = fmt.Sprintf("%s (%d)", name, count)
		}
		cleaned[i] = name
	}
	return cleaned
}

func readSourceFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("open source file %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat source file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source path is a directory: %s", path)
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read source file %s: %w", path, err)
	}
	return raw, nil
}
