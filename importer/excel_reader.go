package importer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"catalogrecon/catalog"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads one worksheet; the first sheet unless Sheet is set.
type ExcelReader struct {
	Sheet string
}

func (r *ExcelReader) Read(path string) (*catalog.RecordSet, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("stat excel file %s: %w", path, err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName := strings.TrimSpace(r.Sheet)
	if sheetName == "" {
		sheetName = file.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("%w: excel file has no sheets: %s", catalog.ErrUnreadable, path)
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, fmt.Errorf("%w: sheet %s has no header row", catalog.ErrUnreadable, sheetName)
	}

	set := &catalog.RecordSet{Source: path, Encoding: "xlsx"}
	set.Header = cleanHeader(set, rows[0])

	// Blank rows between data rows are records with empty values; trailing
	// blank rows are padding.
	data := rows[1:]
	for len(data) > 0 && isBlankRow(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	records := make([]catalog.Record, 0, len(data))
	for i, row := range data {
		rowNumber := i + 2
		if len(row) > len(set.Header) {
			set.Warn(rowNumber, fmt.Sprintf("row has %d cells, header has %d; extra cells dropped", len(row), len(set.Header)))
		}
		records = append(records, catalog.NewRecord(rowNumber, set.Header, row))
	}

	set.Records = records
	return set, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
