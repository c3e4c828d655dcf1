package output

import (
	"fmt"
	"os"

	"catalogrecon/catalog"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, set *catalog.RecordSet) error {
	rows := make([][]string, 0, set.Len())
	for _, record := range set.Records {
		rows = append(rows, set.Row(record))
	}
	return writeSheet(path, set.Header, rows)
}

// TrailingBlankRecords counts the records at the end of set whose values are
// all empty. Spreadsheet readers cannot tell them from unused rows.
func TrailingBlankRecords(set *catalog.RecordSet) int {
	count := 0
	for i := set.Len() - 1; i >= 0; i-- {
		for _, value := range set.Row(set.Records[i]) {
			if value != "" {
				return count
			}
		}
		count++
	}
	return count
}

func writeSheet(path string, headers []string, rows [][]string) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, values := range rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	return replaceFile(path, func(out *os.File) error {
		if err := file.Write(out); err != nil {
			return fmt.Errorf("save excel output %s: %w", path, err)
		}
		return nil
	})
}
