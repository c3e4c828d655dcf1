package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"catalogrecon/catalog"
)

type CSVWriter struct {
	Delimiter rune
}

func (w *CSVWriter) Write(path string, set *catalog.RecordSet) error {
	return replaceFile(path, func(file *os.File) error {
		writer := csv.NewWriter(file)
		if w.Delimiter != 0 {
			writer.Comma = w.Delimiter
		}

		if err := writer.Write(set.Header); err != nil {
			return fmt.Errorf("write csv headers: %w", err)
		}

		for _, record := range set.Records {
			row := set.Row(record)
			if isSingleEmptyField(row) {
				// encoding/csv writes this as a blank line, which readers skip.
				writer.Flush()
				if err := writer.Error(); err != nil {
					return fmt.Errorf("write csv row: %w", err)
				}
				if _, err := file.WriteString("\"\"\n"); err != nil {
					return fmt.Errorf("write csv row: %w", err)
				}
				continue
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}

		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("flush csv output: %w", err)
		}
		return nil
	})
}

func isSingleEmptyField(row []string) bool {
	return len(row) == 1 && row[0] == ""
}
