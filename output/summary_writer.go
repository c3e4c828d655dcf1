package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"catalogrecon/reconcile"
)

var summaryHeaders = []string{"Section", "Name", "Value", "Expected", "Status"}

// ValidateSummaryFormat reports whether WriteSummary supports format.
func ValidateSummaryFormat(format string) error {
	switch normalizeFormat(format) {
	case "csv", "tsv", "excel", "xlsx":
		return nil
	default:
		return fmt.Errorf("unsupported output format for summaries: %s", format)
	}
}

// WriteSummary writes the machine-checkable part of a run summary: inputs,
// counters and count checks, one per row.
func WriteSummary(path, format string, summary *reconcile.Summary) error {
	if err := ValidateSummaryFormat(format); err != nil {
		return err
	}

	rows := summaryRows(summary)
	switch normalizeFormat(format) {
	case "csv":
		return writeSummaryCSV(path, ',', rows)
	case "tsv":
		return writeSummaryCSV(path, '\t', rows)
	default:
		return writeSheet(path, summaryHeaders, rows)
	}
}

func summaryRows(summary *reconcile.Summary) [][]string {
	rows := make([][]string, 0, len(summary.Inputs)+len(summary.Counters)+len(summary.Checks)+1)
	rows = append(rows, []string{"operation", summary.Operation, "", "", ""})
	for _, input := range summary.Inputs {
		rows = append(rows, []string{"input", input.Source, strconv.Itoa(input.Rows), "", input.Encoding})
	}
	for _, counter := range summary.Counters {
		rows = append(rows, []string{"counter", counter.Name, strconv.Itoa(counter.Value), "", ""})
	}
	rows = append(rows, []string{"counter", "row_warnings", strconv.Itoa(len(summary.Warnings)), "", ""})
	for _, check := range summary.Checks {
		status := "ok"
		if !check.Holds() {
			status = "failed"
		}
		rows = append(rows, []string{"check", check.Name, strconv.Itoa(check.Got), strconv.Itoa(check.Want), status})
	}
	return rows
}

func writeSummaryCSV(path string, delimiter rune, rows [][]string) error {
	return replaceFile(path, func(file *os.File) error {
		writer := csv.NewWriter(file)
		writer.Comma = delimiter

		if err := writer.Write(summaryHeaders); err != nil {
			return fmt.Errorf("write csv headers: %w", err)
		}
		if err := writer.WriteAll(rows); err != nil {
			return fmt.Errorf("write csv rows: %w", err)
		}
		return nil
	})
}
