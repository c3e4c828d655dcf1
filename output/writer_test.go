package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"catalogrecon/catalog"
	"catalogrecon/importer"
	"catalogrecon/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() *catalog.RecordSet {
	header := []string{"Variant SKU", "Title", "Notes"}
	rows := [][]string{
		{"AB-1", "Widget, large", ""},
		{"ab1 ", `Quoted "name"`, "multi\nline"},
		{"C-3", "Gadget", "ä ö ü"},
	}
	set := &catalog.RecordSet{Source: "sample", Header: header}
	for i, row := range rows {
		set.Records = append(set.Records, catalog.NewRecord(i+2, header, row))
	}
	return set
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"csv", "CSV", "tsv", "excel", "xlsx"} {
		_, err := WriterForFormat(format)
		assert.NoError(t, err, format)
	}
	_, err := WriterForFormat("json")
	assert.Error(t, err)
}

func TestRoundTripThroughLoader(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		format string
		file   string
	}{
		{format: "csv", file: "out.csv"},
		{format: "tsv", file: "out.tsv"},
		{format: "excel", file: "out.xlsx"},
	} {
		tc := tc
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tc.file)
			writer, err := WriterForFormat(tc.format)
			require.NoError(t, err)

			want := sampleSet()
			require.NoError(t, writer.Write(path, want))

			got, err := importer.Load(path, importer.Options{})
			require.NoError(t, err)
			assert.Equal(t, want.Header, got.Header)
			require.Equal(t, want.Len(), got.Len())
			for i := range want.Records {
				assert.Equal(t, want.Row(want.Records[i]), got.Row(got.Records[i]))
			}
		})
	}
}

func TestRoundTripKeepsBlankSingleColumnRows(t *testing.T) {
	t.Parallel()

	header := []string{"sku"}
	want := &catalog.RecordSet{Source: "skus", Header: header}
	for i, value := range []string{"A", "", "B"} {
		want.Records = append(want.Records, catalog.NewRecord(i+2, header, []string{value}))
	}

	for _, file := range []string{"skus.csv", "skus.tsv", "skus.xlsx"} {
		file := file
		t.Run(file, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), file)
			writer, err := WriterForFormat(DetectFormat(path))
			require.NoError(t, err)
			require.NoError(t, writer.Write(path, want))

			got, err := importer.Load(path, importer.Options{})
			require.NoError(t, err)
			require.Equal(t, want.Len(), got.Len())
			for i := range want.Records {
				assert.Equal(t, want.Row(want.Records[i]), got.Row(got.Records[i]))
			}
		})
	}
}

func TestTrailingBlankRecords(t *testing.T) {
	t.Parallel()

	header := []string{"sku", "title"}
	set := &catalog.RecordSet{Header: header}
	for i, row := range [][]string{{"A", "x"}, {"", ""}, {"B", ""}, {"", ""}, {"", ""}} {
		set.Records = append(set.Records, catalog.NewRecord(i+2, header, row))
	}

	assert.Equal(t, 2, TrailingBlankRecords(set))
	assert.Equal(t, 0, TrailingBlankRecords(set.WithRecords(set.Records[:3])))
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, (&CSVWriter{}).Write(path, sampleSet()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())
}

func TestWriteIntoMissingDirectoryFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	err := (&CSVWriter{}).Write(path, sampleSet())
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDetectFormatAndExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "excel", DetectFormat("report.XLSX"))
	assert.Equal(t, "tsv", DetectFormat("report.tsv"))
	assert.Equal(t, "csv", DetectFormat("report"))
	assert.Equal(t, ".xlsx", Extension("excel"))
	assert.Equal(t, ".csv", Extension("csv"))
}

func TestDerivedPath(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)

	got := DerivedPath(filepath.Join("data", "products_export.csv"), "dedupe", "csv", "", now)
	assert.Equal(t, filepath.Join("data", "products_export_dedupe_20260102_030405.csv"), got)

	got = DerivedPath("products.csv", "match", "excel", "reports", now)
	assert.Equal(t, filepath.Join("reports", "products_match_20260102_030405.xlsx"), got)

	got = DerivedPath(filepath.Join("data", "catalog.db")+"#items", "filter", "csv", "", now)
	assert.Equal(t, filepath.Join("data", "items_filter_20260102_030405.csv"), got)

	got = DerivedPath("postgres://user@host/shop#public.items", "extract", "csv", "", now)
	assert.Equal(t, "public_items_extract_20260102_030405.csv", got)
}

func TestWriteSummaryCSV(t *testing.T) {
	t.Parallel()

	summary := reconcile.NewSummary("dedupe")
	summary.AddInput(sampleSet())
	summary.Count("total", 3)
	summary.Count("kept", 2)
	summary.Expect("kept + removed == total", 2, 3)

	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteSummary(path, "csv", summary))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasPrefix(text, "Section,Name,Value,Expected,Status\n"))
	assert.Contains(t, text, "operation,dedupe,,,\n")
	assert.Contains(t, text, "counter,total,3,,\n")
	assert.Contains(t, text, "check,kept + removed == total,2,3,failed\n")
}

func TestWriteSummaryTSVAndUnsupportedFormat(t *testing.T) {
	t.Parallel()

	summary := reconcile.NewSummary("extract")
	summary.Count("total", 1)

	path := filepath.Join(t.TempDir(), "summary.tsv")
	require.NoError(t, WriteSummary(path, DetectFormat(path), summary))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "counter\ttotal\t1\t\t\n")

	assert.NoError(t, ValidateSummaryFormat("xlsx"))
	assert.Error(t, ValidateSummaryFormat("json"))
	assert.Error(t, WriteSummary(filepath.Join(t.TempDir(), "summary.json"), "json", summary))
}
