package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"catalogrecon/catalog"
)

func writeCatalogDB(t *testing.T, statements ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			t.Fatalf("exec %q: %v", statement, err)
		}
	}
	return path
}

func TestSQLiteStore_LoadTable(t *testing.T) {
	t.Parallel()

	path := writeCatalogDB(t,
		`CREATE TABLE products (sku TEXT, handle TEXT, qty INTEGER, price REAL);`,
		`INSERT INTO products VALUES ('SKU-001', 'acco-paper-clip', 4, 1.5);`,
		`INSERT INTO products VALUES ('SKU-002', NULL, 0, 2);`,
	)

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	set, err := store.LoadTable(context.Background(), "products")
	if err != nil {
		t.Fatalf("load table: %v", err)
	}

	wantHeader := []string{"sku", "handle", "qty", "price"}
	if len(set.Header) != len(wantHeader) {
		t.Fatalf("unexpected header: %v", set.Header)
	}
	for i, column := range wantHeader {
		if set.Header[i] != column {
			t.Fatalf("unexpected header column %d: want %q, got %q", i, column, set.Header[i])
		}
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", set.Len())
	}

	first := set.Records[0]
	if got := first.Value("handle"); got != "acco-paper-clip" {
		t.Fatalf("unexpected handle: %q", got)
	}
	if got := first.Value("qty"); got != "4" {
		t.Fatalf("unexpected qty: %q", got)
	}
	if got := first.Value("price"); got != "1.5" {
		t.Fatalf("unexpected price: %q", got)
	}

	second := set.Records[1]
	if value, ok := second.Get("handle"); !ok || value != "" {
		t.Fatalf("expected NULL handle to load as empty string, got %q (present=%v)", value, ok)
	}
	if second.RowNumber != 3 {
		t.Fatalf("unexpected row number: %d", second.RowNumber)
	}
}

func TestSQLiteStore_LoadTableRejectsInjection(t *testing.T) {
	t.Parallel()

	path := writeCatalogDB(t, `CREATE TABLE products (sku TEXT);`)
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := store.LoadTable(context.Background(), "products; DROP TABLE products"); err == nil {
		t.Fatalf("expected invalid table name error")
	}
}

func TestOpenSQLite_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(filepath.Join(t.TempDir(), "missing.db"))
	if !errors.Is(err, catalog.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}

func TestSplitTableAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		address      string
		wantLocation string
		wantTable    string
		wantErr      bool
	}{
		{name: "sqlite path", address: "./catalog.db#products", wantLocation: "./catalog.db", wantTable: "products"},
		{name: "postgres url", address: "postgres://app@db:5432/shop#public.products", wantLocation: "postgres://app@db:5432/shop", wantTable: "public.products"},
		{name: "missing table", address: "./catalog.db", wantErr: true},
		{name: "empty location", address: "#products", wantErr: true},
		{name: "bad table", address: "x.db#pro-ducts", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			location, table, err := SplitTableAddress(tc.address)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.address)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if location != tc.wantLocation || table != tc.wantTable {
				t.Fatalf("unexpected split: location=%q table=%q", location, table)
			}
		})
	}
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value any
		want  string
	}{
		{value: nil, want: ""},
		{value: "x", want: "x"},
		{value: []byte("y"), want: "y"},
		{value: int64(42), want: "42"},
		{value: 2.25, want: "2.25"},
		{value: true, want: "true"},
	}
	for _, tc := range tests {
		if got := formatCell(tc.value); got != tc.want {
			t.Fatalf("formatCell(%v): want %q, got %q", tc.value, tc.want, got)
		}
	}
}
