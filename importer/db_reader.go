package importer

import (
	"context"
	"time"

	"catalogrecon/catalog"
	"catalogrecon/storage"
)

const defaultDBTimeout = 30 * time.Second

// SQLiteReader loads a table snapshot addressed as "<file>#<table>".
type SQLiteReader struct {
	Timeout time.Duration
}

func (r *SQLiteReader) Read(address string) (*catalog.RecordSet, error) {
	path, table, err := storage.SplitTableAddress(address)
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(r.Timeout))
	defer cancel()

	return store.LoadTable(ctx, table)
}

// PostgresReader loads a table snapshot addressed as "postgres://...#<table>".
type PostgresReader struct {
	Timeout time.Duration
}

func (r *PostgresReader) Read(address string) (*catalog.RecordSet, error) {
	dsn, table, err := storage.SplitTableAddress(address)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(r.Timeout))
	defer cancel()

	store, err := storage.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.LoadTable(ctx, table)
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultDBTimeout
	}
	return timeout
}
