package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"catalogrecon/catalog"

	_ "modernc.org/sqlite"
)

// SQLiteStore reads table snapshots from a local SQLite catalog dump.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("stat sqlite db: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("sqlite path is a directory: %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadTable returns every row of table with columns in query order.
// NULL values become "".
func (s *SQLiteStore) LoadTable(ctx context.Context, table string) (*catalog.RecordSet, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdentifier(table)+";")
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}

	builder := newSnapshotBuilder(s.path+"#"+table, columns)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		builder.add(values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return builder.set, nil
}
