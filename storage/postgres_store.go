package storage

import (
	"context"
	"fmt"
	"strings"

	"catalogrecon/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads table snapshots from a live catalog database.
type PostgresStore struct {
	pool   *pgxpool.Pool
	source string
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool, source: redactDSN(pool.Config().ConnConfig)}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// LoadTable returns every row of table with columns in query order.
func (s *PostgresStore) LoadTable(ctx context.Context, table string) (*catalog.RecordSet, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	identifier := pgx.Identifier(strings.Split(table, "."))
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+identifier.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name
	}

	builder := newSnapshotBuilder(s.source+"#"+table, columns)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read %s row: %w", table, err)
		}
		builder.add(values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return builder.set, nil
}

func redactDSN(cfg *pgx.ConnConfig) string {
	return fmt.Sprintf("postgres://%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database)
}
