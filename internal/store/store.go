// Package store implements the view layer's repository contract over
// database/sql, with a dialect switch covering SQLite and PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/khaledsukkar2/swiftcrud/pkg/crud"
)

// Dialect selects placeholder syntax and insert strategy per driver
type Dialect int

const (
	// SQLite uses ? placeholders and LastInsertId
	SQLite Dialect = iota
	// Postgres uses $n placeholders and RETURNING
	Postgres
)

// placeholder returns the 1-based placeholder for the dialect
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// DialectForDriver maps a database/sql driver name to its dialect
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return SQLite, nil
	case "postgres", "pgx":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Schema describes the table a store reads and writes
type Schema struct {
	// Table is the table name
	Table string

	// PK is the primary key column, assumed integer and auto-generated
	PK string

	// Columns are the data columns, excluding the primary key
	Columns []string
}

// Store is a SQL-backed repository for a single table
type Store struct {
	db      *sql.DB
	schema  Schema
	dialect Dialect
}

var _ crud.Repository = (*Store)(nil)

// New creates a store over the given table schema
func New(db *sql.DB, schema Schema, dialect Dialect) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if schema.Table == "" {
		return nil, fmt.Errorf("schema table name cannot be empty")
	}
	if schema.PK == "" {
		return nil, fmt.Errorf("schema primary key cannot be empty")
	}
	if len(schema.Columns) == 0 {
		return nil, fmt.Errorf("schema for %s declares no columns", schema.Table)
	}
	return &Store{db: db, schema: schema, dialect: dialect}, nil
}

// PKColumn returns the primary key column name
func (s *Store) PKColumn() string {
	return s.schema.PK
}

// selectColumns is the ordered column list every read returns
func (s *Store) selectColumns() []string {
	return append([]string{s.schema.PK}, s.schema.Columns...)
}

// All returns every row of the table ordered by primary key
func (s *Store) All(ctx context.Context) ([]crud.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(s.selectColumns(), ", "), s.schema.Table, s.schema.PK)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.schema.Table, ConvertDBError(err))
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s rows: %w", s.schema.Table, ConvertDBError(err))
	}
	return records, nil
}

// Get returns the row with the given primary key
func (s *Store) Get(ctx context.Context, pk string) (crud.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(s.selectColumns(), ", "), s.schema.Table, s.schema.PK, s.dialect.placeholder(1))

	row := s.db.QueryRowContext(ctx, query, pk)
	record, err := scanRowWithColumns(row, s.selectColumns())
	if err != nil {
		return nil, fmt.Errorf("failed to find %s row by %s: %w",
			s.schema.Table, s.schema.PK, ConvertDBError(err))
	}
	return record, nil
}

// Insert persists a new row and returns it. Data keys outside the schema
// are rejected; the primary key is always generated by the database.
func (s *Store) Insert(ctx context.Context, data crud.Record) (crud.Record, error) {
	columns, values, err := s.writeColumns(data)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = s.dialect.placeholder(i + 1)
	}

	if s.dialect == Postgres {
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			s.schema.Table, strings.Join(columns, ", "),
			strings.Join(placeholders, ", "), strings.Join(s.selectColumns(), ", "))

		row := s.db.QueryRowContext(ctx, query, values...)
		record, err := scanRowWithColumns(row, s.selectColumns())
		if err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", s.schema.Table, ConvertDBError(err))
		}
		return record, nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.schema.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	result, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", s.schema.Table, ConvertDBError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted %s id: %w", s.schema.Table, err)
	}
	return s.Get(ctx, fmt.Sprintf("%d", id))
}

// Update persists changes to the row with the given primary key and returns
// the updated row
func (s *Store) Update(ctx context.Context, pk string, data crud.Record) (crud.Record, error) {
	columns, values, err := s.writeColumns(data)
	if err != nil {
		return nil, err
	}

	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = fmt.Sprintf("%s = %s", col, s.dialect.placeholder(i+1))
	}
	values = append(values, pk)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		s.schema.Table, strings.Join(sets, ", "), s.schema.PK, s.dialect.placeholder(len(columns)+1))

	result, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.schema.Table, ConvertDBError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s update result: %w", s.schema.Table, err)
	}
	if affected == 0 {
		return nil, crud.ErrNotFound
	}

	return s.Get(ctx, pk)
}

// Delete removes the row with the given primary key
func (s *Store) Delete(ctx context.Context, pk string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		s.schema.Table, s.schema.PK, s.dialect.placeholder(1))

	result, err := s.db.ExecContext(ctx, query, pk)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", s.schema.Table, ConvertDBError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read %s delete result: %w", s.schema.Table, err)
	}
	if affected == 0 {
		return crud.ErrNotFound
	}
	return nil
}

// Count returns the number of rows in the table
func (s *Store) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.schema.Table)

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", s.schema.Table, ConvertDBError(err))
	}
	return count, nil
}

// writeColumns filters data down to schema columns in declaration order.
// The primary key is silently dropped; any other unknown key is an error.
func (s *Store) writeColumns(data crud.Record) ([]string, []interface{}, error) {
	for key := range data {
		if key == s.schema.PK {
			continue
		}
		known := false
		for _, col := range s.schema.Columns {
			if col == key {
				known = true
				break
			}
		}
		if !known {
			return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.schema.Table, key)
		}
	}

	var columns []string
	var values []interface{}
	for _, col := range s.schema.Columns {
		if value, ok := data[col]; ok {
			columns = append(columns, col)
			values = append(values, value)
		}
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("no writable columns in data for %s", s.schema.Table)
	}
	return columns, values, nil
}
