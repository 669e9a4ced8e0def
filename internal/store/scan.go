package store

import (
	"database/sql"

	"github.com/khaledsukkar2/swiftcrud/pkg/crud"
)

// scanRowWithColumns scans a single row with a known column order
func scanRowWithColumns(row *sql.Row, columns []string) (crud.Record, error) {
	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := row.Scan(valuePtrs...); err != nil {
		return nil, err
	}

	return buildRecord(columns, values), nil
}

// scanRows scans every row into a record slice
func scanRows(rows *sql.Rows) ([]crud.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []crud.Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		records = append(records, buildRecord(columns, values))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// buildRecord maps scanned values onto column names. Byte slices become
// strings so templates render text columns directly.
func buildRecord(columns []string, values []interface{}) crud.Record {
	record := make(crud.Record, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			record[col] = string(b)
			continue
		}
		record[col] = values[i]
	}
	return record
}
