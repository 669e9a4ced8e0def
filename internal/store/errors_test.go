package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/khaledsukkar2/swiftcrud/pkg/crud"
)

func TestConvertDBError_Nil(t *testing.T) {
	assert.Nil(t, ConvertDBError(nil))
}

func TestConvertDBError_NoRows(t *testing.T) {
	assert.ErrorIs(t, ConvertDBError(sql.ErrNoRows), crud.ErrNotFound)

	wrapped := fmt.Errorf("lookup failed: %w", sql.ErrNoRows)
	assert.ErrorIs(t, ConvertDBError(wrapped), crud.ErrNotFound)
}

func TestConvertDBError_Postgres(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"23505", ErrUniqueViolation},
		{"23503", ErrForeignKeyViolation},
		{"23514", ErrCheckViolation},
		{"23502", ErrNotNullViolation},
	}

	for _, tt := range tests {
		err := ConvertDBError(&pgconn.PgError{Code: tt.code, Detail: "details"})
		assert.ErrorIs(t, err, tt.want, "code %s", tt.code)
	}

	// Unmapped codes pass through unchanged
	other := &pgconn.PgError{Code: "42P01"}
	assert.Equal(t, error(other), ConvertDBError(other))
}

func TestConvertDBError_SQLite(t *testing.T) {
	tests := []struct {
		code sqlite3.ErrNoExtended
		want error
	}{
		{sqlite3.ErrConstraintUnique, ErrUniqueViolation},
		{sqlite3.ErrConstraintPrimaryKey, ErrUniqueViolation},
		{sqlite3.ErrConstraintForeignKey, ErrForeignKeyViolation},
		{sqlite3.ErrConstraintCheck, ErrCheckViolation},
		{sqlite3.ErrConstraintNotNull, ErrNotNullViolation},
	}

	for _, tt := range tests {
		err := ConvertDBError(sqlite3.Error{
			Code:         sqlite3.ErrConstraint,
			ExtendedCode: tt.code,
		})
		assert.ErrorIs(t, err, tt.want, "extended code %d", tt.code)
	}
}

func TestConvertDBError_Passthrough(t *testing.T) {
	plain := errors.New("connection refused")
	assert.Equal(t, plain, ConvertDBError(plain))
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrap: %w", ErrUniqueViolation)))
	assert.False(t, IsUniqueViolation(ErrForeignKeyViolation))
	assert.True(t, IsForeignKeyViolation(ErrForeignKeyViolation))
	assert.False(t, IsForeignKeyViolation(nil))
}
