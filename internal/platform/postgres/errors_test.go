package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift-api/internal/store"
)

func pgError(code, constraint, column string) error {
	return &pgconn.PgError{
		Code:           code,
		ConstraintName: constraint,
		ColumnName:     column,
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", sql.ErrNoRows), store.ErrNotFound},
		{"unique violation", pgError("23505", "tasks_pkey", ""), store.ErrDuplicate},
		{
			"check violation",
			pgError("23514", "tasks_status_check", ""),
			store.ErrInvalidEntity,
		},
		{"not null violation", pgError("23502", "", "owner_id"), store.ErrInvalidEntity},
		{"connection failure", errors.New("dial tcp: connection refused"), store.ErrUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapErrorPreservesDetail(t *testing.T) {
	got := MapError(pgError("23514", "tasks_status_check", ""))
	require.Error(t, got)
	assert.Contains(t, got.Error(), "tasks_status_check")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgError("23505", "tasks_pkey", "")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgError("23505", "", ""))))
	assert.False(t, IsUniqueViolation(pgError("23514", "", "")))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
