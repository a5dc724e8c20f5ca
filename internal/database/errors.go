package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err came from a unique constraint.
// Uniqueness pre-checks on the write paths race with concurrent inserts,
// so the constraint itself is the final arbiter and callers map this to a
// conflict response. Covers the Postgres runtime driver and the sqlite
// driver used in tests.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
