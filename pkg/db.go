package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsUniqueViolationError is true for a duplicate username, email or exercise name.
func IsUniqueViolationError(err error) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == pgUniqueViolation
}

// IsForeignKeyViolationError is true when a write references a missing row, or a delete
// removes a row still referenced (an exercise used by workout entries).
func IsForeignKeyViolationError(err error) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == pgForeignKeyViolation
}

// ConstraintName returns the violated constraint name, if err is a postgres error.
func ConstraintName(err error) string {
	if pgErr, ok := asPgError(err); ok {
		return pgErr.ConstraintName
	}
	return ""
}
