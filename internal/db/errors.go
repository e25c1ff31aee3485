package db

import (
	"errors"

	"github.com/lib/pq"
)

const PgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// failure, optionally on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != PgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
