// Package pgerrs classifies PostgreSQL errors returned through GORM.
package pgerrs

import (
	"errors"

	"fulfillment/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation and
// returns the violated constraint name when the driver exposes it.
// Errors from both supported drivers, lib/pq and pgx, are recognised.
func IsUniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return pqErr.Constraint, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	return "", false
}

// Conflict turns a unique violation into errs.ConflictError with reason
// and passes every other error through unchanged.
func Conflict(err error, entity, reason string) error {
	if err == nil {
		return nil
	}
	if constraint, ok := IsUniqueViolation(err); ok {
		if constraint != "" {
			reason += " (" + constraint + ")"
		}
		return errs.NewConflictErrorWithCause(entity, reason, err)
	}
	return err
}
