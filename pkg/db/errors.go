package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a Postgres unique violation. When
// constraintName is provided, only violations of that constraint match.
func IsUniqueViolation(err error, constraintName string) bool {
	return matchesPGCode(err, pgUniqueViolation, constraintName) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		(constraintName == "" && containsAny(err, "duplicate key value", "UNIQUE constraint failed"))
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return matchesPGCode(err, pgForeignKeyViolation, "") ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		containsAny(err, "FOREIGN KEY constraint failed")
}

// IsNotFound reports whether err is a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// MapError converts persistence failures into typed API errors. Errors that are
// already typed pass through untouched.
func MapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	switch {
	case IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, resource+" not found")
	case IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, resource+" already exists")
	case IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "referenced record does not exist")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "database error")
	}
}

func matchesPGCode(err error, code, constraint string) bool {
	if err == nil {
		return false
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == code && (constraint == "" || pgxErr.ConstraintName == constraint)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

func containsAny(err error, needles ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
