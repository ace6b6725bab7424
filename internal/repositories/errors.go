// Package repositories implements the data-access layer: query construction,
// pagination, single-table CRUD and the entity repositories on top of it.
// Every database failure is translated into the error taxonomy below before
// it leaves the package.
package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies a repository error for the HTTP boundary.
type ErrorKind int

const (
	// KindValidation covers bad input shape, format or business rule.
	KindValidation ErrorKind = iota
	// KindNotFound means a referenced entity is absent.
	KindNotFound
	// KindDuplicate means a uniqueness constraint was violated.
	KindDuplicate
	// KindForeignKey means a reference points at a missing row.
	KindForeignKey
	// KindInternal covers everything else; the original cause is attached.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindForeignKey:
		return "foreign_key"
	default:
		return "internal"
	}
}

// Error is a classified repository error. Op names the repository operation
// that failed, Field the offending input field for validation errors, and
// Cause the underlying error when one exists.
type Error struct {
	Kind    ErrorKind
	Op      string
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func validationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func notFoundError(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// translateError maps a database error onto the taxonomy using the stable
// Postgres error codes: unique violations become KindDuplicate, foreign-key
// violations KindForeignKey, not-null and check violations KindValidation.
// Anything unmapped becomes KindInternal carrying the cause and the operation
// label for diagnostics.
func translateError(op string, err error) *Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return &Error{Kind: KindDuplicate, Op: op, Message: "duplicate value for " + pgErr.ConstraintName, Cause: err}
		case pgerrcode.ForeignKeyViolation:
			return &Error{Kind: KindForeignKey, Op: op, Message: "dangling reference on " + pgErr.ConstraintName, Cause: err}
		case pgerrcode.NotNullViolation:
			return &Error{Kind: KindValidation, Op: op, Field: pgErr.ColumnName, Message: "missing required value", Cause: err}
		case pgerrcode.CheckViolation:
			return &Error{Kind: KindValidation, Op: op, Message: "check constraint " + pgErr.ConstraintName + " violated", Cause: err}
		}
	}
	return &Error{Kind: KindInternal, Op: op, Message: "database operation failed", Cause: err}
}

// KindOf returns the kind of a repository error, or KindInternal when the
// error did not originate here.
func KindOf(err error) ErrorKind {
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return repoErr.Kind
	}
	return KindInternal
}

// FieldOf returns the offending field of a validation error, or "".
func FieldOf(err error) string {
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return repoErr.Field
	}
	return ""
}
