package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// DatabaseError wraps a backend error with its normalized code and, for
// constraint violations, the constraint name when the backend reports
// one.
type DatabaseError struct {
	Code       string
	Constraint string
	Err        error
}

// Error returns the error string.
func (e *DatabaseError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("mappa: database error %s (constraint %s): %v", e.Code, e.Constraint, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("mappa: database error %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("mappa: database error: %v", e.Err)
}

// Unwrap returns the underlying driver error.
func (e *DatabaseError) Unwrap() error { return e.Err }

// IsDatabaseError returns true if the error is a DatabaseError.
func IsDatabaseError(err error) bool {
	if err == nil {
		return false
	}
	var e *DatabaseError
	return errors.As(err, &e)
}

// IsUniqueViolation reports whether the error is a duplicate-key
// violation on any supported backend.
func IsUniqueViolation(err error) bool {
	var e *DatabaseError
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case "1062", "1586": // MySQL ER_DUP_ENTRY
		return true
	case "23505": // PostgreSQL unique_violation
		return true
	case "2067", "1555": // SQLite constraint codes
		return true
	}
	return false
}

// normalize wraps driver errors into DatabaseError, extracting the
// backend code. Context and sql sentinel errors pass through untouched
// so callers can keep matching them with errors.Is.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, sql.ErrNoRows),
		errors.Is(err, sql.ErrTxDone),
		errors.Is(err, sql.ErrConnDone):
		return err
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		de := &DatabaseError{Code: strconv.Itoa(int(myErr.Number)), Err: err}
		if myErr.Number == 1062 {
			de.Constraint = "unique"
		}
		return de
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DatabaseError{Code: string(pqErr.Code), Constraint: pqErr.Constraint, Err: err}
	}
	return &DatabaseError{Err: err}
}
