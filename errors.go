package mappa

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/mappa/driver"
	"github.com/syssam/mappa/intercept"
)

// Standard sentinel errors for common operations.
var (
	// ErrEmptyWhere is returned when an update or delete carries no
	// conditions and the wrapper did not allow an empty WHERE.
	ErrEmptyWhere = errors.New("mappa: refusing update/delete without conditions")

	// ErrMissingID is returned when an operation needs an identifier
	// field but the entity metadata declares none.
	ErrMissingID = errors.New("mappa: entity has no identifier field")

	// ErrTxDone is returned when an operation uses a transaction that
	// was already committed or rolled back.
	ErrTxDone = errors.New("mappa: transaction has already been committed or rolled back")

	// ErrClosed is returned when an operation uses a closed mapper.
	ErrClosed = errors.New("mappa: mapper is closed")
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("mappa: invalid config %s: %s", e.Field, e.Reason)
}

// NewConfigError returns a new ConfigError.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}

// InvalidArgumentError reports a bad call argument, e.g. a page size
// below one.
type InvalidArgumentError struct {
	Name   string
	Reason string
}

// Error returns the error string.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("mappa: invalid argument %s: %s", e.Name, e.Reason)
}

// IsInvalidArgument returns true if the error is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

// MissingFieldError reports an entity field expected but not declared.
type MissingFieldError struct {
	Entity string
	Field  string
}

// Error returns the error string.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("mappa: entity %s has no field %q", e.Entity, e.Field)
}

// IsMissingField returns true if the error is a MissingFieldError.
func IsMissingField(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingFieldError
	return errors.As(err, &e)
}

// InjectionError reports a statement rejected by the security detector
// under the deny policy.
type InjectionError struct {
	SQL     string
	Reasons []string
}

// Error returns the error string.
func (e *InjectionError) Error() string {
	return fmt.Sprintf("mappa: statement rejected by sql security: %s", strings.Join(e.Reasons, "; "))
}

// IsInjectionError returns true if the error is an InjectionError.
func IsInjectionError(err error) bool {
	if err == nil {
		return false
	}
	var e *InjectionError
	return errors.As(err, &e)
}

// IsInterceptorError returns true if the error came from an interceptor
// hook.
func IsInterceptorError(err error) bool {
	return intercept.IsInterceptorError(err)
}

// IsDatabaseError returns true if the error is a normalized backend
// error.
func IsDatabaseError(err error) bool {
	return driver.IsDatabaseError(err)
}

// IsUniqueViolation reports whether the error is a duplicate-key
// violation on any supported backend.
func IsUniqueViolation(err error) bool {
	return driver.IsUniqueViolation(err)
}
