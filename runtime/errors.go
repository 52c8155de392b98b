package runtime

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("runtime: row not found")

	// ErrNotSingular is returned when an operation that expects exactly
	// one row matches zero or multiple rows.
	ErrNotSingular = errors.New("runtime: row not singular")
)

// NotFoundError represents an error when a row is not found.
type NotFoundError struct {
	table string
	id    any // Optional: the key that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("runtime: %s row not found (id=%v)", e.table, e.id)
	}
	return fmt.Sprintf("runtime: %s row not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table name.
func (e *NotFoundError) Table() string {
	return e.table
}

// ID returns the key that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the key that was searched for.
func NewNotFoundErrorWithID(table string, id any) *NotFoundError {
	return &NotFoundError{table: table, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NotSingularError represents an error when an operation expects a
// singular row but matches zero or multiple rows.
type NotSingularError struct {
	table string
	count int // Number of rows matched (-1 if unknown)
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	if e.count >= 0 {
		return fmt.Sprintf("runtime: %s row not singular (got %d rows, expected 1)", e.table, e.count)
	}
	return fmt.Sprintf("runtime: %s row not singular", e.table)
}

// Is reports whether the target error matches NotSingularError.
// This allows errors.Is(notSingularErr, ErrNotSingular) to return true.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// Table returns the table name.
func (e *NotSingularError) Table() string {
	return e.table
}

// Count returns the number of rows, or -1 if unknown.
func (e *NotSingularError) Count() int {
	return e.count
}

// NewNotSingularError returns a new NotSingularError for the given table.
func NewNotSingularError(table string) *NotSingularError {
	return &NotSingularError{table: table, count: -1}
}

// NewNotSingularErrorWithCount returns a new NotSingularError with the row count.
func NewNotSingularErrorWithCount(table string, count int) *NotSingularError {
	return &NotSingularError{table: table, count: count}
}

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}
