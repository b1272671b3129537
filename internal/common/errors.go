// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Ledger errors.
	ErrValidation    = errors.New("validation failed")
	ErrConstraint    = errors.New("constraint violated")
	ErrNotFound      = errors.New("not found")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrStorage       = errors.New("storage failure")
	ErrPartialBatch  = errors.New("partial batch")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports a caller-supplied value that violates a field
// constraint. It is raised before anything touches the database.
type ValidationError struct {
	Field  string
	Reason string
	// Constraint marks rule violations that depend on another field, such as
	// an expense without a category.
	Constraint bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrValidation, and ErrConstraint for constraint violations.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.Constraint && target == ErrConstraint)
}

// NewValidationError creates a field validation error.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewConstraintError creates a cross-field constraint error.
func NewConstraintError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, Constraint: true}
}

// NotFoundError reports a reference to a transaction id that does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %d not found", e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidPeriodError reports a year or month token that could not be parsed.
type InvalidPeriodError struct {
	Field string
	Token string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Token)
}

// Is matches ErrInvalidPeriod.
func (e *InvalidPeriodError) Is(target error) bool {
	return target == ErrInvalidPeriod
}

// StorageError wraps a failure of the underlying database engine.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err unless it is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// PartialBatchError reports an installment batch that stopped part way.
// Inserted holds the ids that were persisted before the failure.
type PartialBatchError struct {
	Err      error
	Inserted []int64
	Total    int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("only %d of %d installments saved: %v", len(e.Inserted), e.Total, e.Err)
}

func (e *PartialBatchError) Unwrap() error {
	return e.Err
}

// Is matches ErrPartialBatch.
func (e *PartialBatchError) Is(target error) bool {
	return target == ErrPartialBatch
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable reports errors known to be transient: rate limits, deadlines
// and remote failures marked retryable. Ledger errors never qualify.
func IsRetryable(err error) bool {
	if final(err) {
		return false
	}
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var re *RetryableError
	return errors.As(err, &re)
}
