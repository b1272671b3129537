// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
	ErrEmptySlice  = errors.New("slice cannot be empty")
	ErrInvalidID   = errors.New("invalid transaction id")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return common.NewValidationError("amount", "must be a finite number")
	}
	if amount <= 0 {
		return common.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return common.NewValidationError("description", "must not be empty")
	}
	return nil
}

// validateCategory enforces the expense category rule. Income rows carry no
// category at all.
func validateCategory(kind model.Kind, category string) error {
	if kind == model.KindExpense && strings.TrimSpace(category) == "" {
		return common.NewConstraintError("category", "expenses require a category")
	}
	return nil
}

// validateNewTransaction validates a single creation request.
func validateNewTransaction(txn model.NewTransaction) error {
	if !txn.Kind.Valid() {
		return common.NewValidationError("kind", fmt.Sprintf("unknown kind %q", txn.Kind))
	}
	if err := validateDescription(txn.Description); err != nil {
		return err
	}
	if err := validateAmount(txn.Amount); err != nil {
		return err
	}
	return validateCategory(txn.Kind, txn.Category)
}

// validateNewTransactions validates a batch; the first failure wins.
func validateNewTransactions(txns []model.NewTransaction) error {
	if len(txns) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i, txn := range txns {
		if err := validateNewTransaction(txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateUpdate validates edited fields against the kind of the stored row.
func validateUpdate(kind model.Kind, update model.Update) error {
	if err := validateDescription(update.Description); err != nil {
		return err
	}
	if err := validateAmount(update.Amount); err != nil {
		return err
	}
	return validateCategory(kind, update.Category)
}
