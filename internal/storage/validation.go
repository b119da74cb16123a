// Package storage provides the data persistence layer for the budget application.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
)

// Validation errors. All of them match common.ErrValidation.
var (
	ErrNilContext         = fmt.Errorf("%w: context cannot be nil", common.ErrValidation)
	ErrEmptyString        = fmt.Errorf("%w: string parameter cannot be empty", common.ErrValidation)
	ErrNilParameter       = fmt.Errorf("%w: parameter cannot be nil", common.ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", common.ErrValidation)
	ErrInvalidTransaction = fmt.Errorf("%w: invalid transaction", common.ErrValidation)
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

// validateCategory checks the fields every stored category must have.
func validateCategory(name string, categoryType model.CategoryType) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if !categoryType.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, categoryType)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidTransaction, txn.Amount)
	}
	if !txn.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}
