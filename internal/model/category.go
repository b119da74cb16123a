package model

import (
	"fmt"
	"strings"
)

// CategoryType indicates whether a category (and its transactions) is income or expense.
type CategoryType string

const (
	// CategoryTypeExpense represents money leaving the budget.
	CategoryTypeExpense CategoryType = "Expense"
	// CategoryTypeIncome represents money entering the budget.
	CategoryTypeIncome CategoryType = "Income"
)

// CategoryTypes lists the valid types in tab order.
var CategoryTypes = []CategoryType{CategoryTypeExpense, CategoryTypeIncome}

// IsValid reports whether t is one of the known category types.
func (t CategoryType) IsValid() bool {
	return t == CategoryTypeExpense || t == CategoryTypeIncome
}

// TabIndex returns the position of the type in a segmented Expense/Income control.
// Unknown types map to -1.
func (t CategoryType) TabIndex() int {
	for i, ct := range CategoryTypes {
		if ct == t {
			return i
		}
	}
	return -1
}

// CategoryTypeFromTab converts a segmented control index back to a type.
func CategoryTypeFromTab(index int) (CategoryType, error) {
	if index < 0 || index >= len(CategoryTypes) {
		return "", fmt.Errorf("invalid tab index %d", index)
	}
	return CategoryTypes[index], nil
}

// ParseCategoryType parses a type name case-insensitively ("expense", "Income", ...).
func ParseCategoryType(s string) (CategoryType, error) {
	for _, ct := range CategoryTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(ct)) {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unknown category type %q (want Expense or Income)", s)
}

// Category is a user-defined label used to classify transactions.
type Category struct {
	Name  string
	Type  CategoryType
	Color string // optional hex or color token; empty when unset
	ID    int64
}
