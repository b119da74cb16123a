// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/budget/internal/model"
)

// TransactionFilter selects transactions dated within [Start, End], optionally
// restricted to one category.
type TransactionFilter struct {
	Start      time.Time
	End        time.Time
	CategoryID *int64
}

// CategoryStore manages user-defined categories.
type CategoryStore interface {
	GetCategories(ctx context.Context, typeFilter *model.CategoryType) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, color string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string, categoryType model.CategoryType, color string) error
	DeleteCategory(ctx context.Context, id int64) error
}

// TransactionStore manages transactions and their aggregates.
type TransactionStore interface {
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactionCountByCategory(ctx context.Context, categoryID int64) (int, error)
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	Summarize(ctx context.Context, filter TransactionFilter) (model.Totals, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CategoryStore
	TransactionStore

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction groups inserts that must commit or roll back together.
type Transaction interface {
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, color string) (*model.Category, error)
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	Commit() error
	Rollback() error
}
