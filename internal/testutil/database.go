// Package testutil provides migrated throwaway databases for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/service"
	"github.com/Veraticus/budget/internal/storage"
	"github.com/Veraticus/budget/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Path       string
	Categories categories.Categories
}

// SetupTestDB creates a migrated database in a temp dir and seeds the given categories.
func SetupTestDB(t *testing.T, seeds ...categories.Seed) *TestDB {
	t.Helper()
	return SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithCategories(seeds...)
	})
}

// SetupTestDBWithBuilder creates a test database using a category builder.
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) *TestDB {
	t.Helper()

	builder := categories.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	dbPath := filepath.Join(t.TempDir(), "budget.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cats, err := builder.Build(ctx, store)
	if err != nil {
		t.Fatalf("failed to build categories: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Path:       dbPath,
		Categories: cats,
		t:          t,
	}
}

// MustGetCategory returns the seeded category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name categories.CategoryName) model.Category {
	db.t.Helper()
	return db.Categories.MustFind(db.t, name)
}

// AddTransaction stores a transaction in the named category or fails the test.
// An empty name leaves the transaction uncategorized.
func (db *TestDB) AddTransaction(name categories.CategoryName, amount string, date time.Time, description string) model.Transaction {
	db.t.Helper()

	txn := model.Transaction{
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Description: description,
		Type:        model.CategoryTypeExpense,
	}
	if name != "" {
		cat := db.MustGetCategory(name)
		txn.CategoryID = &cat.ID
		txn.Type = cat.Type
	}

	if err := db.Storage.CreateTransaction(context.Background(), &txn); err != nil {
		db.t.Fatalf("failed to add transaction: %v", err)
	}
	return txn
}

// WithTransaction executes fn within a database transaction that is always rolled back.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
