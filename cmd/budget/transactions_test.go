package main

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/service"
	"github.com/Veraticus/budget/internal/storage"
	"github.com/Veraticus/budget/internal/testutil/categories"
)

func februaryFilter() service.TransactionFilter {
	start, end := currentMonth(fixedNow)
	return service.TransactionFilter{Start: start, End: end}
}

func TestTransactionsAdd(t *testing.T) {
	db := useTestDatabase(t, categories.SeedSalary, categories.SeedGroceries)
	ctx := context.Background()

	out, err := runCommand(t, transactionsCmd(), "", "add", "--amount", "2500", "--category", "Salary", "--date", "2024-02-01", "--description", "pay")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded income of $2,500.00 on 2024-02-01")

	_, err = runCommand(t, transactionsCmd(), "", "add", "-a", "120.50", "-c", "2")
	require.NoError(t, err)

	_, err = runCommand(t, transactionsCmd(), "", "add", "-a", "3", "--type", "income")
	require.NoError(t, err)

	txns, err := db.Storage.GetTransactions(ctx, februaryFilter())
	require.NoError(t, err)
	require.Len(t, txns, 3)

	byDescription := make(map[string]model.Transaction)
	for _, txn := range txns {
		byDescription[txn.Description] = txn
	}

	pay := byDescription["pay"]
	assert.Equal(t, model.CategoryTypeIncome, pay.Type)
	require.NotNil(t, pay.CategoryID)
	assert.True(t, decimal.NewFromInt(2500).Equal(pay.Amount))

	// Defaults: category type, today's date.
	var groceries, loose model.Transaction
	for _, txn := range txns {
		switch {
		case txn.Amount.Equal(decimal.RequireFromString("120.5")):
			groceries = txn
		case txn.Amount.Equal(decimal.NewFromInt(3)):
			loose = txn
		}
	}
	assert.Equal(t, model.CategoryTypeExpense, groceries.Type)
	assert.Equal(t, fixedNow.UnixMilli(), groceries.Date.UnixMilli())
	assert.Equal(t, model.CategoryTypeIncome, loose.Type)
	assert.Nil(t, loose.CategoryID)
}

func TestTransactionsAddRejectsBadInput(t *testing.T) {
	db := useTestDatabase(t, categories.SeedGroceries)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "negative amount", args: []string{"add", "--amount", "-5"}, want: common.ErrValidation},
		{name: "letters", args: []string{"add", "--amount", "12a3"}, want: common.ErrValidation},
		{name: "bad date", args: []string{"add", "--amount", "5", "--date", "02/01/2024"}, want: common.ErrValidation},
		{name: "unknown category", args: []string{"add", "--amount", "5", "--category", "Rent"}, want: common.ErrNotFound},
		{name: "bad type", args: []string{"add", "--amount", "5", "--type", "loan"}, want: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, transactionsCmd(), "", tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := runCommand(t, transactionsCmd(), "", "add")
	assert.Error(t, err, "amount is required")

	txns, err := db.Storage.GetTransactions(context.Background(), februaryFilter())
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestTransactionsList(t *testing.T) {
	db := useTestDatabase(t, categories.SeedSalary, categories.SeedGroceries)
	db.AddTransaction(categories.CategorySalary, "2500", time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC), "pay")
	db.AddTransaction(categories.CategoryGroceries, "120.50", time.Date(2024, time.February, 3, 9, 0, 0, 0, time.UTC), "market")
	db.AddTransaction("", "9.99", time.Date(2024, time.February, 4, 9, 0, 0, 0, time.UTC), "mystery")
	db.AddTransaction(categories.CategoryGroceries, "77", time.Date(2024, time.January, 30, 9, 0, 0, 0, time.UTC), "last month")

	out, err := runCommand(t, transactionsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "$2,500.00")
	assert.Contains(t, out, "-$120.50")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Uncategorized")
	assert.NotContains(t, out, "last month")
	assert.Less(t, strings.Index(out, "mystery"), strings.Index(out, "market"), "newest first")

	out, err = runCommand(t, transactionsCmd(), "", "list", "--from", "2024-01-01", "--to", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "last month")
	assert.NotContains(t, out, "market")

	out, err = runCommand(t, transactionsCmd(), "", "list", "--category", "Salary")
	require.NoError(t, err)
	assert.Contains(t, out, "pay")
	assert.NotContains(t, out, "market")

	out, err = runCommand(t, transactionsCmd(), "", "list", "--from", "2023-01-01", "--to", "2023-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions between 2023-01-01 and 2023-01-31")
}

func TestTransactionsListShowsDanglingCategoryAsUncategorized(t *testing.T) {
	db := useTestDatabase(t, categories.SeedGroceries)
	db.AddTransaction(categories.CategoryGroceries, "10", fixedNow, "orphan")

	require.NoError(t, db.Storage.DeleteCategory(context.Background(), db.MustGetCategory(categories.CategoryGroceries).ID))

	out, err := runCommand(t, transactionsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "orphan")
	assert.Contains(t, out, "Uncategorized")
	assert.NotContains(t, out, "Groceries")
}

func TestTransactionsListCapped(t *testing.T) {
	db := useTestDatabase(t)
	for i := 0; i < storage.RecentTransactionsLimit+5; i++ {
		db.AddTransaction("", "1", fixedNow.Add(-time.Duration(i)*time.Minute), fmt.Sprintf("row-%02d", i))
	}

	out, err := runCommand(t, transactionsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "row-00")
	assert.NotContains(t, out, fmt.Sprintf("row-%02d", storage.RecentTransactionsLimit))
	assert.Contains(t, out, "Showing the 30 most recent")
}

func TestTransactionsUpdate(t *testing.T) {
	db := useTestDatabase(t, categories.SeedSalary, categories.SeedGroceries)
	txn := db.AddTransaction(categories.CategoryGroceries, "10", fixedNow, "market")
	ctx := context.Background()

	_, err := runCommand(t, transactionsCmd(), "", "update", fmt.Sprint(txn.ID), "--amount", "12.25", "--description", "farmers market")
	require.NoError(t, err)

	stored, err := db.Storage.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.25").Equal(stored.Amount))
	assert.Equal(t, "farmers market", stored.Description)
	assert.Equal(t, txn.CategoryID, stored.CategoryID)

	_, err = runCommand(t, transactionsCmd(), "", "update", fmt.Sprint(txn.ID), "--category", "Salary")
	require.NoError(t, err)

	stored, err = db.Storage.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeIncome, stored.Type)

	_, err = runCommand(t, transactionsCmd(), "", "update", fmt.Sprint(txn.ID), "--uncategorize", "--date", "2024-01-15")
	require.NoError(t, err)

	stored, err = db.Storage.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CategoryID)
	assert.Equal(t, "2024-01-15", stored.Date.UTC().Format(dateLayout))

	_, err = runCommand(t, transactionsCmd(), "", "update", "999", "--amount", "1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = runCommand(t, transactionsCmd(), "", "update", fmt.Sprint(txn.ID))
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Nothing to update: pass at least one field flag", common.Describe(err))
}

func TestTransactionsDelete(t *testing.T) {
	db := useTestDatabase(t)
	txn := db.AddTransaction("", "42", fixedNow, "gone")
	ctx := context.Background()

	out, err := runCommand(t, transactionsCmd(), "no\n", "delete", fmt.Sprint(txn.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Delete the expense of $42.00 on")

	_, err = db.Storage.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)

	_, err = runCommand(t, transactionsCmd(), "yes\n", "delete", fmt.Sprint(txn.ID))
	require.NoError(t, err)

	_, err = db.Storage.GetTransactionByID(ctx, txn.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = runCommand(t, transactionsCmd(), "", "delete", fmt.Sprint(txn.ID), "--force")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
