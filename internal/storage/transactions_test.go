package storage

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/service"
)

func TestCreateTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := mustCreateCategory(t, store, "Coffee", model.CategoryTypeExpense, "")
	when := time.Date(2024, time.March, 3, 8, 15, 30, 250_000_000, time.UTC)

	txn := &model.Transaction{
		CategoryID:  &cat.ID,
		Amount:      decimal.RequireFromString("4.75"),
		Date:        when,
		Description: "flat white",
		Type:        model.CategoryTypeExpense,
	}
	require.NoError(t, store.CreateTransaction(ctx, txn))
	assert.NotZero(t, txn.ID)

	got, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.True(t, txn.Amount.Equal(got.Amount), "amount %s", got.Amount)
	assert.True(t, when.Equal(got.Date), "date %v", got.Date)
	assert.Equal(t, "flat white", got.Description)
	assert.Equal(t, model.CategoryTypeExpense, got.Type)
}

func TestCreateTransaction_WithoutCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := mustCreateTransaction(t, store, nil, "10", time.Now(), "", model.CategoryTypeIncome)

	got, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, got.HasCategory())
	assert.Empty(t, got.Description)
}

func TestCreateTransaction_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		txn  *model.Transaction
		name string
	}{
		{name: "nil", txn: nil},
		{name: "negative amount", txn: &model.Transaction{Amount: decimal.NewFromInt(-3), Date: now, Type: model.CategoryTypeExpense}},
		{name: "missing type", txn: &model.Transaction{Amount: decimal.NewFromInt(3), Date: now}},
		{name: "unknown type", txn: &model.Transaction{Amount: decimal.NewFromInt(3), Date: now, Type: "Refund"}},
		{name: "zero date", txn: &model.Transaction{Amount: decimal.NewFromInt(3), Type: model.CategoryTypeIncome}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.CreateTransaction(ctx, tt.txn)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}

	t.Run("zero amount is allowed", func(t *testing.T) {
		mustCreateTransaction(t, store, nil, "0", now, "free sample", model.CategoryTypeExpense)
	})
}

func TestGetTransactions_RangeAndCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	food := mustCreateCategory(t, store, "Food", model.CategoryTypeExpense, "")
	fuel := mustCreateCategory(t, store, "Fuel", model.CategoryTypeExpense, "")

	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.May, 31, 23, 59, 59, 0, time.UTC)

	before := mustCreateTransaction(t, store, &food.ID, "1", start.Add(-time.Millisecond), "before", model.CategoryTypeExpense)
	atStart := mustCreateTransaction(t, store, &food.ID, "2", start, "at start", model.CategoryTypeExpense)
	middle := mustCreateTransaction(t, store, &fuel.ID, "3", start.Add(10*24*time.Hour), "middle", model.CategoryTypeExpense)
	atEnd := mustCreateTransaction(t, store, &food.ID, "4", end, "at end", model.CategoryTypeExpense)
	after := mustCreateTransaction(t, store, &food.ID, "5", end.Add(time.Millisecond), "after", model.CategoryTypeExpense)

	ids := func(txns []model.Transaction) []int64 {
		out := make([]int64, 0, len(txns))
		for _, txn := range txns {
			out = append(out, txn.ID)
		}
		return out
	}

	got, err := store.GetTransactions(ctx, service.TransactionFilter{Start: start, End: end})
	require.NoError(t, err)
	assert.Equal(t, []int64{atEnd.ID, middle.ID, atStart.ID}, ids(got))
	assert.NotContains(t, ids(got), before.ID)
	assert.NotContains(t, ids(got), after.ID)

	got, err = store.GetTransactions(ctx, service.TransactionFilter{Start: start, End: end, CategoryID: &food.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{atEnd.ID, atStart.ID}, ids(got))

	missing := int64(999)
	got, err = store.GetTransactions(ctx, service.TransactionFilter{Start: start, End: end, CategoryID: &missing})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetTransactions_CappedAndSortedNewestFirst(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of date order so the result order comes from the query.
	for i := 0; i < RecentTransactionsLimit+15; i++ {
		offset := (i * 7) % (RecentTransactionsLimit + 15)
		mustCreateTransaction(t, store, nil, "1", base.Add(time.Duration(offset)*time.Hour), "", model.CategoryTypeExpense)
	}

	got, err := store.GetTransactions(ctx, service.TransactionFilter{
		Start: base,
		End:   base.Add(365 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, RecentTransactionsLimit)

	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].Date.After(got[j].Date)
	}), "transactions must be sorted by date descending")

	newest := base.Add(time.Duration(RecentTransactionsLimit+14) * time.Hour)
	assert.True(t, newest.Equal(got[0].Date))
}

func TestGetTransactions_ReversedRangeIsEmpty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	err := store.CreateTransaction(ctx, &model.Transaction{
		Date:        now,
		Description: "Lunch",
		Amount:      decimal.RequireFromString("12.50"),
		Type:        model.CategoryTypeExpense,
	})
	require.NoError(t, err)

	got, err := store.GetTransactions(ctx, service.TransactionFilter{Start: now, End: now.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := mustCreateCategory(t, store, "Salary", model.CategoryTypeIncome, "")
	txn := mustCreateTransaction(t, store, nil, "100", time.Now(), "draft", model.CategoryTypeExpense)

	newDate := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	updated := &model.Transaction{
		ID:          txn.ID,
		CategoryID:  &cat.ID,
		Amount:      decimal.RequireFromString("3100.10"),
		Date:        newDate,
		Description: "July pay",
		Type:        model.CategoryTypeIncome,
	}
	require.NoError(t, store.UpdateTransaction(ctx, updated))

	got, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.True(t, updated.Amount.Equal(got.Amount))
	assert.True(t, newDate.Equal(got.Date))
	assert.Equal(t, "July pay", got.Description)
	assert.Equal(t, model.CategoryTypeIncome, got.Type)

	t.Run("clearing the category", func(t *testing.T) {
		updated.CategoryID = nil
		require.NoError(t, store.UpdateTransaction(ctx, updated))
		got, err := store.GetTransactionByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("missing id", func(t *testing.T) {
		ghost := *updated
		ghost.ID = txn.ID + 100
		assert.ErrorIs(t, store.UpdateTransaction(ctx, &ghost), common.ErrNotFound)
	})

	t.Run("invalid amount", func(t *testing.T) {
		bad := *updated
		bad.Amount = decimal.NewFromInt(-1)
		assert.ErrorIs(t, store.UpdateTransaction(ctx, &bad), common.ErrValidation)
	})
}

func TestDeleteTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	first := mustCreateTransaction(t, store, nil, "1", now, "", model.CategoryTypeExpense)
	second := mustCreateTransaction(t, store, nil, "2", now, "", model.CategoryTypeExpense)

	require.NoError(t, store.DeleteTransaction(ctx, first.ID))

	// A refetch after the delete observes it.
	got, err := store.GetTransactions(ctx, service.TransactionFilter{Start: now.Add(-time.Hour), End: now.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)

	assert.ErrorIs(t, store.DeleteTransaction(ctx, first.ID), common.ErrNotFound)

	_, err = store.GetTransactionByID(ctx, first.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetTransactionCountByCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := mustCreateCategory(t, store, "Food", model.CategoryTypeExpense, "")
	now := time.Now()
	mustCreateTransaction(t, store, &cat.ID, "1", now, "", model.CategoryTypeExpense)
	mustCreateTransaction(t, store, &cat.ID, "2", now, "", model.CategoryTypeExpense)
	mustCreateTransaction(t, store, nil, "3", now, "", model.CategoryTypeExpense)

	count, err := store.GetTransactionCountByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.GetTransactionCountByCategory(ctx, cat.ID+1)
	require.NoError(t, err)
	assert.Zero(t, count)
}
