package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/service"
)

// Summarize totals income and expenses over every transaction matching the
// filter. Unlike GetTransactions it is not capped. Rows are summed as
// decimals so stored REAL amounts do not accumulate float error.
func (s *SQLiteStorage) Summarize(ctx context.Context, filter service.TransactionFilter) (model.Totals, error) {
	if err := validateContext(ctx); err != nil {
		return model.Totals{}, err
	}

	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx, `SELECT type, amount FROM Transactions`+where, args...)
	if err != nil {
		return model.Totals{}, fmt.Errorf("%w: failed to summarize transactions: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	totals := model.Totals{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero}
	for rows.Next() {
		var (
			txType string
			amount float64
		)
		if err := rows.Scan(&txType, &amount); err != nil {
			return model.Totals{}, fmt.Errorf("%w: failed to scan amount: %w", common.ErrStorage, err)
		}
		switch model.CategoryType(txType) {
		case model.CategoryTypeIncome:
			totals.TotalIncome = totals.TotalIncome.Add(decimal.NewFromFloat(amount))
		case model.CategoryTypeExpense:
			totals.TotalExpenses = totals.TotalExpenses.Add(decimal.NewFromFloat(amount))
		}
	}
	if err := rows.Err(); err != nil {
		return model.Totals{}, fmt.Errorf("%w: failed to summarize transactions: %w", common.ErrStorage, err)
	}

	slog.Debug("summarized transactions",
		"income", totals.TotalIncome.String(),
		"expenses", totals.TotalExpenses.String())
	return totals, nil
}
