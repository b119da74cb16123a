package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/service"
)

// RecentTransactionsLimit caps GetTransactions to the recent-activity view.
const RecentTransactionsLimit = 30

const transactionColumns = `id, category_id, amount, date, description, type`

// GetTransactions returns the newest transactions dated within the filter's
// inclusive range, at most RecentTransactionsLimit of them. A reversed range
// matches nothing.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args := filterClause(filter)
	query := `SELECT ` + transactionColumns + ` FROM Transactions` + where +
		` ORDER BY date DESC, id DESC LIMIT ?`
	args = append(args, RecentTransactionsLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query transactions: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating transactions: %w", common.ErrStorage, err)
	}

	slog.Debug("retrieved transactions",
		"count", len(transactions),
		"start", filter.Start,
		"end", filter.End)
	return transactions, nil
}

// GetTransactionByID returns the transaction with the given id.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM Transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateTransaction inserts txn and sets its ID.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if err := createTransactionTx(ctx, s.db, txn); err != nil {
		return err
	}

	slog.Info("created transaction",
		"id", txn.ID,
		"type", txn.Type,
		"amount", txn.Amount.String())
	return nil
}

func createTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO Transactions (category_id, amount, date, description, type)
		VALUES (?, ?, ?, ?, ?)`,
		nullInt64(txn.CategoryID),
		txn.Amount.InexactFloat64(),
		model.ToMillis(txn.Date),
		nullString(txn.Description),
		string(txn.Type),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert transaction: %w", common.ErrStorage, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: failed to get transaction ID: %w", common.ErrStorage, err)
	}
	txn.ID = id
	return nil
}

// UpdateTransaction replaces every mutable field of the transaction with txn.ID.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE Transactions
		SET category_id = ?, amount = ?, date = ?, description = ?, type = ?
		WHERE id = ?`,
		nullInt64(txn.CategoryID),
		txn.Amount.InexactFloat64(),
		model.ToMillis(txn.Date),
		nullString(txn.Description),
		string(txn.Type),
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update transaction: %w", common.ErrStorage, err)
	}

	if err := requireAffected(result, "transaction", txn.ID); err != nil {
		return err
	}

	slog.Info("updated transaction", "id", txn.ID)
	return nil
}

// DeleteTransaction removes the transaction with the given id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM Transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete transaction: %w", common.ErrStorage, err)
	}

	if err := requireAffected(result, "transaction", id); err != nil {
		return err
	}

	slog.Info("deleted transaction", "id", id)
	return nil
}

// GetTransactionCountByCategory counts the transactions referencing a category.
func (s *SQLiteStorage) GetTransactionCountByCategory(ctx context.Context, categoryID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM Transactions WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count transactions: %w", common.ErrStorage, err)
	}
	return count, nil
}

// filterClause builds the WHERE clause shared by listing and summaries.
func filterClause(filter service.TransactionFilter) (string, []any) {
	where := ` WHERE date >= ? AND date <= ?`
	args := []any{model.ToMillis(filter.Start), model.ToMillis(filter.End)}
	if filter.CategoryID != nil {
		where += ` AND category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	return where, args
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn         model.Transaction
		categoryID  sql.NullInt64
		amount      float64
		dateMillis  int64
		description sql.NullString
		txnType     string
	)
	if err := row.Scan(&txn.ID, &categoryID, &amount, &dateMillis, &description, &txnType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to scan transaction: %w", common.ErrStorage, err)
	}

	if categoryID.Valid {
		id := categoryID.Int64
		txn.CategoryID = &id
	}
	txn.Amount = decimal.NewFromFloat(amount)
	txn.Date = model.FromMillis(dateMillis)
	txn.Description = description.String
	txn.Type = model.CategoryType(txnType)
	return &txn, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
