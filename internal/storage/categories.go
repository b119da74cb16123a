package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
)

// GetCategories returns categories in creation order.
// A nil typeFilter returns every category.
func (s *SQLiteStorage) GetCategories(ctx context.Context, typeFilter *model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, name, type, color FROM Categories`
	var args []any
	logType := "all"
	if typeFilter != nil {
		if !typeFilter.IsValid() {
			return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, *typeFilter)
		}
		query += ` WHERE type = ?`
		args = append(args, string(*typeFilter))
		logType = string(*typeFilter)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query categories: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating categories: %w", common.ErrStorage, err)
	}

	slog.Debug("retrieved categories", "count", len(categories), "type", logType)
	return categories, nil
}

// GetCategoryByID returns the category with the given id.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT id, name, type, color FROM Categories WHERE id = ?`, id)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// CreateCategory creates a new category and returns it with its assigned id.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(name, categoryType); err != nil {
		return nil, err
	}

	category, err := createCategoryTx(ctx, s.db, name, categoryType, color)
	if err != nil {
		return nil, err
	}

	slog.Info("created new category", "name", name, "type", categoryType, "id", category.ID)
	return category, nil
}

func createCategoryTx(ctx context.Context, q queryable, name string, categoryType model.CategoryType, color string) (*model.Category, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO Categories (name, type, color) VALUES (?, ?, ?)`,
		name, string(categoryType), nullString(color))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create category: %w", common.ErrStorage, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get category ID: %w", common.ErrStorage, err)
	}

	return &model.Category{
		ID:    id,
		Name:  name,
		Type:  categoryType,
		Color: color,
	}, nil
}

// UpdateCategory replaces every mutable field of the category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int64, name string, categoryType model.CategoryType, color string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(name, categoryType); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE Categories SET name = ?, type = ?, color = ? WHERE id = ?`,
		name, string(categoryType), nullString(color), id)
	if err != nil {
		return fmt.Errorf("%w: failed to update category: %w", common.ErrStorage, err)
	}

	if err := requireAffected(result, "category", id); err != nil {
		return err
	}

	slog.Info("updated category", "id", id, "name", name, "type", categoryType)
	return nil
}

// DeleteCategory removes a category. Transactions that reference it keep
// their category_id; readers treat the dangling reference as uncategorized.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM Categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete category: %w", common.ErrStorage, err)
	}

	if err := requireAffected(result, "category", id); err != nil {
		return err
	}

	slog.Info("deleted category", "id", id)
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		cat          model.Category
		categoryType string
		color        sql.NullString
	)
	if err := row.Scan(&cat.ID, &cat.Name, &categoryType, &color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to scan category: %w", common.ErrStorage, err)
	}
	cat.Type = model.CategoryType(categoryType)
	cat.Color = color.String
	return &cat, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// requireAffected turns a zero-row update or delete into common.ErrNotFound.
func requireAffected(result sql.Result, entity string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read affected rows: %w", common.ErrStorage, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %d", common.ErrNotFound, entity, id)
	}
	return nil
}
