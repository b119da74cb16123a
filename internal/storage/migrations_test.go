package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
)

func columnNames(t *testing.T, store *SQLiteStorage, table string) []string {
	t.Helper()
	tx, err := store.db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	var names []string
	for _, col := range []string{"id", "name", "type", "color", "category_id", "amount", "date", "description"} {
		exists, err := columnExists(tx, table, col)
		require.NoError(t, err)
		if exists {
			names = append(names, col)
		}
	}
	return names
}

func TestMigrate_FreshDatabase(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	assert.ElementsMatch(t, []string{"id", "name", "type", "color"}, columnNames(t, store, "Categories"))
	assert.ElementsMatch(t,
		[]string{"id", "category_id", "amount", "date", "description", "type"},
		columnNames(t, store, "Transactions"))

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_transactions_date'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := mustCreateCategory(t, store, "Rent", model.CategoryTypeExpense, "#123456")

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	got, err := store.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, *cat, *got)
}

func TestMigrate_VersionOneDatabaseGainsColor(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// A database written before categories had a color.
	raw, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE Categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('Expense', 'Income'))
		)`,
		`CREATE TABLE Transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER,
			amount REAL NOT NULL,
			date INTEGER NOT NULL,
			description TEXT,
			type TEXT NOT NULL CHECK (type IN ('Expense', 'Income')),
			FOREIGN KEY (category_id) REFERENCES Categories (id)
		)`,
		`INSERT INTO Categories (name, type) VALUES ('Food', 'Expense')`,
		`PRAGMA user_version = 1`,
	} {
		_, err := raw.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, raw.Close())

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Contains(t, columnNames(t, store, "Categories"), "color")

	cats, err := store.GetCategories(ctx, nil)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Food", cats[0].Name)
	assert.Empty(t, cats[0].Color)

	require.NoError(t, store.UpdateCategory(ctx, cats[0].ID, "Food", model.CategoryTypeExpense, "#FFAA00"))
}

func TestMigrate_NewerDatabaseIsLeftAlone(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.db.Exec(`PRAGMA user_version = 7`)
	require.NoError(t, err)

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, version)
}

func TestRunMigrations_FailedStepDoesNotAdvanceVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	steps := append([]Migration{}, migrations...)
	steps = append(steps, Migration{
		Version:     3,
		Description: "half applied",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`CREATE TABLE Budgets (id INTEGER PRIMARY KEY)`); err != nil {
				return err
			}
			return errors.New("disk full")
		},
	})

	err := store.runMigrations(ctx, steps, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "migration 3 failed")

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	var tables int
	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='Budgets'`).Scan(&tables))
	assert.Zero(t, tables, "rolled back step must not leave its table behind")
}

func TestRunMigrations_MissingStepIsAnError(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.runMigrations(context.Background(), migrations, 4)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "expected 4, got 2")
}

func TestMigrate_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // exercising the nil guard
	err := store.Migrate(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}
