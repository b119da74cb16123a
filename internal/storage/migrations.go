package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budget/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Create categories and transactions tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS Categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('Expense', 'Income')),
					color TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS Transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_id INTEGER,
					amount REAL NOT NULL,
					date INTEGER NOT NULL,
					description TEXT,
					type TEXT NOT NULL CHECK (type IN ('Expense', 'Income')),
					FOREIGN KEY (category_id) REFERENCES Categories (id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_date ON Transactions(date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add color to categories",
		Up: func(tx *sql.Tx) error {
			// Databases created by version 1 of the current schema already have it.
			exists, err := columnExists(tx, "Categories", "color")
			if err != nil {
				return err
			}
			if exists {
				slog.Debug("Categories.color already present, skipping")
				return nil
			}

			if _, err := tx.Exec(`ALTER TABLE Categories ADD COLUMN color TEXT`); err != nil {
				return fmt.Errorf("failed to add color column: %w", err)
			}
			return nil
		},
	},
}

// columnExists reports whether table has a column with the given name.
func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}

	return false, rows.Err()
}

// SchemaVersion returns the schema version counter stored in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("%w: failed to get schema version: %w", common.ErrStorage, err)
	}
	return version, nil
}

// Migrate applies all pending database migrations. It is safe to call on every start.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.runMigrations(ctx, migrations, ExpectedSchemaVersion)
}

func (s *SQLiteStorage) runMigrations(ctx context.Context, steps []Migration, target int) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if currentVersion >= target {
		if currentVersion > target {
			slog.Warn("Database schema is newer than this build",
				"database_version", currentVersion,
				"expected_version", target)
		}
		return nil
	}

	for _, migration := range steps {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("%w: failed to begin transaction: %w", common.ErrStorage, txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: migration %d failed: %w", common.ErrStorage, migration.Version, upErr)
		}

		// The version bump commits together with the step.
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: failed to update schema version: %w", common.ErrStorage, execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("%w: failed to commit migration %d: %w", common.ErrStorage, migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if finalVersion != target {
		return fmt.Errorf("%w: database schema version mismatch: expected %d, got %d", common.ErrStorage, target, finalVersion)
	}

	return nil
}
