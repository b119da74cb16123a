package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/budget/internal/cli"
	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/ofx"
	"github.com/Veraticus/budget/internal/service"
	"github.com/Veraticus/budget/internal/summary"
)

func importOFXCmd() *cobra.Command {
	var expenseCategory, incomeCategory string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Credits become Income and debits become Expense. Imported transactions are
filed under the given categories, or left Uncategorized.

Examples:
  # Import single file
  budget import-ofx ~/Downloads/checking_jan_2024.qfx

  # Import all QFX files in a directory into two categories
  budget import-ofx ~/Downloads/*.qfx --expense-category Groceries --income-category Salary`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			files, err := expandFilePatterns(args)
			if err != nil {
				return err
			}

			drafts := parseOFXFiles(ctx, files)
			if len(drafts) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := assignCategories(ctx, store, drafts, expenseCategory, incomeCategory); err != nil {
				return err
			}

			start, end := dateSpan(drafts)
			fmt.Fprintln(out, summary.New(totalDrafts(drafts), start, end).Render(cfg.Currency))

			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(drafts))))
				return nil
			}

			if err := saveDrafts(ctx, store, drafts, cmd.ErrOrStderr()); err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", len(drafts))))
			return nil
		},
	}

	cmd.Flags().StringVar(&expenseCategory, "expense-category", "", "Category (id or name) for debits")
	cmd.Flags().StringVar(&incomeCategory, "income-category", "", "Category (id or name) for credits")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Preview import without saving")

	return cmd
}

// expandFilePatterns expands globs, keeping plain paths that exist.
func expandFilePatterns(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseOFXFiles parses every file, skipping unreadable ones, and drops
// drafts repeated across overlapping statements. Rows without a FITID are
// only compared against earlier files, so two identical purchases on one
// statement both survive.
func parseOFXFiles(ctx context.Context, files []string) []model.Transaction {
	parser := ofx.NewParser()
	seen := make(map[string]struct{})
	var drafts []model.Transaction

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(ctx, bytes.NewReader(content))
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		accounts, err := parser.GetAccounts(ctx, bytes.NewReader(content))
		if err != nil {
			slog.Debug("Could not list accounts", "file", path, "error", err)
		}

		fileKeys := make(map[string]struct{}, len(parsed))
		added := 0
		for _, draft := range parsed {
			key := draft.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			if _, ok := fileKeys[key]; ok && draft.FITID != "" {
				continue
			}
			fileKeys[key] = struct{}{}
			drafts = append(drafts, draft.Transaction)
			added++
		}
		for key := range fileKeys {
			seen[key] = struct{}{}
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"accounts", strings.Join(accounts, ","),
			"transactions_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	return drafts
}

// assignCategories files each draft under the category for its type.
func assignCategories(ctx context.Context, store service.CategoryStore, drafts []model.Transaction, expense, income string) error {
	ids := make(map[model.CategoryType]*int64, 2)
	for t, value := range map[model.CategoryType]string{
		model.CategoryTypeExpense: expense,
		model.CategoryTypeIncome:  income,
	} {
		if value == "" {
			continue
		}
		cat, err := resolveCategory(ctx, store, value)
		if err != nil {
			return err
		}
		if cat.Type != t {
			slog.Warn("Category type does not match imported transactions",
				"category", cat.Name, "category_type", cat.Type, "transaction_type", t)
		}
		ids[t] = &cat.ID
	}

	for i := range drafts {
		drafts[i].CategoryID = ids[drafts[i].Type]
	}
	return nil
}

// saveDrafts stores every draft in one database transaction.
func saveDrafts(ctx context.Context, store service.Storage, drafts []model.Transaction, progress io.Writer) (err error) {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				common.LogError(rbErr, "Failed to rollback import", common.Fields{
					"drafts": len(drafts),
					"cause":  err.Error(),
				})
			}
		}
	}()

	bar := progressbar.NewOptions(len(drafts),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Saving transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(progress)
		}),
	)

	for i := range drafts {
		if err = tx.CreateTransaction(ctx, &drafts[i]); err != nil {
			return fmt.Errorf("failed to save %q: %w", drafts[i].Description, err)
		}
		if barErr := bar.Add(1); barErr != nil {
			slog.Warn("Failed to update progress bar", "error", barErr)
		}
	}

	return tx.Commit()
}

func dateSpan(drafts []model.Transaction) (time.Time, time.Time) {
	start, end := drafts[0].Date, drafts[0].Date
	for _, txn := range drafts[1:] {
		if txn.Date.Before(start) {
			start = txn.Date
		}
		if txn.Date.After(end) {
			end = txn.Date
		}
	}
	return start, end
}

func totalDrafts(drafts []model.Transaction) model.Totals {
	totals := model.Totals{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero}
	for _, txn := range drafts {
		if txn.Type == model.CategoryTypeIncome {
			totals.TotalIncome = totals.TotalIncome.Add(txn.Amount)
		} else {
			totals.TotalExpenses = totals.TotalExpenses.Add(txn.Amount)
		}
	}
	return totals
}
