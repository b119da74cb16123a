package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget/internal/cli"
	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/money"
	"github.com/Veraticus/budget/internal/service"
	"github.com/Veraticus/budget/internal/storage"
)

// now is swapped in tests.
var now = time.Now

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"transaction", "tx"},
		Short:   "Record and review transactions",
		Long:    `List, add, update, and delete income and expense transactions.`,
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var from, to, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transactions",
		Long: fmt.Sprintf(`Show the newest transactions in a date range, at most %d of them.
The range defaults to the current month.`, storage.RecentTransactionsLimit),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			start, end, err := parseDateRange(from, to, now())
			if err != nil {
				return err
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

			filter := service.TransactionFilter{Start: start, End: end}
			if category != "" {
				cat, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				filter.CategoryID = &cat.ID
			}

			transactions, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			if len(transactions) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("No transactions between %s and %s.",
					start.Format(dateLayout), end.Format(dateLayout))))
				return nil
			}

			index, err := loadCategoryIndex(ctx, store)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", "ID", "Date", "Category", "Description", "Amount")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 10),
				strings.Repeat("-", 16),
				strings.Repeat("-", 24),
				strings.Repeat("-", 12))
			for _, txn := range transactions {
				name, color := index.display(txn.CategoryID)
				fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\t%s\n",
					txn.ID,
					txn.Date.Format(dateLayout),
					cli.Swatch(color), name,
					txn.Description,
					formatSigned(txn, cfg.Currency))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(transactions) == storage.RecentTransactionsLimit {
				fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Showing the %d most recent. Narrow --from/--to to see older ones.", storage.RecentTransactionsLimit)))
			}
			return nil
		},
	}

	addRangeFlags(cmd, &from, &to, &category)

	return cmd
}

func addRangeFlags(cmd *cobra.Command, from, to, category *string) {
	cmd.Flags().StringVar(from, "from", "", "Start date (format: 2006-01-02, default: first day of this month)")
	cmd.Flags().StringVar(to, "to", "", "End date, inclusive (format: 2006-01-02, default: last day of this month)")
	cmd.Flags().StringVarP(category, "category", "c", "", "Only include this category (id or name)")
}

// formatSigned renders expenses with a leading minus so the column reads as a ledger.
func formatSigned(txn model.Transaction, symbol string) string {
	if txn.Type == model.CategoryTypeExpense {
		return cli.FormatAmount(money.Format(txn.Amount.Neg(), symbol), !txn.Amount.IsZero())
	}
	return cli.FormatAmount(money.Format(txn.Amount, symbol), false)
}

func addTransactionCmd() *cobra.Command {
	var amount, txnType, category, date, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record an income or expense. The type defaults to the category's type,
or Expense when no category is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			value, err := money.ParseAmount(amount)
			if err != nil {
				return err
			}
			when, err := parseDate(date, now())
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn := model.Transaction{
				Amount:      value,
				Date:        when,
				Description: strings.TrimSpace(description),
				Type:        model.CategoryTypeExpense,
			}

			if category != "" {
				cat, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				txn.CategoryID = &cat.ID
				txn.Type = cat.Type
			}
			if txnType != "" {
				if txn.Type, err = parseTypeFlag(txnType); err != nil {
					return err
				}
			}

			if err := store.CreateTransaction(ctx, &txn); err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s on %s (ID: %d)",
				strings.ToLower(string(txn.Type)),
				money.Format(txn.Amount, cfg.Currency),
				txn.Date.Format(dateLayout),
				txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 120.50 (required)")
	cmd.Flags().StringVarP(&txnType, "type", "t", "", "Expense or Income (default: the category's type)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (format: 2006-01-02, default: today)")
	cmd.Flags().StringVar(&description, "description", "", "Optional note")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func updateTransactionCmd() *cobra.Command {
	var amount, txnType, category, date, description string
	var uncategorize bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a transaction",
		Long:  `Change fields of an existing transaction. Unset flags keep their current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if flags.NFlag() == 0 {
				return common.NewUserError("Nothing to update: pass at least one field flag",
					fmt.Errorf("%w: no transaction fields to update", common.ErrValidation))
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}

			if flags.Changed("amount") {
				if txn.Amount, err = money.ParseAmount(amount); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				if txn.Date, err = parseDate(date, now()); err != nil {
					return err
				}
			}
			if flags.Changed("description") {
				txn.Description = strings.TrimSpace(description)
			}
			if flags.Changed("category") {
				cat, err := resolveCategory(ctx, store, category)
				if err != nil {
					return err
				}
				txn.CategoryID = &cat.ID
				txn.Type = cat.Type
			}
			if uncategorize {
				txn.CategoryID = nil
			}
			if flags.Changed("type") {
				if txn.Type, err = parseTypeFlag(txnType); err != nil {
					return err
				}
			}

			if err := store.UpdateTransaction(ctx, txn); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "New amount")
	cmd.Flags().StringVarP(&txnType, "type", "t", "", "New type: Expense or Income")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category id or name")
	cmd.Flags().BoolVar(&uncategorize, "uncategorize", false, "Remove the category")
	cmd.Flags().StringVarP(&date, "date", "d", "", "New date (format: 2006-01-02)")
	cmd.Flags().StringVar(&description, "description", "", "New note")
	cmd.MarkFlagsMutuallyExclusive("category", "uncategorize")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !force {
				question := fmt.Sprintf("Delete the %s of %s on %s?",
					strings.ToLower(string(txn.Type)),
					money.Format(txn.Amount, cfg.Currency),
					txn.Date.Format(dateLayout))
				ok, err := cli.NewNonBlockingReader(cmd.InOrStdin()).Confirm(ctx, out, question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Deletion canceled"))
					return nil
				}
			}

			if err := store.DeleteTransaction(ctx, id); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking for confirmation")

	return cmd
}
