package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget/internal/service"
	"github.com/Veraticus/budget/internal/summary"
)

func summaryCmd() *cobra.Command {
	var from, to, category string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and savings",
		Long: `Total every transaction in the range (the current month by default) and
show what was saved. Unlike 'transactions list' nothing is left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

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

			totals, err := store.Summarize(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to summarize transactions: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary.New(totals, start, end).Render(cfg.Currency))
			return nil
		},
	}

	addRangeFlags(cmd, &from, &to, &category)

	return cmd
}
