package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget/internal/cli"
	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage income and expense categories",
		Long:    `List, add, update, and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Long:  `Display categories grouped by type, Expense first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			types := model.CategoryTypes
			if categoryType != "" {
				t, err := parseTypeFlag(categoryType)
				if err != nil {
					return err
				}
				types = []model.CategoryType{t}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			found := 0
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, t := range types {
				categories, err := store.GetCategories(ctx, &t)
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}
				if len(categories) == 0 {
					continue
				}
				found += len(categories)

				fmt.Fprintf(w, "%s\n", cli.HeaderStyle.Render(string(t)))
				fmt.Fprintf(w, "%s\t%s\t%s\n", "ID", "Name", "Color")
				fmt.Fprintf(w, "%s\t%s\t%s\n", strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 10))
				for _, cat := range categories {
					color := cat.Color
					if color == "" {
						color = cli.SubtleStyle.Render("(none)")
					}
					fmt.Fprintf(w, "%d\t%s\t%s %s\n", cat.ID, cat.Name, cli.Swatch(cat.Color), color)
				}
				fmt.Fprintln(w)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if found == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'budget categories add' to create one."))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", "", "Only show Expense or Income categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryType  string
		categoryColor string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := parseTypeFlag(categoryType)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.CreateCategory(ctx, args[0], t, categoryColor)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (ID: %d)", category.Type, category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "Category type: Expense or Income")
	cmd.Flags().StringVarP(&categoryColor, "color", "c", "", "Display color, e.g. #FF6B6B")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		categoryName  string
		categoryType  string
		categoryColor string
		clearColor    bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long:  `Change the name, type or color of an existing category. Unset flags keep their current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("type") && !flags.Changed("color") && !clearColor {
				return common.NewUserError("Nothing to update: pass --name, --type, --color or --clear-color",
					fmt.Errorf("%w: no category fields to update", common.ErrValidation))
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			current, err := store.GetCategoryByID(ctx, id)
			if err != nil {
				return err
			}

			name, t, color := current.Name, current.Type, current.Color
			if flags.Changed("name") {
				name = categoryName
			}
			if flags.Changed("type") {
				if t, err = parseTypeFlag(categoryType); err != nil {
					return err
				}
			}
			if flags.Changed("color") {
				color = categoryColor
			}
			if clearColor {
				color = ""
			}

			if err := store.UpdateCategory(ctx, id, name, t, color); err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %d: %s (%s)", id, name, t)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryName, "name", "n", "", "New category name")
	cmd.Flags().StringVarP(&categoryType, "type", "t", "", "New category type: Expense or Income")
	cmd.Flags().StringVarP(&categoryColor, "color", "c", "", "New display color")
	cmd.Flags().BoolVar(&clearColor, "clear-color", false, "Remove the display color")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. Transactions filed under it are kept and show as
Uncategorized afterwards.`,
		Args: cobra.ExactArgs(1),
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

			category, err := store.GetCategoryByID(ctx, id)
			if err != nil {
				return err
			}

			count, err := store.GetTransactionCountByCategory(ctx, id)
			if err != nil {
				return err
			}

			if !force {
				question := fmt.Sprintf("Delete category %q?", category.Name)
				if count > 0 {
					question = fmt.Sprintf("Category %q has %d transaction(s) that will become Uncategorized. Delete it?", category.Name, count)
				}
				ok, err := cli.NewNonBlockingReader(cmd.InOrStdin()).Confirm(ctx, out, question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Deletion canceled"))
					return nil
				}
			}

			if err := store.DeleteCategory(ctx, id); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", category.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking for confirmation")

	return cmd
}
