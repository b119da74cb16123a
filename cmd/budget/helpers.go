package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/config"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/service"
	"github.com/Veraticus/budget/internal/storage"
)

const (
	dateLayout         = "2006-01-02"
	uncategorizedName  = "Uncategorized"
	uncategorizedColor = "#808080"
)

// loadConfig resolves settings from the global viper instance.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("Opened budget database", "path", cfg.DatabasePath)
	return store, nil
}

// currentMonth returns the first instant and the last millisecond of now's month.
func currentMonth(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// parseDateRange parses --from/--to. Missing bounds default to the current
// month and --to covers its whole day.
func parseDateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start, end := currentMonth(now)

	if from != "" {
		parsed, err := time.ParseInLocation(dateLayout, from, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid --from date %q (want %s)", common.ErrValidation, from, dateLayout)
		}
		start = parsed
	}

	if to != "" {
		parsed, err := time.ParseInLocation(dateLayout, to, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid --to date %q (want %s)", common.ErrValidation, to, dateLayout)
		}
		end = endOfDay(parsed)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: --to %s is before --from %s", common.ErrValidation, end.Format(dateLayout), start.Format(dateLayout))
	}

	return start, end, nil
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// parseDate parses a single date flag, defaulting to today when empty.
func parseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (want %s)", common.ErrValidation, value, dateLayout)
	}
	return parsed, nil
}

// parseID parses a positional id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", common.ErrValidation, arg)
	}
	return id, nil
}

// parseTypeFlag accepts a type name or its tab index (0 = Expense, 1 = Income).
func parseTypeFlag(value string) (model.CategoryType, error) {
	if index, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		t, err := model.CategoryTypeFromTab(index)
		if err != nil {
			return "", fmt.Errorf("%w: %w", common.ErrValidation, err)
		}
		return t, nil
	}

	t, err := model.ParseCategoryType(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return t, nil
}

// categoryIndex maps category ids to categories for display lookups.
type categoryIndex map[int64]model.Category

func loadCategoryIndex(ctx context.Context, store service.CategoryStore) (categoryIndex, error) {
	cats, err := store.GetCategories(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	index := make(categoryIndex, len(cats))
	for _, cat := range cats {
		index[cat.ID] = cat
	}
	return index, nil
}

// display returns the name and colour to show for a transaction's category.
// Missing or dangling references fall back to "Uncategorized".
func (c categoryIndex) display(id *int64) (string, string) {
	if id == nil {
		return uncategorizedName, uncategorizedColor
	}
	cat, ok := c[*id]
	if !ok {
		return uncategorizedName, uncategorizedColor
	}
	return cat.Name, cat.Color
}

// resolveCategory looks up a --category value by id or, failing that, by exact name.
func resolveCategory(ctx context.Context, store service.CategoryStore, value string) (*model.Category, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return store.GetCategoryByID(ctx, id)
	}

	cats, err := store.GetCategories(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if strings.EqualFold(cats[i].Name, value) {
			return &cats[i], nil
		}
	}
	return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, value)
}
