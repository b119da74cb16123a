// Package categories seeds typed, coloured categories for tests.
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithFixture(categories.FixtureHousehold).
//			WithCategory(categories.Seed{Name: "Pets", Type: model.CategoryTypeExpense})
//	})
package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/service"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithCategory adds a single category to the builder.
	WithCategory(seed Seed) Builder

	// WithCategories adds multiple categories to the builder.
	WithCategories(seeds ...Seed) Builder

	// WithBasicCategories adds one income and a few expense categories.
	WithBasicCategories() Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories in the provided storage, in the order they were added.
	Build(ctx context.Context, storage service.CategoryStore) (Categories, error)

	// BuildMap creates categories and returns them keyed by name.
	BuildMap(ctx context.Context, storage service.CategoryStore) (CategoryMap, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategorySalary         CategoryName = "Salary"
	CategoryFreelance      CategoryName = "Freelance"
	CategoryGroceries      CategoryName = "Groceries"
	CategoryRent           CategoryName = "Rent"
	CategoryTransportation CategoryName = "Transportation"
	CategoryUtilities      CategoryName = "Utilities"
	CategoryEntertainment  CategoryName = "Entertainment"
)

// Seed describes one category to create.
type Seed struct {
	Name  CategoryName
	Type  model.CategoryType
	Color string
}

// Standard seeds.
var (
	SeedSalary         = Seed{Name: CategorySalary, Type: model.CategoryTypeIncome, Color: "#2E8B57"}
	SeedFreelance      = Seed{Name: CategoryFreelance, Type: model.CategoryTypeIncome, Color: "#3CB371"}
	SeedGroceries      = Seed{Name: CategoryGroceries, Type: model.CategoryTypeExpense, Color: "#FF6B6B"}
	SeedRent           = Seed{Name: CategoryRent, Type: model.CategoryTypeExpense, Color: "#8B0000"}
	SeedTransportation = Seed{Name: CategoryTransportation, Type: model.CategoryTypeExpense, Color: "#FFA500"}
	SeedUtilities      = Seed{Name: CategoryUtilities, Type: model.CategoryTypeExpense}
	SeedEntertainment  = Seed{Name: CategoryEntertainment, Type: model.CategoryTypeExpense, Color: "#9370DB"}
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// OfType returns the categories with the given type.
func (c Categories) OfType(categoryType model.CategoryType) Categories {
	var out Categories
	for _, cat := range c {
		if cat.Type == categoryType {
			out = append(out, cat)
		}
	}
	return out
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// CategoryMap provides lookup for categories by name.
type CategoryMap map[CategoryName]model.Category

// MustGet returns the category for the given name or fails the test.
func (m CategoryMap) MustGet(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat, ok := m[name]
	if !ok {
		t.Fatalf("category %q not found in test data", name)
	}
	return cat
}

type categoryBuilder struct {
	t     *testing.T
	seen  map[CategoryName]struct{}
	seeds []Seed
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:    t,
		seen: make(map[CategoryName]struct{}),
	}
}

func (b *categoryBuilder) WithCategory(seed Seed) Builder {
	if _, ok := b.seen[seed.Name]; ok {
		return b
	}
	b.seen[seed.Name] = struct{}{}
	b.seeds = append(b.seeds, seed)
	return b
}

func (b *categoryBuilder) WithCategories(seeds ...Seed) Builder {
	for _, seed := range seeds {
		b.WithCategory(seed)
	}
	return b
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	return b.WithFixture(FixtureMinimal)
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	return b.WithCategories(fixture.Seeds()...)
}

func (b *categoryBuilder) Build(ctx context.Context, storage service.CategoryStore) (Categories, error) {
	b.t.Helper()

	result := make(Categories, 0, len(b.seeds))
	for _, seed := range b.seeds {
		created, err := storage.CreateCategory(ctx, seed.Name.String(), seed.Type, seed.Color)
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", seed.Name, err)
		}
		result = append(result, *created)
	}

	return result, nil
}

func (b *categoryBuilder) BuildMap(ctx context.Context, storage service.CategoryStore) (CategoryMap, error) {
	categories, err := b.Build(ctx, storage)
	if err != nil {
		return nil, err
	}

	m := make(CategoryMap, len(categories))
	for _, cat := range categories {
		m[CategoryName(cat.Name)] = cat
	}
	return m, nil
}
