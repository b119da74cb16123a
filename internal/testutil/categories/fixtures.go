package categories

// Fixture represents a predefined set of categories for testing.
type Fixture interface {
	Name() string
	Seeds() []Seed
}

type fixture struct {
	name  string
	seeds []Seed
}

func (f *fixture) Name() string  { return f.name }
func (f *fixture) Seeds() []Seed { return f.seeds }

// Predefined fixtures for common test scenarios.
var (
	// FixtureMinimal is one income category and two expense categories.
	FixtureMinimal Fixture = &fixture{
		name:  "Minimal",
		seeds: []Seed{SeedSalary, SeedGroceries, SeedRent},
	}

	// FixtureHousehold covers a typical month of household money.
	FixtureHousehold Fixture = &fixture{
		name: "Household",
		seeds: []Seed{
			SeedSalary,
			SeedFreelance,
			SeedGroceries,
			SeedRent,
			SeedTransportation,
			SeedUtilities,
			SeedEntertainment,
		},
	}
)
