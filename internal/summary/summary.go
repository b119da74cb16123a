// Package summary derives the income, expense and savings view for a period.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budget/internal/cli"
	"github.com/Veraticus/budget/internal/model"
	"github.com/Veraticus/budget/internal/money"
)

// PeriodLayout is how period bounds are printed in the summary title.
const PeriodLayout = "January 2, 2006"

// View is the derived summary for a date range. It is never persisted.
type View struct {
	Start         time.Time
	End           time.Time
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Savings       decimal.Decimal
}

// ComputeSavings returns income minus expenses. The result may be negative.
func ComputeSavings(income, expenses decimal.Decimal) decimal.Decimal {
	return income.Sub(expenses)
}

// New builds a View from stored totals.
func New(totals model.Totals, start, end time.Time) View {
	return View{
		Start:         start,
		End:           end,
		TotalIncome:   totals.TotalIncome,
		TotalExpenses: totals.TotalExpenses,
		Savings:       ComputeSavings(totals.TotalIncome, totals.TotalExpenses),
	}
}

// Period returns the human readable range, e.g. "March 1, 2024 to March 31, 2024".
func (v View) Period() string {
	return fmt.Sprintf("%s to %s", v.Start.Format(PeriodLayout), v.End.Format(PeriodLayout))
}

// Render draws the summary card. An empty symbol uses money.DefaultSymbol.
func (v View) Render(symbol string) string {
	if symbol == "" {
		symbol = money.DefaultSymbol
	}

	lines := []string{
		cli.SubtleStyle.Render(v.Period()),
		"",
		line("Income", v.TotalIncome, symbol),
		line("Total Expenses", v.TotalExpenses, symbol),
		line("Savings", v.Savings, symbol),
	}

	return cli.RenderBox(cli.ChartIcon+" Summary", strings.Join(lines, "\n"))
}

func line(label string, value decimal.Decimal, symbol string) string {
	formatted := money.Format(value, symbol)
	negative := value.Round(2).IsNegative()
	return fmt.Sprintf("%-16s %s", label+":", cli.FormatAmount(formatted, negative))
}
