package view

import (
	"fmt"
	"strings"

	"ffbot/internal/domain"

	"github.com/shopspring/decimal"
)

const separator = "-----------------------------\n"

// Layout sets the column widths of the summary table
type Layout struct {
	NameWidth  int
	ValueWidth int
}

// DefaultLayout matches the widths the table was designed for
var DefaultLayout = Layout{NameWidth: 15, ValueWidth: 6}

func (l Layout) row(name string, plan, fact decimal.Decimal) string {
	return fmt.Sprintf("%s %s/ %s\n",
		escape(padRight(name, l.NameWidth, '.')),
		padRight(FormatThousands(plan, PlacesSummary), l.ValueWidth, ' '),
		padRight(FormatThousands(fact, PlacesSummary), l.ValueWidth, ' '),
	)
}

// SummaryText renders the report of the active period as a monospace table.
// The space and period are taken from the report itself when present.
func SummaryText(user *domain.User, s *domain.Summary, l Layout) string {
	spaceName := ""
	if space := user.CurrentSpace(); space != nil {
		spaceName = space.Name
	}
	period, _ := user.Period()
	if len(s.Groups) > 0 {
		first := s.Groups[0]
		if first.Space != nil {
			spaceName = first.Space.Name
		}
		if first.PeriodMonth > 0 {
			period = domain.Period{Month: first.PeriodMonth, Year: first.PeriodYear}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "▶️     <b><u>База:</u> %s\n▶️     <u>Период:</u> %s</b>\n\n",
		escape(spaceName), period)
	b.WriteString("<code>")
	fmt.Fprintf(&b, "%s План  / Факт\n", padRight("Статья", l.NameWidth, '.'))
	b.WriteString(separator)

	incomes, expenses := s.Split()
	if len(incomes) == 0 {
		b.WriteString("Доходов нет\n")
	}
	for _, g := range incomes {
		b.WriteString(l.row(g.Name, g.PlanValue, g.FactValue))
	}
	b.WriteString(separator)
	if len(expenses) == 0 {
		b.WriteString("Расходов нет\n")
	}
	for _, g := range expenses {
		b.WriteString(l.row(g.Name, g.PlanValue, g.FactValue))
	}
	b.WriteString(separator)
	b.WriteString(l.row("Доходы", s.SumIncomePlan, s.SumIncomeFact))
	b.WriteString(l.row("Расходы", s.SumExpensePlan, s.SumExpenseFact))
	b.WriteString(l.row("Сальдо", s.BalancePlan, s.BalanceFact))
	b.WriteString("</code>")
	return b.String()
}
