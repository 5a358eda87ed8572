package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells income from expense
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// ParseTransactionType validates a raw type value
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case Income, Expense:
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Group is a planned income or expense line item of a period
type Group struct {
	ID          int64           `json:"id"`
	Space       *Space          `json:"space,omitempty"`
	PeriodMonth int             `json:"period_month,omitempty"`
	PeriodYear  int             `json:"period_year,omitempty"`
	Type        TransactionType `json:"type_transaction"`
	Name        string          `json:"group_name"`
	PlanValue   decimal.Decimal `json:"plan_value"`
	FactValue   decimal.Decimal `json:"fact_value"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// Summary is the backend-computed report of the active period
type Summary struct {
	SumIncomePlan  decimal.Decimal `json:"sum_income_plan"`
	SumIncomeFact  decimal.Decimal `json:"sum_income_fact"`
	SumExpensePlan decimal.Decimal `json:"sum_expense_plan"`
	SumExpenseFact decimal.Decimal `json:"sum_expense_fact"`
	BalancePlan    decimal.Decimal `json:"balance_plan"`
	BalanceFact    decimal.Decimal `json:"balance_fact"`
	Groups         []Group         `json:"summary"`
}

// Empty reports whether the period has no line items
func (s *Summary) Empty() bool {
	return s == nil || len(s.Groups) == 0
}

// Split returns income and expense line items in their original order
func (s *Summary) Split() (incomes, expenses []Group) {
	if s == nil {
		return nil, nil
	}
	for _, g := range s.Groups {
		if g.Type == Income {
			incomes = append(incomes, g)
		} else {
			expenses = append(expenses, g)
		}
	}
	return incomes, expenses
}

// NewTransaction is the input for recording a transaction
type NewTransaction struct {
	Type        TransactionType
	GroupName   string
	Description string
	Value       decimal.Decimal
}

// Transaction is a recorded movement against a line item
type Transaction struct {
	ID          int64           `json:"id"`
	Type        TransactionType `json:"type_transaction"`
	GroupName   string          `json:"group_name"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value_transaction"`
	Author      int64           `json:"author"`
}
