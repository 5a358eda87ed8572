package testutil

import (
	"ffbot/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestSpace creates a space owned by ownerID
func NewTestSpace(id, ownerID int64, name string) domain.Space {
	return domain.Space{
		ID:            id,
		Name:          name,
		OwnerID:       ownerID,
		OwnerUsername: "owner",
	}
}

// NewTestUser creates a registered user with an active space and period
func NewTestUser(id int64, month, year int) *domain.User {
	space := NewTestSpace(id*10, id, "Дом")
	return &domain.User{
		ID:        id,
		Username:  "user",
		FirstName: "Анна",
		CoreSettings: &domain.CoreSettings{
			User:         "user",
			CurrentSpace: &space,
			CurrentMonth: &month,
			CurrentYear:  &year,
		},
		Spaces: []domain.Space{space},
	}
}

// NewBareUser creates a registered user without a space or period
func NewBareUser(id int64) *domain.User {
	return &domain.User{
		ID:           id,
		Username:     "user",
		CoreSettings: &domain.CoreSettings{User: "user"},
	}
}

// NewTestGroup creates a line item with values in units
func NewTestGroup(id int64, t domain.TransactionType, name string, plan, fact int64) *domain.Group {
	return &domain.Group{
		ID:        id,
		Type:      t,
		Name:      name,
		PlanValue: decimal.NewFromInt(plan),
		FactValue: decimal.NewFromInt(fact),
	}
}
