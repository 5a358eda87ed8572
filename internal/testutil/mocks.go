package testutil

import (
	"context"

	"ffbot/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBudgetRepository is a mock for BudgetRepository
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockBudgetRepository) CreateUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockBudgetRepository) DeleteUser(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockBudgetRepository) CreateGroup(ctx context.Context, telegramID int64, t domain.TransactionType, name string, plan decimal.Decimal) (*domain.Group, error) {
	args := m.Called(ctx, telegramID, t, name, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockBudgetRepository) GroupNameExists(ctx context.Context, telegramID int64, name string) (bool, error) {
	args := m.Called(ctx, telegramID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockBudgetRepository) ListGroups(ctx context.Context, telegramID int64, t domain.TransactionType) (*domain.Summary, error) {
	args := m.Called(ctx, telegramID, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockBudgetRepository) GetGroup(ctx context.Context, telegramID, groupID int64) (*domain.Group, error) {
	args := m.Called(ctx, telegramID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockBudgetRepository) DeleteGroup(ctx context.Context, telegramID, groupID int64) error {
	args := m.Called(ctx, telegramID, groupID)
	return args.Error(0)
}

func (m *MockBudgetRepository) GetSummary(ctx context.Context, telegramID int64) (*domain.Summary, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockBudgetRepository) AddTransaction(ctx context.Context, telegramID int64, tx domain.NewTransaction) (*domain.Transaction, error) {
	args := m.Called(ctx, telegramID, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockBudgetRepository) UpdateCoreSettings(ctx context.Context, telegramID int64, upd domain.CoreSettingsUpdate) error {
	args := m.Called(ctx, telegramID, upd)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateTelegramSettings(ctx context.Context, telegramID int64, upd domain.TelegramSettingsUpdate) (*domain.TelegramSettings, error) {
	args := m.Called(ctx, telegramID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TelegramSettings), args.Error(1)
}

func (m *MockBudgetRepository) UpdateSpace(ctx context.Context, telegramID, spaceID int64, patch domain.SpacePatch) (*domain.Space, error) {
	args := m.Called(ctx, telegramID, spaceID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Space), args.Error(1)
}

func (m *MockBudgetRepository) LinkUser(ctx context.Context, telegramID, spaceID, userID int64) error {
	args := m.Called(ctx, telegramID, spaceID, userID)
	return args.Error(0)
}

func (m *MockBudgetRepository) UnlinkUser(ctx context.Context, telegramID, spaceID, userID int64) error {
	args := m.Called(ctx, telegramID, spaceID, userID)
	return args.Error(0)
}

func (m *MockBudgetRepository) ListYears(ctx context.Context, telegramID int64) ([]int, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockBudgetRepository) ListMonths(ctx context.Context, telegramID int64, year int) ([]int, error) {
	args := m.Called(ctx, telegramID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockBudgetRepository) ExportExcel(ctx context.Context, telegramID int64) ([]byte, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSessionRepository is a mock for SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Get(ctx context.Context, userID int64) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, userID int64, s *domain.Session) error {
	args := m.Called(ctx, userID, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
