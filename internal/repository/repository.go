package repository

import (
	"context"

	"ffbot/internal/domain"

	"github.com/shopspring/decimal"
)

// BudgetRepository defines operations of the budget backend. Users are
// addressed by their Telegram ID.
type BudgetRepository interface {
	// GetUser returns nil without error when the user is not registered.
	GetUser(ctx context.Context, telegramID int64) (*domain.User, error)
	CreateUser(ctx context.Context, telegramID int64) (*domain.User, error)
	DeleteUser(ctx context.Context, telegramID int64) error

	CreateGroup(ctx context.Context, telegramID int64, t domain.TransactionType, name string, plan decimal.Decimal) (*domain.Group, error)
	GroupNameExists(ctx context.Context, telegramID int64, name string) (bool, error)
	// ListGroups filters by type unless t is empty.
	ListGroups(ctx context.Context, telegramID int64, t domain.TransactionType) (*domain.Summary, error)
	GetGroup(ctx context.Context, telegramID, groupID int64) (*domain.Group, error)
	DeleteGroup(ctx context.Context, telegramID, groupID int64) error
	// GetSummary returns nil without error when the active period is empty.
	GetSummary(ctx context.Context, telegramID int64) (*domain.Summary, error)

	AddTransaction(ctx context.Context, telegramID int64, tx domain.NewTransaction) (*domain.Transaction, error)

	UpdateCoreSettings(ctx context.Context, telegramID int64, upd domain.CoreSettingsUpdate) error
	UpdateTelegramSettings(ctx context.Context, telegramID int64, upd domain.TelegramSettingsUpdate) (*domain.TelegramSettings, error)
	UpdateSpace(ctx context.Context, telegramID, spaceID int64, patch domain.SpacePatch) (*domain.Space, error)
	LinkUser(ctx context.Context, telegramID, spaceID, userID int64) error
	UnlinkUser(ctx context.Context, telegramID, spaceID, userID int64) error

	ListYears(ctx context.Context, telegramID int64) ([]int, error)
	ListMonths(ctx context.Context, telegramID int64, year int) ([]int, error)
	ExportExcel(ctx context.Context, telegramID int64) ([]byte, error)
}

// SessionRepository stores dialog sessions per user
type SessionRepository interface {
	// Get returns an idle session when none is stored.
	Get(ctx context.Context, userID int64) (*domain.Session, error)
	Save(ctx context.Context, userID int64, s *domain.Session) error
	Clear(ctx context.Context, userID int64) error
}
