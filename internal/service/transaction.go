package service

import (
	"context"
	"fmt"

	"ffbot/internal/domain"
	"ffbot/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionResult is what a user sees after recording a transaction
type TransactionResult struct {
	// OldFact is the line item's fact value before the transaction.
	OldFact     decimal.Decimal
	Transaction *domain.Transaction
	// User is re-fetched after posting for period and joint chat details.
	User *domain.User
}

// TransactionService records transactions against line items
type TransactionService struct {
	repo   repository.BudgetRepository
	logger *zap.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repo repository.BudgetRepository, logger *zap.Logger) *TransactionService {
	return &TransactionService{repo: repo, logger: logger}
}

// Add posts a transaction for the line item collected by the dialog
func (s *TransactionService) Add(ctx context.Context, telegramID int64, st domain.TransactionDescriptionStage, description string) (*TransactionResult, error) {
	old, err := s.repo.GetGroup(ctx, telegramID, st.GroupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	tx, err := s.repo.AddTransaction(ctx, telegramID, domain.NewTransaction{
		Type:        st.Type,
		GroupName:   st.GroupName,
		Description: description,
		Value:       st.Value,
	})
	if err != nil {
		return nil, fmt.Errorf("add transaction: %w", err)
	}

	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, ErrUserNotFound)
	}

	s.logger.Info("Transaction added",
		zap.Int64("user_id", telegramID),
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("group_id", st.GroupID),
	)
	return &TransactionResult{OldFact: old.FactValue, Transaction: tx, User: user}, nil
}
