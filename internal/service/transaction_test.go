package service

import (
	"context"
	"errors"
	"testing"

	"ffbot/internal/domain"
	"ffbot/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionService_Add(t *testing.T) {
	ctx := context.Background()
	stage := domain.TransactionDescriptionStage{
		Type:      domain.Expense,
		GroupID:   3,
		GroupName: "Еда",
		Value:     decimal.NewFromInt(2700),
	}
	newTx := domain.NewTransaction{
		Type:        domain.Expense,
		GroupName:   "Еда",
		Description: "обед",
		Value:       decimal.NewFromInt(2700),
	}

	t.Run("success", func(t *testing.T) {
		mockRepo := new(testutil.MockBudgetRepository)
		user := testutil.NewTestUser(7, 5, 2024)
		mockRepo.On("GetGroup", ctx, int64(1), int64(3)).Return(testutil.NewTestGroup(3, domain.Expense, "Еда", 10000, 5000), nil)
		mockRepo.On("AddTransaction", ctx, int64(1), newTx).Return(&domain.Transaction{ID: 9, Value: decimal.NewFromInt(7700)}, nil)
		mockRepo.On("GetUser", ctx, int64(1)).Return(user, nil)

		service := NewTransactionService(mockRepo, testutil.NewTestLogger())
		result, err := service.Add(ctx, 1, stage, "обед")

		require.NoError(t, err)
		assert.True(t, result.OldFact.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, int64(9), result.Transaction.ID)
		assert.Same(t, user, result.User)
		mockRepo.AssertExpectations(t)
	})

	t.Run("group fetch fails", func(t *testing.T) {
		mockRepo := new(testutil.MockBudgetRepository)
		mockRepo.On("GetGroup", ctx, int64(1), int64(3)).Return(nil, errors.New("gone"))

		service := NewTransactionService(mockRepo, testutil.NewTestLogger())
		_, err := service.Add(ctx, 1, stage, "обед")

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "AddTransaction", ctx, int64(1), newTx)
	})

	t.Run("post fails", func(t *testing.T) {
		mockRepo := new(testutil.MockBudgetRepository)
		mockRepo.On("GetGroup", ctx, int64(1), int64(3)).Return(testutil.NewTestGroup(3, domain.Expense, "Еда", 10000, 5000), nil)
		mockRepo.On("AddTransaction", ctx, int64(1), newTx).Return(nil, errors.New("rejected"))

		service := NewTransactionService(mockRepo, testutil.NewTestLogger())
		_, err := service.Add(ctx, 1, stage, "обед")

		assert.Error(t, err)
	})
}
