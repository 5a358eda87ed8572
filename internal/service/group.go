package service

import (
	"context"
	"fmt"

	"ffbot/internal/domain"
	"ffbot/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GroupService manages income and expense line items
type GroupService struct {
	repo       repository.BudgetRepository
	maxNameLen int
	logger     *zap.Logger
}

// NewGroupService creates a new group service
func NewGroupService(repo repository.BudgetRepository, maxNameLen int, logger *zap.Logger) *GroupService {
	return &GroupService{repo: repo, maxNameLen: maxNameLen, logger: logger}
}

// MaxNameLen returns the line item name limit
func (s *GroupService) MaxNameLen() int {
	return s.maxNameLen
}

// ValidateName checks a new line item name and that it is not taken yet
func (s *GroupService) ValidateName(ctx context.Context, telegramID int64, raw string) (string, error) {
	name, err := ValidateGroupName(raw, s.maxNameLen)
	if err != nil {
		return "", err
	}

	exists, err := s.repo.GroupNameExists(ctx, telegramID, name)
	if err != nil {
		return "", fmt.Errorf("check group name: %w", err)
	}
	if exists {
		return "", ErrGroupNameExists
	}
	return name, nil
}

// Create adds a line item with the given plan value in units
func (s *GroupService) Create(ctx context.Context, telegramID int64, t domain.TransactionType, name string, plan decimal.Decimal) (*domain.Group, error) {
	group, err := s.repo.CreateGroup(ctx, telegramID, t, name, plan)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	s.logger.Info("Group created",
		zap.Int64("user_id", telegramID),
		zap.Int64("group_id", group.ID),
		zap.String("type", string(t)),
	)
	return group, nil
}

// List returns line items of one type in the active period
func (s *GroupService) List(ctx context.Context, telegramID int64, t domain.TransactionType) ([]domain.Group, error) {
	summary, err := s.repo.ListGroups(ctx, telegramID, t)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if summary == nil {
		return nil, nil
	}
	return summary.Groups, nil
}

// Get fetches one line item
func (s *GroupService) Get(ctx context.Context, telegramID, groupID int64) (*domain.Group, error) {
	group, err := s.repo.GetGroup(ctx, telegramID, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// Delete removes a line item and returns it as it was before removal
func (s *GroupService) Delete(ctx context.Context, telegramID, groupID int64) (*domain.Group, error) {
	group, err := s.Get(ctx, telegramID, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteGroup(ctx, telegramID, groupID); err != nil {
		return nil, fmt.Errorf("delete group: %w", err)
	}
	s.logger.Info("Group deleted",
		zap.Int64("user_id", telegramID),
		zap.Int64("group_id", groupID),
	)
	return group, nil
}

// Summary returns the report of the active period; nil when it is empty
func (s *GroupService) Summary(ctx context.Context, telegramID int64) (*domain.Summary, error) {
	summary, err := s.repo.GetSummary(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return summary, nil
}

// Export returns the workbook of the active space
func (s *GroupService) Export(ctx context.Context, telegramID int64) ([]byte, error) {
	data, err := s.repo.ExportExcel(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}
