package service

import (
	"context"
	"fmt"
	"sort"

	"ffbot/internal/domain"
	"ffbot/internal/repository"
)

// PeriodService selects the active reporting period
type PeriodService struct {
	repo repository.BudgetRepository
}

// NewPeriodService creates a new period service
func NewPeriodService(repo repository.BudgetRepository) *PeriodService {
	return &PeriodService{repo: repo}
}

// Set makes p the active period
func (s *PeriodService) Set(ctx context.Context, telegramID int64, p domain.Period) error {
	if !p.Valid() {
		return fmt.Errorf("invalid period %s", p)
	}
	if err := s.repo.UpdateCoreSettings(ctx, telegramID, domain.PeriodUpdate(p)); err != nil {
		return fmt.Errorf("update core settings: %w", err)
	}
	return nil
}

// Years returns years with data, newest first
func (s *PeriodService) Years(ctx context.Context, telegramID int64) ([]int, error) {
	years, err := s.repo.ListYears(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// Months returns months of year with data, in calendar order
func (s *PeriodService) Months(ctx context.Context, telegramID int64, year int) ([]int, error) {
	months, err := s.repo.ListMonths(ctx, telegramID, year)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	sort.Ints(months)
	return months, nil
}
