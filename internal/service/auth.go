package service

import (
	"context"
	"fmt"

	"ffbot/internal/domain"
	"ffbot/internal/repository"

	"go.uber.org/zap"
)

// Verdict is the outcome of the authorization gate
type Verdict int

const (
	// Pass lets the event through
	Pass Verdict = iota
	// NeedRegistration means the user is unknown to the backend
	NeedRegistration
	// NeedSpace means no active space is selected
	NeedSpace
	// NeedPeriod means the active month or year is missing
	NeedPeriod
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case NeedRegistration:
		return "need_registration"
	case NeedSpace:
		return "need_space"
	case NeedPeriod:
		return "need_period"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// AuthService handles registration and the authorization gate
type AuthService struct {
	repo   repository.BudgetRepository
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repo repository.BudgetRepository, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, logger: logger}
}

// Check resolves the user and decides whether an event may proceed.
// The user is returned whenever it exists.
func (s *AuthService) Check(ctx context.Context, telegramID int64) (Verdict, *domain.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return NeedRegistration, nil, fmt.Errorf("get user: %w", err)
	}
	return Evaluate(user), user, nil
}

// Evaluate applies the gate rules to an already fetched user
func Evaluate(user *domain.User) Verdict {
	if user == nil {
		return NeedRegistration
	}
	if user.CurrentSpace() == nil {
		return NeedSpace
	}
	if _, ok := user.Period(); !ok {
		return NeedPeriod
	}
	return Pass
}

// GetUser fetches the user; nil when not registered
func (s *AuthService) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.repo.GetUser(ctx, telegramID)
}

// Register creates the user unless it already exists and returns the
// fresh profile.
func (s *AuthService) Register(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	if _, err := s.repo.CreateUser(ctx, telegramID); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("User registered", zap.Int64("user_id", telegramID))

	user, err = s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get created user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("created user %d not found", telegramID)
	}
	return user, nil
}

// DeleteAccount removes the user and all their data
func (s *AuthService) DeleteAccount(ctx context.Context, telegramID int64) error {
	if err := s.repo.DeleteUser(ctx, telegramID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("User deleted", zap.Int64("user_id", telegramID))
	return nil
}
