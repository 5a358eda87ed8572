package service

import (
	"context"
	"fmt"

	"ffbot/internal/domain"
	"ffbot/internal/repository"

	"go.uber.org/zap"
)

// SpaceService manages spaces, shared access and joint chats
type SpaceService struct {
	repo   repository.BudgetRepository
	logger *zap.Logger
}

// NewSpaceService creates a new space service
func NewSpaceService(repo repository.BudgetRepository, logger *zap.Logger) *SpaceService {
	return &SpaceService{repo: repo, logger: logger}
}

func (s *SpaceService) user(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, ErrUserNotFound)
	}
	return user, nil
}

// Owner returns the user if they own the active space, ErrNotOwner otherwise
func (s *SpaceService) Owner(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.user(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if !user.OwnsCurrentSpace() {
		return user, ErrNotOwner
	}
	return user, nil
}

// LinkUser grants the user with the given Telegram ID access to a space
func (s *SpaceService) LinkUser(ctx context.Context, telegramID, spaceID, targetTelegramID int64) error {
	target, err := s.repo.GetUser(ctx, targetTelegramID)
	if err != nil {
		return fmt.Errorf("get target user: %w", err)
	}
	if target == nil {
		return ErrUserNotFound
	}
	if err := s.repo.LinkUser(ctx, telegramID, spaceID, target.ID); err != nil {
		return fmt.Errorf("link user: %w", err)
	}
	s.logger.Info("User linked to space",
		zap.Int64("user_id", telegramID),
		zap.Int64("space_id", spaceID),
		zap.Int64("linked_user_id", target.ID),
	)
	return nil
}

// UnlinkUser revokes access of a backend user to a space
func (s *SpaceService) UnlinkUser(ctx context.Context, telegramID, spaceID, userID int64) error {
	if err := s.repo.UnlinkUser(ctx, telegramID, spaceID, userID); err != nil {
		return fmt.Errorf("unlink user: %w", err)
	}
	s.logger.Info("User unlinked from space",
		zap.Int64("user_id", telegramID),
		zap.Int64("space_id", spaceID),
		zap.Int64("unlinked_user_id", userID),
	)
	return nil
}

// SetJointChat connects a chat to the active space; "" disconnects it.
// The returned user reflects the state before the change.
func (s *SpaceService) SetJointChat(ctx context.Context, telegramID int64, chat string) (*domain.User, error) {
	user, err := s.Owner(ctx, telegramID)
	if err != nil {
		return user, err
	}
	space := user.CurrentSpace()
	if _, err := s.repo.UpdateSpace(ctx, telegramID, space.ID, domain.LinkedChatPatch(chat)); err != nil {
		return user, fmt.Errorf("update space: %w", err)
	}
	s.logger.Info("Joint chat updated",
		zap.Int64("user_id", telegramID),
		zap.Int64("space_id", space.ID),
		zap.Bool("connected", chat != ""),
	)
	return user, nil
}

// Choose makes an accessible space active and returns the user and space
func (s *SpaceService) Choose(ctx context.Context, telegramID, spaceID int64) (*domain.User, *domain.Space, error) {
	user, err := s.user(ctx, telegramID)
	if err != nil {
		return nil, nil, err
	}
	space, ok := user.FindSpace(spaceID)
	if !ok {
		return user, nil, ErrSpaceNotAccessible
	}
	if err := s.repo.UpdateCoreSettings(ctx, telegramID, domain.SpaceUpdate(spaceID)); err != nil {
		return user, nil, fmt.Errorf("update core settings: %w", err)
	}
	return user, space, nil
}
