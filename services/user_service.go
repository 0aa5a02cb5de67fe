package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quizarena/quiz-tournament/models"
	"github.com/quizarena/quiz-tournament/repositories"
)

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	DeleteAccount(ctx context.Context, userID int) error
	DeletePlayer(ctx context.Context, playerID int) error
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// DeleteAccount removes the caller's own account.
func (s *userService) DeleteAccount(ctx context.Context, userID int) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// DeletePlayer removes a player account on behalf of an admin. Admin
// accounts cannot be deleted this way.
func (s *userService) DeletePlayer(ctx context.Context, playerID int) error {
	user, err := s.userRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsAdmin() {
		return ErrForbiddenOperation
	}

	if err := s.userRepo.Delete(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}
