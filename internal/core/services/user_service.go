package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bankaroo/banking_app/internal/apperrors"
	"github.com/bankaroo/banking_app/internal/core/domain"
	portsrepo "github.com/bankaroo/banking_app/internal/core/ports/repositories"
	"github.com/bankaroo/banking_app/internal/dto"
	"github.com/bankaroo/banking_app/internal/utils"
)

type UserService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

func NewUserService(userRepo portsrepo.UserRepositoryFacade) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser creates a new user with a hashed password. The username and
// email unique constraints surface as ErrDuplicate.
func (s *UserService) CreateUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(userID, now),
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", "username", req.Username)
		}
		return nil, err
	}

	s.LogInfo(ctx, "User created", "user_id", user.UserID)
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by ID", "user_id", userID)
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by username")
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *UserService) ListUsers(ctx context.Context, limit int, nextToken *string) ([]domain.User, *string, error) {
	users, token, err := s.userRepo.ListUsers(ctx, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, token, nil
}

// AuthenticateUser verifies a username and password pair. Unknown usernames
// and wrong passwords both surface as ErrUnauthorized so the response does
// not leak which one it was.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to load user for authentication")
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// DeactivateUser marks a user as deleted (soft delete).
func (s *UserService) DeactivateUser(ctx context.Context, userID string, requestingUserID string) error {
	if userID != requestingUserID {
		return fmt.Errorf("users may only deactivate themselves: %w", apperrors.ErrValidation)
	}
	if err := s.userRepo.DeactivateUser(ctx, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate user", "user_id", userID)
		}
		return err
	}
	s.LogInfo(ctx, "User deactivated", "user_id", userID)
	return nil
}
