package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tcg-catalog/internal/models"
	"github.com/tcg-catalog/internal/repository"
	"github.com/tcg-catalog/pkg/crypto"
)

// UserService handles user operations
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserRequest represents the create user request
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

// UpdateUserRequest represents a partial user update
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6,max=100"`
}

// IsEmpty reports whether no field was supplied
func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil
}

// CreateUser registers a new user
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	name, err := cleanName("name", req.Name)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)

	// Check if email exists
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, storeError("check email", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, storeError("create user", err)
	}

	log.Printf("[UserService] Created user %s", user.ID)
	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", id, err)
	}
	return user, nil
}

// ListUsers retrieves users with pagination
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, pageOf(page, pageSize))
	if err != nil {
		return nil, 0, storeError("list users", err)
	}
	return users, total, nil
}

// UpdateUser applies the supplied fields to an existing user
func (s *UserService) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if req.Name != nil {
		name, err := cleanName("name", *req.Name)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, storeError("check email", err)
			}
			if exists {
				return nil, ErrEmailTaken
			}
		}
		user.Email = email
	}
	if req.Password != nil {
		hashedPassword, err := crypto.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("user", id)
		}
		return nil, storeError("update user", err)
	}
	return user, nil
}

// DeleteUser removes a user. Decks they own are kept and reported by the integrity audit.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return lookupError("user", id, err)
	}
	log.Printf("[UserService] Deleted user %s", id)
	return nil
}
