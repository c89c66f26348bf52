package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jdholguin19/tareas/internal/models"
	"github.com/Jdholguin19/tareas/internal/repositories"
)

var ErrUserExists = errors.New("user already exists")

type UserService interface {
	Register(ctx context.Context, username, plainPassword string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
}

type userService struct {
	repo        repositories.UserRepository
	authService AuthService
}

func NewUserService(repo repositories.UserRepository, authService AuthService) UserService {
	return &userService{repo: repo, authService: authService}
}

// Register creates a user with a bcrypt-hashed password. Username
// collisions (against username or email) are rejected.
func (s *userService) Register(ctx context.Context, username, plainPassword string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(strings.TrimSpace(plainPassword)) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	existing, err := s.repo.GetByUsernameOrEmail(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.repo.GetByUsernameOrEmail(ctx, login)
}

func (s *userService) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(ctx, userID, token, expiresAt)
}

func (s *userService) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(ctx, token)
}

func (s *userService) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(ctx, oldToken, newToken, expiresAt)
}
