package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/maheshrc27/marketing-agent/internal/models"
	"github.com/maheshrc27/marketing-agent/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (int64, error)
}

type authService struct {
	u repository.UserRepository
}

func NewAuthService(u repository.UserRepository) AuthService {
	return &authService{
		u: u,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return email, nil
}

func (s *authService) Register(ctx context.Context, email, password string) (int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		err = fmt.Errorf("%w: password must be between %d and %d characters", ErrInvalidInput, minPasswordLength, maxPasswordLength)
		slog.Info(err.Error())
		return 0, err
	}

	_, isExist, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if isExist {
		return 0, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	userID, err := s.u.Create(ctx, nil, &models.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		Plan:         models.PlanFree,
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, isExist, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if !isExist || !user.IsActive {
		return 0, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.Info(err.Error())
		}
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}
