package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

type SignupInput struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required,len=10,number"`
	Address  string `json:"address" validate:"required,min=3"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileInput fields are optional. Empty fields keep their stored value.
type ProfileInput struct {
	Name    string `json:"name" validate:"omitempty,min=3"`
	Phone   string `json:"phone" validate:"omitempty,len=10,number"`
	Address string `json:"address" validate:"omitempty,min=3"`
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type AuthService struct {
	users  repository.UserRepo
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a buyer account and returns it with a fresh token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if err := validateInput(in); err != nil {
		return nil, "", err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, "", apperrors.NewConflict("Already registered, please login")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperrors.NewInternal("Error in registration", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperrors.NewInternal("Error in registration", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		Password: hash,
		Role:     auth.RoleBuyer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperrors.NewConflict("Already registered, please login")
		}
		return nil, "", apperrors.NewInternal("Error in registration", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	logger.Info(ctx, "account created", zap.String("user_id", user.ID.Hex()))
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperrors.NewNotFound("Email is not registered")
		}
		return nil, "", apperrors.NewInternal("Error in login", err)
	}

	ok, err := auth.VerifyPassword(in.Password, user.Password)
	if err != nil {
		return nil, "", apperrors.NewInternal("Error in login", err)
	}
	if !ok {
		return nil, "", apperrors.NewUnauthenticated("Invalid password")
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID.Hex(), Email: user.Email, Role: user.Role})
	if err != nil {
		return "", apperrors.NewInternal("failed to issue token", err)
	}
	return token, nil
}

// UpdateProfile changes name, phone and address of the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, caller auth.Identity, in ProfileInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	current, err := s.users.FindByEmail(ctx, normalizeEmail(caller.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("account no longer exists")
		}
		return nil, apperrors.NewInternal("Error while updating profile", err)
	}

	update := repository.ProfileUpdate{Name: current.Name, Phone: current.Phone, Address: current.Address}
	if in.Name != "" {
		update.Name = in.Name
	}
	if in.Phone != "" {
		update.Phone = in.Phone
	}
	if in.Address != "" {
		update.Address = in.Address
	}

	updated, err := s.users.UpdateProfile(ctx, current.ID, update)
	if err != nil {
		return nil, storeError("Error while updating profile", err)
	}
	return updated, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("Error while getting users", err)
	}
	return users, nil
}
