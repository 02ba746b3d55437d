package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/fjod/go_shop/internal/auth"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"go.uber.org/zap"
)

// bcrypt rejects longer inputs.
const maxPasswordBytes = 72

// TokenManager issues and verifies identity tokens.
type TokenManager interface {
	Issue(email string) (string, error)
	Verify(token string) (string, error)
}

type UserService struct {
	users  repository.UserRepository
	tokens TokenManager
	log    *zap.Logger
}

func NewUserService(users repository.UserRepository, tokens TokenManager, log *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Token string      `json:"token"`
	Role  domain.Role `json:"role"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, validationErr("name, email and password are required")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, validationErr("password must be at most %d bytes", maxPasswordBytes)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationErr("invalid email %q", email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, storeErr("hash password", err)
	}
	token, err := s.tokens.Issue(email)
	if err != nil {
		return nil, storeErr("issue token", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Token:        token,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeErr("create user", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("email", email))
	return user, nil
}

// Login checks credentials and returns the user's token, issuing a new one
// when the stored token no longer verifies.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationErr("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errIsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("load user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if subject, err := s.tokens.Verify(user.Token); err != nil || subject != user.Email {
		token, err := s.tokens.Issue(user.Email)
		if err != nil {
			return nil, storeErr("issue token", err)
		}
		if err := s.users.SetToken(ctx, user.ID, token); err != nil {
			return nil, storeErr("store token", err)
		}
		user.Token = token
		s.log.Info("token reissued", zap.String("user_id", user.ID))
	}

	return &LoginResult{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: user.Token,
		Role:  user.Role,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
