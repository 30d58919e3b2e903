package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"teamhub/internal/auth"
	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

var (
	// ErrInvalidCredentials indicates a failed login. The message never
	// distinguishes an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an already known email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrValidation wraps input failures detected before any store access.
	ErrValidation = errors.New("invalid input")
)

// MinPasswordLength matches the registration contract.
const MinPasswordLength = 6

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
	PlayerID *int64
	Phone    string
}

// AuthService issues sessions and manages account lifecycle.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, "", fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	if len(input.Password) < MinPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if input.Name == "" {
		return nil, "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !input.Role.Valid() {
		return nil, "", fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Name:         input.Name,
		Role:         input.Role,
		PlayerID:     input.PlayerID,
		Phone:        input.Phone,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return sanitizeUser(user), token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return sanitizeUser(user), token, nil
}

// sanitizeUser strips the credential hash before the user leaves the
// service layer.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		PlayerID:  user.PlayerID,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}
