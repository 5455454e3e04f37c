package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rittz/backend/internal/config"
)

const bcryptCost = 10

// ErrInvalidCredentials is returned when the password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrMissingFields is returned when a required registration field is empty.
var ErrMissingFields = errors.New("all fields are required")

// Service contains business logic for account management.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService creates a new user Service.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, userName, email, password string, fullName *string) (*User, error) {
	userName = strings.ToLower(strings.TrimSpace(userName))
	email = strings.ToLower(strings.TrimSpace(email))
	if userName == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, userName, email, string(hash), fullName)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the password for the account behind email and issues a JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	if email == "" {
		return "", nil, ErrMissingFields
	}

	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// GetByID returns a user by their UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(u *User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"email":    u.Email,
		"userName": u.UserName,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
