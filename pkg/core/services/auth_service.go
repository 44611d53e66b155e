package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

// DefaultBcryptCost is used when hashing new passwords
const DefaultBcryptCost = 12

type AuthService struct {
	users ports.UserRepository
	cost  int
	now   func() time.Time
}

func NewAuthService(users ports.UserRepository) *AuthService {
	return &AuthService{users: users, cost: DefaultBcryptCost, now: time.Now}
}

// Login checks the password and stamps the last login time
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	user.LastLoginAt = s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, user.LastLoginAt); err != nil {
		return nil, err
	}
	log.Printf("[auth] %s logged in", email)
	return user, nil
}

// Register creates an account with a hashed password
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: email and a password of at least 8 characters are required", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Email: email, PasswordHash: string(hash), CreatedAt: s.now().UTC()}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

var _ ports.AuthService = (*AuthService)(nil)
