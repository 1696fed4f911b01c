// Package auth implements registration, login and JWT token issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"captable-backend/internal/domain"
	"captable-backend/internal/pkg/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	DB            *gorm.DB
	JWTSecret     string
	TokenLifetime time.Duration
}

type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResult is returned on successful login.
type TokenResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}
	if !validation.IsValidFullname(input.Fullname) {
		return nil, ErrInvalidFullname
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role != domain.RoleAdmin {
		role = domain.RoleEmployee
	}
	u := domain.User{
		Fullname:     strings.TrimSpace(input.Fullname),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and returns a signed JWT.
func (s *Service) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.TokenLifetime)
	token, err := s.signToken(&u, expiresAt)
	if err != nil {
		return nil, err
	}
	return &TokenResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// GetProfile loads the authenticated user's record.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ChangePassword re-verifies the current password before swapping the hash.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if !validation.IsValidPassword(next) {
		return ErrWeakPassword
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrIncorrectPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&u).Update("password_hash", string(hash)).Error
}

func (s *Service) signToken(u *domain.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   u.UserID.String(),
		"email": u.Email,
		"role":  u.Role,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
