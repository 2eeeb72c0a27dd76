package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/internal/session"
	"taskhub/internal/validation"
	"taskhub/pkg/crypto"
	"taskhub/pkg/logger"
)

type AuthService struct {
	store    repository.Store
	sessions session.Revoker
	validate *validation.Validator
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type tokenClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

var errInvalidCredentials = apperrors.Unauthenticated("invalid credentials")

// Login checks the credentials and issues a signed token. lastLogin is only
// updated once the token has been issued.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByEmail(ctx, in.Email)
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			logger.SecurityLogger.Warn("Login for unknown email", zap.String("email", in.Email))
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := crypto.ComparePassword(user.Password, in.Password); err != nil {
		if errors.Is(err, crypto.ErrMismatch) {
			logger.SecurityLogger.Warn("Invalid password", zap.String("user_id", user.ID))
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !user.IsActive {
		logger.SecurityLogger.Warn("Login to inactive account", zap.String("user_id", user.ID))
		return nil, apperrors.Unauthenticated("account is inactive")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	token, err := s.issue(user, now, expiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) issue(user *models.User, now, expiresAt time.Time) (string, error) {
	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies a bearer token and resolves it to a Principal. The
// role is taken from the stored user so role changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, apperrors.Unauthenticated("invalid or expired token")
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return Principal{}, apperrors.Unauthenticated("invalid token claims")
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Principal{}, apperrors.Unauthenticated("token has been revoked")
	}

	user, err := s.store.Users().GetByID(ctx, claims.Subject)
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return Principal{}, apperrors.Unauthenticated("user no longer exists")
		}
		return Principal{}, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return Principal{}, apperrors.Unauthenticated("account is inactive")
	}

	return Principal{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, p Principal) error {
	ttl := p.ExpiresAt.Sub(s.now())
	if err := s.sessions.Revoke(ctx, p.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
