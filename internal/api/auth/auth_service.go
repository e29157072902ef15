package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/localexplorer/itinerary-api/config"
	"github.com/localexplorer/itinerary-api/internal/api"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (access, refresh string, err error)
	Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	jwtCfg config.JWTConfig
}

func NewServiceImpl(repo Repository, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || len(password) < 8 {
		return fmt.Errorf("%w: username, email and a password of at least 8 characters are required", api.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.repo.CreateUser(ctx, username, email, string(hash)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User registered", slog.String("email", email))
	return nil
}

func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return "", "", fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
		}
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
	}

	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", err
	}
	if time.Now().After(expiresAt) {
		return "", "", fmt.Errorf("refresh token expired: %w", api.ErrUnauthenticated)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	// Rotate: the presented token is revoked before new tokens go out.
	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return "", "", err
	}

	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) issueTokens(ctx context.Context, user *User) (string, string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTTL)),
		},
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return "", "", err
	}
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refresh, now.Add(s.jwtCfg.RefreshTTL)); err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
