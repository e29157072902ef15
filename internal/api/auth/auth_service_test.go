package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/localexplorer/itinerary-api/config"
	"github.com/localexplorer/itinerary-api/internal/api"
)

type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (string, error) {
	args := m.Called(ctx, username, email, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepo) GetRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAuthRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

var testJWTCfg = config.JWTConfig{
	SecretKey:  "test-secret",
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
}

func TestRegister(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")) == nil
		})).Return("user-1", nil).Once()

		err := service.Register(ctx, "alice", "alice@example.com", "password123")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		err := service.Register(ctx, "alice", "alice@example.com", "short")
		assert.ErrorIs(t, err, api.ErrValidation)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.Anything).
			Return("", api.ErrConflict).Once()

		err := service.Register(ctx, "alice", "alice@example.com", "password123")
		assert.ErrorIs(t, err, api.ErrConflict)
	})
}

func TestLogin(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hashed),
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil).Once()

		access, refresh, err := service.Login(ctx, user.Email, "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, refresh)

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(access, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(testJWTCfg.SecretKey), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, user.ID, claims.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		_, _, err := service.Login(ctx, user.Email, "wrong-password")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "StoreRefreshToken")
	})

	t.Run("UnknownEmailMapsToUnauthenticated", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
			Return(nil, api.ErrNotFound).Once()

		_, _, err := service.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})
}

func TestRefresh(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	user := &User{ID: "user-1", Username: "alice", Email: "alice@example.com"}

	t.Run("RotatesToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("GetRefreshToken", mock.Anything, "old-token").
			Return(user.ID, time.Now().Add(time.Hour), nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()
		mockRepo.On("RevokeRefreshToken", mock.Anything, "old-token").Return(nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil).Once()

		access, refresh, err := service.Refresh(ctx, "old-token")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEqual(t, "old-token", refresh)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("GetRefreshToken", mock.Anything, "stale-token").
			Return(user.ID, time.Now().Add(-time.Minute), nil).Once()

		_, _, err := service.Refresh(ctx, "stale-token")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "RevokeRefreshToken")
	})

	t.Run("UnknownToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewServiceImpl(mockRepo, testJWTCfg, logger)

		mockRepo.On("GetRefreshToken", mock.Anything, "bogus").
			Return("", time.Time{}, errors.New("refresh token unknown or revoked")).Once()

		_, _, err := service.Refresh(ctx, "bogus")
		assert.Error(t, err)
	})
}
