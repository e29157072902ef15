package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	database "github.com/localexplorer/itinerary-api/app/db"
	"github.com/localexplorer/itinerary-api/internal/api"
)

const uniqueViolationCode = "23505"

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// GetRefreshToken returns the owning user and expiry of an unrevoked
	// refresh token, or api.ErrUnauthenticated when unknown/revoked.
	GetRefreshToken(ctx context.Context, token string) (userID string, expiresAt time.Time, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepository(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

func (r *RepositoryImpl) CreateUser(ctx context.Context, username, email, passwordHash string) (string, error) {
	query := `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	var id string
	err := r.db.QueryRow(ctx, query, username, email, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", fmt.Errorf("email already registered: %w", api.ErrConflict)
		}
		r.logger.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
        SELECT id, username, email, password_hash, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	var u User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get user by email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID string) (*User, error) {
	query := `
        SELECT id, username, email, password_hash, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	var u User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get user by ID", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *RepositoryImpl) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := `
        INSERT INTO refresh_tokens (token, user_id, expires_at)
        VALUES ($1, $2, $3)
    `
	if _, err := r.db.Exec(ctx, query, token, userID, expiresAt); err != nil {
		r.logger.ErrorContext(ctx, "Failed to store refresh token", slog.Any("error", err))
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	query := `
        SELECT user_id, expires_at
        FROM refresh_tokens
        WHERE token = $1 AND revoked_at IS NULL
    `
	var userID string
	var expiresAt time.Time
	err := r.db.QueryRow(ctx, query, token).Scan(&userID, &expiresAt)
	if err != nil {
		if database.IsNoRows(err) {
			return "", time.Time{}, fmt.Errorf("refresh token unknown or revoked: %w", api.ErrUnauthenticated)
		}
		r.logger.ErrorContext(ctx, "Failed to look up refresh token", slog.Any("error", err))
		return "", time.Time{}, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return userID, expiresAt, nil
}

func (r *RepositoryImpl) RevokeRefreshToken(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE token = $1 AND revoked_at IS NULL`
	if _, err := r.db.Exec(ctx, query, token); err != nil {
		r.logger.ErrorContext(ctx, "Failed to revoke refresh token", slog.Any("error", err))
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
