package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	logger := slog.Default()
	middleware := Authenticate(logger, testJWTCfg)

	var gotUserID string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("ValidToken", func(t *testing.T) {
		token := signToken(t, testJWTCfg.SecretKey, "user-1", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/saved", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotOK)
		assert.Equal(t, "user-1", gotUserID)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/saved", nil)
		rec := httptest.NewRecorder()
		middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/saved", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token := signToken(t, testJWTCfg.SecretKey, "user-1", time.Now().Add(-time.Minute))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/saved", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired")
	})

	t.Run("WrongSignature", func(t *testing.T) {
		token := signToken(t, "some-other-secret", "user-1", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/saved", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
