package middleware

import (
	"bytes"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/config"
	"customer-service/internal/pkg/apperrors"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tokenString
}

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	secret := "testsecret"
	cfg := config.AuthConfig{Enabled: true, JWTSecret: secret}

	var gotSubject string
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	serve := func(cfg config.AuthConfig, authHeader string) *httptest.ResponseRecorder {
		gotSubject = ""
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		AuthMiddleware(cfg, logger)(nextHandler).ServeHTTP(rec, req)
		return rec
	}

	t.Run("should allow request when middleware is disabled", func(t *testing.T) {
		rec := serve(config.AuthConfig{Enabled: false}, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("should reject request with missing Authorization header", func(t *testing.T) {
		rec := serve(cfg, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.CodeUnauthorized, resp.Error.Code)
	})

	t.Run("should reject malformed header", func(t *testing.T) {
		rec := serve(cfg, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject request with invalid token", func(t *testing.T) {
		rec := serve(cfg, "Bearer invalidtoken")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		token := signedToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"username": "ana"})
		rec := serve(cfg, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject expired token", func(t *testing.T) {
		token := signedToken(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
			"username": "ana",
			"exp":      time.Now().Add(-time.Hour).Unix(),
		})
		rec := serve(cfg, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject unsigned token", func(t *testing.T) {
		token := signedToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"username": "ana"})
		rec := serve(cfg, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should allow request with valid token and expose the subject", func(t *testing.T) {
		token := signedToken(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
			"username": "ana",
			"exp":      time.Now().Add(time.Hour).Unix(),
		})
		rec := serve(cfg, "bearer "+token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ana", gotSubject)
	})

	t.Run("should fall back to the sub claim", func(t *testing.T) {
		token := signedToken(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "1234567890"})
		rec := serve(cfg, "Bearer "+token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1234567890", gotSubject)
	})
}
