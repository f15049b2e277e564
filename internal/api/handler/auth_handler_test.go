package handler

import (
	"bytes"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/config"
	"customer-service/internal/pkg/apperrors"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Auth: config.AuthConfig{
				JWTSecret: testJWTSecret,
			},
		},
	}
}

func TestGenerateBearerToken(t *testing.T) {
	handler := NewAuthHandler(newTestConfig(), logger)
	fixedNow := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return fixedNow }

	t.Run("successfully generates token", func(t *testing.T) {
		body, _ := json.Marshal(dto.TokenRequest{Username: "testuser"})
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.GenerateBearerToken(w, req)

		resp := w.Result()
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var respBody dto.TokenResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&respBody))
		require.True(t, strings.HasPrefix(respBody.Token, "Bearer "))

		parsed, err := jwt.Parse(strings.TrimPrefix(respBody.Token, "Bearer "), func(token *jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
		require.NoError(t, err)
		claims, ok := parsed.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, "testuser", claims["username"])
		assert.Equal(t, float64(fixedNow.Add(tokenTTL).Unix()), claims["exp"])
	})

	t.Run("fails with invalid request body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte("invalid json")))
		w := httptest.NewRecorder()

		handler.GenerateBearerToken(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var respBody dto.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&respBody))
		assert.Contains(t, respBody.Error.Message, apperrors.ErrInvalidArgument.Error())
	})

	t.Run("fails with missing username", func(t *testing.T) {
		body, _ := json.Marshal(dto.TokenRequest{Username: "  "})
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.GenerateBearerToken(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var respBody dto.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&respBody))
		assert.Equal(t, "username", respBody.Error.Field)
	})

	t.Run("fails without configured secret", func(t *testing.T) {
		noSecret := NewAuthHandler(config.Config{}, logger)
		body, _ := json.Marshal(dto.TokenRequest{Username: "testuser"})
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
		w := httptest.NewRecorder()

		noSecret.GenerateBearerToken(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
