package api_test

import (
	"context"
	"customer-service/internal/api"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// recordingService answers every call with the same customer and remembers
// which operation the router dispatched to.
type recordingService struct {
	calls []string
}

func (s *recordingService) record(op string) *customer.Customer {
	s.calls = append(s.calls, op)
	return &customer.Customer{ID: 1, Name: "Maria Lopez", Identification: "2222222222", Active: true}
}

func (s *recordingService) CreateCustomer(ctx context.Context, draft *customer.Customer) (*customer.Customer, error) {
	return s.record("CreateCustomer"), nil
}

func (s *recordingService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	return s.record("GetCustomer"), nil
}

func (s *recordingService) GetCustomerByIdentification(ctx context.Context, identification string) (*customer.Customer, error) {
	return s.record("GetCustomerByIdentification"), nil
}

func (s *recordingService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	return []*customer.Customer{s.record("ListCustomers")}, nil
}

func (s *recordingService) UpdateCustomer(ctx context.Context, customerID int64, patch customer.Patch) (*customer.Customer, error) {
	return s.record("UpdateCustomer"), nil
}

func (s *recordingService) DeactivateCustomer(ctx context.Context, customerID int64) error {
	s.record("DeactivateCustomer")
	return nil
}

func (s *recordingService) ReactivateCustomer(ctx context.Context, customerID int64) error {
	s.record("ReactivateCustomer")
	return nil
}

func (s *recordingService) DeleteCustomer(ctx context.Context, customerID int64) error {
	s.record("DeleteCustomer")
	return nil
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Auth: config.AuthConfig{Enabled: false, JWTSecret: "router-secret"},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

func TestCustomerRoutes(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
		wantCall   string
	}{
		{http.MethodPost, "/api/v1/customers", `{"name":"Maria Lopez","identification":"2222222222","password":"pass123"}`, http.StatusCreated, "CreateCustomer"},
		{http.MethodGet, "/api/v1/customers", "", http.StatusOK, "ListCustomers"},
		{http.MethodGet, "/api/v1/customers/1", "", http.StatusOK, "GetCustomer"},
		{http.MethodGet, "/api/v1/customers/identification/2222222222", "", http.StatusOK, "GetCustomerByIdentification"},
		{http.MethodPut, "/api/v1/customers/1", `{"address":"Quito"}`, http.StatusOK, "UpdateCustomer"},
		{http.MethodDelete, "/api/v1/customers/1", "", http.StatusNoContent, "DeactivateCustomer"},
		{http.MethodDelete, "/api/v1/customers/1/hard", "", http.StatusNoContent, "DeleteCustomer"},
		{http.MethodPut, "/api/v1/customers/1/reactivate", "", http.StatusNoContent, "ReactivateCustomer"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			svc := &recordingService{}
			router := api.SetupRouter(svc, stubPinger{}, testConfig(), logger)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, body))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, []string{tt.wantCall}, svc.calls)
		})
	}
}

func TestRouterAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Auth.Enabled = true
	svc := &recordingService{}
	router := api.SetupRouter(svc, stubPinger{}, cfg, logger)

	t.Run("customer routes require a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers/1", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.calls)
	})

	t.Run("issued token is accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"username":"ops"}`)))
		require.Equal(t, http.StatusOK, rec.Code)

		var tokenResp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokenResp))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/1", nil)
		req.Header.Set("Authorization", tokenResp.Token)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"GetCustomer"}, svc.calls)
	})

	t.Run("health stays public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestProbesAndOps(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		router := api.SetupRouter(&recordingService{}, stubPinger{}, testConfig(), logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("ready when the database answers", func(t *testing.T) {
		router := api.SetupRouter(&recordingService{}, stubPinger{}, testConfig(), logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("not ready when the database is down", func(t *testing.T) {
		router := api.SetupRouter(&recordingService{}, stubPinger{err: errors.New("connection refused")}, testConfig(), logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		router := api.SetupRouter(&recordingService{}, stubPinger{}, testConfig(), logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})

	t.Run("swagger redirect", func(t *testing.T) {
		router := api.SetupRouter(&recordingService{}, stubPinger{}, testConfig(), logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))

		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
	})

	t.Run("unknown route", func(t *testing.T) {
		router := api.SetupRouter(&recordingService{}, stubPinger{}, testConfig(), logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
