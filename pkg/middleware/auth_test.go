package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

type validatorFunc func(ctx context.Context, token string) (*domain.Claims, error)

func (f validatorFunc) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	return f(ctx, token)
}

func acceptToken(valid string) TokenValidator {
	return validatorFunc(func(_ context.Context, token string) (*domain.Claims, error) {
		if token != valid {
			return nil, errors.New("token inválido")
		}
		return &domain.Claims{OwnerID: "u1", Email: "ana@x.com"}, nil
	})
}

func TestAuthMiddleware(t *testing.T) {
	var gotClaims *domain.Claims
	var gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		gotToken = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(acceptToken("abc"))(next)

	tests := []struct {
		name       string
		method     string
		target     string
		header     string
		wantStatus int
		wantOwner  string
	}{
		{name: "rota pública", method: http.MethodPost, target: "/v1/login", wantStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, target: "/v1/customers", wantStatus: http.StatusOK},
		{name: "sem token", method: http.MethodGet, target: "/v1/customers", wantStatus: http.StatusUnauthorized},
		{name: "header sem Bearer", method: http.MethodGet, target: "/v1/customers", header: "abc", wantStatus: http.StatusUnauthorized},
		{name: "token inválido", method: http.MethodGet, target: "/v1/customers", header: "Bearer xyz", wantStatus: http.StatusUnauthorized},
		{name: "header válido", method: http.MethodGet, target: "/v1/customers", header: "Bearer abc", wantStatus: http.StatusOK, wantOwner: "u1"},
		{name: "query para websocket", method: http.MethodGet, target: "/v1/live?token=abc", wantStatus: http.StatusOK, wantOwner: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims, gotToken = nil, ""

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantOwner == "" {
				assert.Nil(t, gotClaims)
				return
			}
			require.NotNil(t, gotClaims)
			assert.Equal(t, tt.wantOwner, gotClaims.OwnerID)
			assert.Equal(t, "abc", gotToken)
		})
	}
}

func TestRequireOwner(t *testing.T) {
	handler := RequireOwner()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/state", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), apiErrors.ErrAuthRequired)

	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, &domain.Claims{OwnerID: "u1"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIsOriginAllowed(t *testing.T) {
	assert.True(t, IsOriginAllowed("http://localhost:5173"))
	assert.False(t, IsOriginAllowed("https://evil.example.com"))
}
