package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

type contextKey string

const (
	ContextKeyUser  contextKey = "user"
	ContextKeyToken contextKey = "token"
)

// TokenValidator é implementado pelos provedores de identidade
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

var publicPaths = map[string]bool{
	"/v1/login":    true,
	"/v1/signup":   true,
	"/healthcheck": true,
}

// AuthMiddleware valida o token do header Authorization. Conexões websocket
// não enviam headers pelo navegador, então o parâmetro token também é aceito.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrAuthRequired, "Token de acesso é obrigatório", nil)
				return
			}

			claims, err := validator.ValidateToken(r.Context(), tokenString)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Token inválido", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, claims)
			ctx = context.WithValue(ctx, ContextKeyToken, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		return tokenString, tokenString != authHeader && tokenString != ""
	}

	tokenString := r.URL.Query().Get("token")
	return tokenString, tokenString != ""
}

// ClaimsFromContext retorna as claims gravadas por AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyUser).(*domain.Claims)
	return claims, ok && claims != nil
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyToken).(string)
	return token
}
