package middleware

import (
	"net/http"

	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

// RequireOwner restringe a rota a requisições com um dono autenticado
func RequireOwner() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.OwnerID == "" {
				log.L.WithContext(r.Context()).Warn("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrAuthRequired, "Usuário não autenticado", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
