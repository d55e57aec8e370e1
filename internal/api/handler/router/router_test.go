package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

func TestRouter(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rt := New(WithRoutes(Route{
		Path:        "/v1/sales/:id",
		Method:      http.MethodGet,
		Middlewares: []func(http.Handler) http.Handler{mark("primeiro"), mark("segundo")},
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
			w.WriteHeader(http.StatusOK)
		}),
	}))

	t.Run("middlewares na ordem da lista", func(t *testing.T) {
		order = nil
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sales/s1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"primeiro", "segundo", "handler"}, order)
	})

	t.Run("rota desconhecida", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nada", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), apiErrors.ErrDocumentNotFound))
	})

	t.Run("método não suportado", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/v1/sales/s1", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), apiErrors.ErrMethodNotAllowed)
	})
}
