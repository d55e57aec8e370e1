package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"github.com/vfg2006/sales-manager-api/pkg/log"
	"github.com/vfg2006/sales-manager-api/pkg/middleware"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if !decodeBody(w, r, &req) {
			return
		}

		session, err := service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, session)
	}
}

func Signup(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if !decodeBody(w, r, &req) {
			return
		}

		session, err := service.Signup(r.Context(), req.Email, req.Password)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, session)
	}
}

// Logout encerra o token atual; o provedor publica o logout e a sessão do dono é encerrada
func Logout(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := service.SignOut(r.Context(), middleware.TokenFromContext(r.Context())); err != nil {
			handleAuthError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleAuthError trata erros específicos de autenticação e retorna a resposta apropriada
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) {
		apiErr := apiErrors.FromError(authErr, authErr.Code)
		if authErr.OwnerID != "" {
			apiErr.Details = map[string]any{"owner_id": authErr.OwnerID}
		}
		apiErr.Write(w)
		return
	}

	log.L.WithContext(r.Context()).WithError(err).Error("Erro não tratado na autenticação")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao autenticar", nil)
}
