package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/store"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"github.com/vfg2006/sales-manager-api/pkg/log"
	"github.com/vfg2006/sales-manager-api/pkg/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.L.WithError(err).Error("Erro ao codificar resposta")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
		return false
	}
	return true
}

// ownerSession retorna a sessão do dono autenticado, abrindo-a no primeiro acesso
func ownerSession(w http.ResponseWriter, r *http.Request, sessions *session.Manager) (*session.Session, string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrAuthRequired, "Usuário não autenticado", nil)
		return nil, "", false
	}

	sess, err := sessions.Session(r.Context(), claims.Identity())
	if err != nil {
		writeSyncError(w, err)
		return nil, "", false
	}

	return sess, claims.OwnerID, true
}

// writeSyncError converte os erros dos serviços de sincronização em respostas da API
func writeSyncError(w http.ResponseWriter, err error) {
	var syncErr *syncing.SyncError
	if errors.As(err, &syncErr) {
		apiErr := apiErrors.FromError(syncErr, syncErr.Code)
		apiErr.Details = syncErr.Details
		apiErr.Write(w)
		return
	}

	if errors.Is(err, session.ErrNoIdentity) {
		apiErrors.FromError(err, apiErrors.ErrAuthRequired).Write(w)
		return
	}

	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno no servidor", nil)
}

// notifyResult publica no store do dono o resultado de uma escrita
func notifyResult(st *store.Store, err error, success string) {
	if err != nil {
		st.Notify(err.Error(), domain.SeverityError)
		return
	}
	st.Notify(success, domain.SeveritySuccess)
}
