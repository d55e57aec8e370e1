package handler

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

type getter[T any] interface {
	Get(ctx context.Context, ownerID, id string) (T, error)
}

type adder[In any] interface {
	Add(ctx context.Context, ownerID string, in In) (string, error)
}

type updater[P interface{ IsEmpty() bool }] interface {
	Update(ctx context.Context, ownerID, id string, patch P) error
}

type CreatedResponse struct {
	ID string `json:"id"`
}

func getEntity[T any](sessions *session.Manager, service getter[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ownerID, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		item, err := service.Get(r.Context(), ownerID, id)
		if err != nil {
			writeSyncError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, item)
	}
}

// addEntity grava o registro e responde apenas o ID: o registro completo
// chega ao store pela assinatura
func addEntity[In any](sessions *session.Manager, service adder[In], decode func(*http.Request) (In, error), success string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ownerID, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		in, err := decode(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		id, err := service.Add(r.Context(), ownerID, in)
		notifyResult(sess.Store(), err, success)
		if err != nil {
			writeSyncError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
	}
}

func updateEntity[P interface{ IsEmpty() bool }](sessions *session.Manager, service updater[P], decode func(*http.Request) (P, error), success string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ownerID, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		patch, err := decode(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}
		if patch.IsEmpty() {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nenhum campo informado para atualização", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		err = service.Update(r.Context(), ownerID, id, patch)
		notifyResult(sess.Store(), err, success)
		if err != nil {
			writeSyncError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// decodeJSON decodifica o corpo diretamente no tipo de entrada do domínio
func decodeJSON[T any](r *http.Request) (T, error) {
	var v T
	err := json.NewDecoder(r.Body).Decode(&v)
	return v, err
}
