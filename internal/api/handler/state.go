package handler

import (
	"net/http"

	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
)

// GetState retorna o estado completo do store do dono
func GetState(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, sess.Store().Snapshot())
	}
}

// Refresh faz uma leitura pontual das coleções, útil após uma falha de assinatura
func Refresh(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		if !sess.Running() {
			if err := sess.Start(r.Context()); err != nil {
				writeSyncError(w, err)
				return
			}
		}

		if err := sess.Refresh(r.Context()); err != nil {
			writeSyncError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, sess.Store().Snapshot())
	}
}

func DismissNotification(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		sess.Store().DismissNotification()
		w.WriteHeader(http.StatusNoContent)
	}
}
