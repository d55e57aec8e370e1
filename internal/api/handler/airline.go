package handler

import (
	"net/http"

	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/internal/usecases/syncing"
)

func ListAirlines(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, sess.Store().Airlines().Get())
	}
}

func GetAirline(sessions *session.Manager, service *syncing.AirlineService) http.HandlerFunc {
	return getEntity[domain.Airline](sessions, service)
}

func CreateAirline(sessions *session.Manager, service *syncing.AirlineService) http.HandlerFunc {
	return addEntity[domain.AirlineInput](sessions, service, decodeJSON[domain.AirlineInput], "Companhia aérea adicionada com sucesso!")
}

func UpdateAirline(sessions *session.Manager, service *syncing.AirlineService) http.HandlerFunc {
	return updateEntity[domain.AirlinePatch](sessions, service, decodeJSON[domain.AirlinePatch], "Companhia aérea atualizada com sucesso!")
}
