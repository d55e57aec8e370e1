package handler

import (
	"net/http"

	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/internal/usecases/syncing"
)

// ListCustomers retorna a coleção de clientes do store, com os indicadores de
// carregamento e erro
func ListCustomers(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, sess.Store().Customers().Get())
	}
}

func GetCustomer(sessions *session.Manager, service *syncing.CustomerService) http.HandlerFunc {
	return getEntity[domain.Customer](sessions, service)
}

func CreateCustomer(sessions *session.Manager, service *syncing.CustomerService) http.HandlerFunc {
	return addEntity[domain.CustomerInput](sessions, service, decodeJSON[domain.CustomerInput], "Cliente adicionado com sucesso!")
}

func UpdateCustomer(sessions *session.Manager, service *syncing.CustomerService) http.HandlerFunc {
	return updateEntity[domain.CustomerPatch](sessions, service, decodeJSON[domain.CustomerPatch], "Cliente atualizado com sucesso!")
}
