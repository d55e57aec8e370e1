package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/sales-manager-api/pkg/utils"
)

// SaleRequest aceita a data como 2006-01-02 ou RFC3339
type SaleRequest struct {
	Date       string  `json:"date"`
	CustomerID string  `json:"customerId"`
	AirlineID  string  `json:"airlineId"`
	Value      float64 `json:"value"`
	Cost       float64 `json:"cost"`
}

type SalePatchRequest struct {
	Date       *string  `json:"date"`
	CustomerID *string  `json:"customerId"`
	AirlineID  *string  `json:"airlineId"`
	Value      *float64 `json:"value"`
	Cost       *float64 `json:"cost"`
}

type SalesResponse struct {
	Items   []domain.SaleRow `json:"items"`
	Loading bool             `json:"loading"`
	Error   *string          `json:"error"`
}

func decodeSale(r *http.Request) (domain.SaleInput, error) {
	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.SaleInput{}, err
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return domain.SaleInput{}, errors.Wrap(err, "data inválida")
	}

	in := domain.SaleInput{
		CustomerID: req.CustomerID,
		AirlineID:  req.AirlineID,
		Value:      req.Value,
		Cost:       req.Cost,
	}
	if date != nil {
		in.Date = *date
	}
	return in, nil
}

func decodeSalePatch(r *http.Request) (domain.SalePatch, error) {
	var req SalePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.SalePatch{}, err
	}

	patch := domain.SalePatch{
		CustomerID: req.CustomerID,
		AirlineID:  req.AirlineID,
		Value:      req.Value,
		Cost:       req.Cost,
	}

	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			return domain.SalePatch{}, errors.Wrap(err, "data inválida")
		}
		if date == nil {
			date = &time.Time{}
		}
		patch.Date = date
	}
	return patch, nil
}

// ListSales retorna as vendas com nomes de cliente e companhia resolvidos
func ListSales(sessions *session.Manager, unknownLabel string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		st := sess.Store()
		slice := st.Sales().Get()
		writeJSON(w, http.StatusOK, SalesResponse{
			Items:   st.SaleRows(unknownLabel),
			Loading: slice.Loading,
			Error:   slice.Error,
		})
	}
}

func SalesSummary(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, sess.Store().Summary())
	}
}

func GetSale(sessions *session.Manager, service *syncing.SaleService) http.HandlerFunc {
	return getEntity[domain.Sale](sessions, service)
}

func CreateSale(sessions *session.Manager, service *syncing.SaleService) http.HandlerFunc {
	return addEntity[domain.SaleInput](sessions, service, decodeSale, "Venda adicionada com sucesso!")
}

func UpdateSale(sessions *session.Manager, service *syncing.SaleService) http.HandlerFunc {
	return updateEntity[domain.SalePatch](sessions, service, decodeSalePatch, "Venda atualizada com sucesso!")
}

func DeleteSale(sessions *session.Manager, service *syncing.SaleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ownerID, ok := ownerSession(w, r, sessions)
		if !ok {
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		err := service.Delete(r.Context(), ownerID, id)
		notifyResult(sess.Store(), err, "Venda removida com sucesso!")
		if err != nil {
			writeSyncError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
