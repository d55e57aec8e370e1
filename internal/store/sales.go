package store

import (
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/utils"
)

// SaleRows junta cada venda aos nomes de cliente e companhia. Referências
// ainda não carregadas, ou de registros removidos, exibem unknownLabel.
func (s *Store) SaleRows(unknownLabel string) []domain.SaleRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make(map[string]string, len(s.state.Customers.Items))
	for _, c := range s.state.Customers.Items {
		customers[c.ID] = c.Name
	}

	airlines := make(map[string]string, len(s.state.Airlines.Items))
	for _, a := range s.state.Airlines.Items {
		airlines[a.ID] = a.Name
	}

	rows := make([]domain.SaleRow, 0, len(s.state.Sales.Items))
	for _, sale := range s.state.Sales.Items {
		row := domain.SaleRow{
			Sale:         sale,
			CustomerName: unknownLabel,
			AirlineName:  unknownLabel,
			Profit:       utils.RoundCents(sale.Profit()),
		}
		if name, ok := customers[sale.CustomerID]; ok {
			row.CustomerName = name
		}
		if name, ok := airlines[sale.AirlineID]; ok {
			row.AirlineName = name
		}
		rows = append(rows, row)
	}

	return rows
}

func (s *Store) Summary() domain.SalesSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary domain.SalesSummary
	for _, sale := range s.state.Sales.Items {
		summary.Count++
		summary.TotalValue += sale.Value
		summary.TotalCost += sale.Cost
	}

	summary.TotalValue = utils.RoundCents(summary.TotalValue)
	summary.TotalCost = utils.RoundCents(summary.TotalCost)
	summary.Profit = utils.RoundCents(summary.TotalValue - summary.TotalCost)
	return summary
}
