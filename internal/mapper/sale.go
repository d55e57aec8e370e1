package mapper

import (
	"time"

	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/utils"
)

type saleDocument struct {
	Date       *time.Time `mapstructure:"date"`
	CustomerID any        `mapstructure:"customerId"`
	AirlineID  any        `mapstructure:"airlineId"`
	Value      float64    `mapstructure:"value"`
	Cost       float64    `mapstructure:"cost"`
	CreatedAt  *time.Time `mapstructure:"createdAt"`
	UpdatedAt  *time.Time `mapstructure:"updatedAt"`
}

func (m *Mapper) SaleFromDocument(doc docstore.Document) domain.Sale {
	var raw saleDocument
	decode(doc, &raw)

	return domain.Sale{
		ID:         doc.ID,
		Date:       m.orNow(raw.Date),
		CustomerID: resolveID(raw.CustomerID),
		AirlineID:  resolveID(raw.AirlineID),
		Value:      raw.Value,
		Cost:       raw.Cost,
		CreatedAt:  m.orNow(raw.CreatedAt),
		UpdatedAt:  nonZero(raw.UpdatedAt),
	}
}

// SaleToFields gera o documento completo da venda. As referências seguem o
// modo configurado no Mapper.
func (m *Mapper) SaleToFields(ownerID string, s domain.Sale) (map[string]any, error) {
	customerRef, err := m.reference(ownerID, domain.CustomersCollection, s.CustomerID)
	if err != nil {
		return nil, err
	}

	airlineRef, err := m.reference(ownerID, domain.AirlinesCollection, s.AirlineID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"date":       utils.TruncateToMicros(s.Date.UTC()),
		"customerId": customerRef,
		"airlineId":  airlineRef,
		"value":      s.Value,
		"cost":       s.Cost,
		"createdAt":  timestamp(s.CreatedAt),
	}
	if s.UpdatedAt != nil {
		fields["updatedAt"] = timestamp(*s.UpdatedAt)
	}
	return fields, nil
}

func (m *Mapper) SaleFields(ownerID string, in domain.SaleInput) (map[string]any, error) {
	return m.SaleToFields(ownerID, domain.Sale{
		Date:       in.Date,
		CustomerID: in.CustomerID,
		AirlineID:  in.AirlineID,
		Value:      in.Value,
		Cost:       in.Cost,
	})
}

func (m *Mapper) SalePatchFields(ownerID string, p domain.SalePatch) (map[string]any, error) {
	fields := map[string]any{"updatedAt": docstore.ServerTimestamp}

	if p.Date != nil {
		fields["date"] = utils.TruncateToMicros(p.Date.UTC())
	}
	if p.CustomerID != nil {
		ref, err := m.reference(ownerID, domain.CustomersCollection, *p.CustomerID)
		if err != nil {
			return nil, err
		}
		fields["customerId"] = ref
	}
	if p.AirlineID != nil {
		ref, err := m.reference(ownerID, domain.AirlinesCollection, *p.AirlineID)
		if err != nil {
			return nil, err
		}
		fields["airlineId"] = ref
	}
	if p.Value != nil {
		fields["value"] = *p.Value
	}
	if p.Cost != nil {
		fields["cost"] = *p.Cost
	}

	return fields, nil
}
