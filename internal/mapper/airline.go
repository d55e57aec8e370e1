package mapper

import (
	"time"

	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

type airlineDocument struct {
	Name      string     `mapstructure:"name"`
	CreatedAt *time.Time `mapstructure:"createdAt"`
	UpdatedAt *time.Time `mapstructure:"updatedAt"`
}

func (m *Mapper) AirlineFromDocument(doc docstore.Document) domain.Airline {
	var raw airlineDocument
	decode(doc, &raw)

	return domain.Airline{
		ID:        doc.ID,
		Name:      orPlaceholder(raw.Name),
		CreatedAt: m.orNow(raw.CreatedAt),
		UpdatedAt: nonZero(raw.UpdatedAt),
	}
}

func (m *Mapper) AirlineToFields(a domain.Airline) map[string]any {
	fields := map[string]any{
		"name":      a.Name,
		"createdAt": timestamp(a.CreatedAt),
	}
	if a.UpdatedAt != nil {
		fields["updatedAt"] = timestamp(*a.UpdatedAt)
	}
	return fields
}

func (m *Mapper) AirlineFields(in domain.AirlineInput) map[string]any {
	return m.AirlineToFields(domain.Airline{Name: in.Name})
}

func (m *Mapper) AirlinePatchFields(p domain.AirlinePatch) map[string]any {
	fields := map[string]any{"updatedAt": docstore.ServerTimestamp}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	return fields
}
