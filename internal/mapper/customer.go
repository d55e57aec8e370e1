package mapper

import (
	"time"

	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

type customerDocument struct {
	Name      string     `mapstructure:"name"`
	CPF       string     `mapstructure:"cpf"`
	Email     string     `mapstructure:"email"`
	Phone     string     `mapstructure:"phone"`
	CreatedAt *time.Time `mapstructure:"createdAt"`
	UpdatedAt *time.Time `mapstructure:"updatedAt"`
}

func (m *Mapper) CustomerFromDocument(doc docstore.Document) domain.Customer {
	var raw customerDocument
	decode(doc, &raw)

	return domain.Customer{
		ID:        doc.ID,
		Name:      orPlaceholder(raw.Name),
		CPF:       raw.CPF,
		Email:     raw.Email,
		Phone:     raw.Phone,
		CreatedAt: m.orNow(raw.CreatedAt),
		UpdatedAt: nonZero(raw.UpdatedAt),
	}
}

// CustomerToFields gera o documento completo do cliente. CreatedAt zero é
// preenchido pelo servidor.
func (m *Mapper) CustomerToFields(c domain.Customer) map[string]any {
	fields := map[string]any{
		"name":      c.Name,
		"cpf":       c.CPF,
		"email":     c.Email,
		"phone":     c.Phone,
		"createdAt": timestamp(c.CreatedAt),
	}
	if c.UpdatedAt != nil {
		fields["updatedAt"] = timestamp(*c.UpdatedAt)
	}
	return fields
}

func (m *Mapper) CustomerFields(in domain.CustomerInput) map[string]any {
	return m.CustomerToFields(domain.Customer{
		Name:  in.Name,
		CPF:   in.CPF,
		Email: in.Email,
		Phone: in.Phone,
	})
}

// CustomerPatchFields inclui apenas os campos informados e um novo updatedAt
func (m *Mapper) CustomerPatchFields(p domain.CustomerPatch) map[string]any {
	fields := map[string]any{"updatedAt": docstore.ServerTimestamp}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	return fields
}
