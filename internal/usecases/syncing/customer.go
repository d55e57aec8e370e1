package syncing

import (
	"context"
	"strings"

	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/mapper"
)

const CustomerLabel = "cliente"

type CustomerService struct {
	*Service[domain.Customer]
	mapper *mapper.Mapper
}

func NewCustomerService(client docstore.Client, m *mapper.Mapper) *CustomerService {
	return &CustomerService{
		Service: NewService(client, Entity[domain.Customer]{
			Collection: domain.CustomersCollection,
			Label:      CustomerLabel,
			ToDomain:   m.CustomerFromDocument,
		}),
		mapper: m,
	}
}

// Add grava o cliente com createdAt do servidor e retorna o ID gerado. O
// registro chega ao estado pela assinatura, não por este retorno.
func (s *CustomerService) Add(ctx context.Context, ownerID string, in domain.CustomerInput) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", authenticationRequired(CustomerLabel, opAdd)
	}
	if err := in.Validate(); err != nil {
		return "", validationFailed(CustomerLabel, opAdd, err)
	}

	return s.add(ctx, ownerID, s.mapper.CustomerFields(in))
}

// Update grava apenas os campos informados. O CPF não pode ser alterado.
func (s *CustomerService) Update(ctx context.Context, ownerID, id string, patch domain.CustomerPatch) error {
	if strings.TrimSpace(ownerID) == "" {
		return authenticationRequired(CustomerLabel, opUpdate)
	}
	if err := patch.Validate(); err != nil {
		return validationFailed(CustomerLabel, opUpdate, err)
	}

	return s.update(ctx, ownerID, id, s.mapper.CustomerPatchFields(patch))
}
