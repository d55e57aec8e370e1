package syncing

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/mapper"
)

const SaleLabel = "venda"

var (
	ErrUnknownCustomer = errors.New("cliente informado não existe")
	ErrUnknownAirline  = errors.New("companhia aérea informada não existe")
)

// referenceChecker confirma que um registro referenciado existe para o dono
type referenceChecker interface {
	Exists(ctx context.Context, ownerID, id string) (bool, error)
}

type SaleService struct {
	*Service[domain.Sale]
	mapper    *mapper.Mapper
	customers referenceChecker
	airlines  referenceChecker
}

func NewSaleService(client docstore.Client, m *mapper.Mapper, customers, airlines referenceChecker) *SaleService {
	return &SaleService{
		Service: NewService(client, Entity[domain.Sale]{
			Collection: domain.SalesCollection,
			Label:      SaleLabel,
			OrderBy:    "date",
			Direction:  docstore.Desc,
			ToDomain:   m.SaleFromDocument,
		}),
		mapper:    m,
		customers: customers,
		airlines:  airlines,
	}
}

// Add valida a venda e confere, sem transação, que cliente e companhia
// existem para o mesmo dono
func (s *SaleService) Add(ctx context.Context, ownerID string, in domain.SaleInput) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", authenticationRequired(SaleLabel, opAdd)
	}
	if err := in.Validate(); err != nil {
		return "", validationFailed(SaleLabel, opAdd, err)
	}

	if err := s.checkReferences(ctx, ownerID, opAdd, &in.CustomerID, &in.AirlineID); err != nil {
		return "", err
	}

	fields, err := s.mapper.SaleFields(ownerID, in)
	if err != nil {
		return "", classify(SaleLabel, opAdd, err)
	}

	return s.add(ctx, ownerID, fields)
}

func (s *SaleService) Update(ctx context.Context, ownerID, id string, patch domain.SalePatch) error {
	if strings.TrimSpace(ownerID) == "" {
		return authenticationRequired(SaleLabel, opUpdate)
	}
	if err := patch.Validate(); err != nil {
		return validationFailed(SaleLabel, opUpdate, err)
	}

	if err := s.checkReferences(ctx, ownerID, opUpdate, patch.CustomerID, patch.AirlineID); err != nil {
		return err
	}

	fields, err := s.mapper.SalePatchFields(ownerID, patch)
	if err != nil {
		return classify(SaleLabel, opUpdate, err)
	}

	return s.update(ctx, ownerID, id, fields)
}

// Delete remove a venda permanentemente
func (s *SaleService) Delete(ctx context.Context, ownerID, id string) error {
	if strings.TrimSpace(ownerID) == "" {
		return authenticationRequired(SaleLabel, opDelete)
	}

	return s.remove(ctx, ownerID, id)
}

func (s *SaleService) checkReferences(ctx context.Context, ownerID, op string, customerID, airlineID *string) error {
	if customerID != nil {
		if err := s.checkReference(ctx, s.customers, ownerID, op, *customerID, ErrUnknownCustomer); err != nil {
			return err
		}
	}
	if airlineID != nil {
		if err := s.checkReference(ctx, s.airlines, ownerID, op, *airlineID, ErrUnknownAirline); err != nil {
			return err
		}
	}
	return nil
}

func (s *SaleService) checkReference(ctx context.Context, checker referenceChecker, ownerID, op, id string, missing error) error {
	exists, err := checker.Exists(ctx, ownerID, id)
	if err != nil {
		return classify(SaleLabel, op, err)
	}
	if !exists {
		return newError(KindValidation, SaleLabel, op, missing)
	}
	return nil
}
