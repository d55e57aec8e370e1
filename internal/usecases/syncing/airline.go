package syncing

import (
	"context"
	"strings"

	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/mapper"
)

const AirlineLabel = "companhia aérea"

type AirlineService struct {
	*Service[domain.Airline]
	mapper *mapper.Mapper
}

func NewAirlineService(client docstore.Client, m *mapper.Mapper) *AirlineService {
	return &AirlineService{
		Service: NewService(client, Entity[domain.Airline]{
			Collection: domain.AirlinesCollection,
			Label:      AirlineLabel,
			ToDomain:   m.AirlineFromDocument,
		}),
		mapper: m,
	}
}

func (s *AirlineService) Add(ctx context.Context, ownerID string, in domain.AirlineInput) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", authenticationRequired(AirlineLabel, opAdd)
	}
	if err := in.Validate(); err != nil {
		return "", validationFailed(AirlineLabel, opAdd, err)
	}

	return s.add(ctx, ownerID, s.mapper.AirlineFields(in))
}

func (s *AirlineService) Update(ctx context.Context, ownerID, id string, patch domain.AirlinePatch) error {
	if strings.TrimSpace(ownerID) == "" {
		return authenticationRequired(AirlineLabel, opUpdate)
	}
	if err := patch.Validate(); err != nil {
		return validationFailed(AirlineLabel, opUpdate, err)
	}

	return s.update(ctx, ownerID, id, s.mapper.AirlinePatchFields(patch))
}
