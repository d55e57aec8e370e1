package syncing

import (
	"context"
	"strings"

	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

const OwnerLabel = "dono"

type OwnerService struct {
	client docstore.Client
}

func NewOwnerService(client docstore.Client) *OwnerService {
	return &OwnerService{client: client}
}

// InitializeOwner cria ou atualiza o documento owners/{ownerId} após o
// cadastro ou login. createdAt só é gravado na primeira vez.
func (s *OwnerService) InitializeOwner(ctx context.Context, identity domain.Identity) error {
	if strings.TrimSpace(identity.OwnerID) == "" {
		return authenticationRequired(OwnerLabel, opInitialize)
	}

	path, err := docstore.DocumentPath(domain.OwnersCollection, identity.OwnerID)
	if err != nil {
		return classify(OwnerLabel, opInitialize, err)
	}

	fields := map[string]any{
		"email":       identity.Email,
		"lastLoginAt": docstore.ServerTimestamp,
	}

	_, err = s.client.Get(ctx, path)
	switch {
	case err == nil:
	case KindOf(classify(OwnerLabel, opInitialize, err)) == KindNotFound:
		fields["createdAt"] = docstore.ServerTimestamp
	default:
		return classify(OwnerLabel, opInitialize, err)
	}

	if err := s.client.Set(ctx, path, fields, true); err != nil {
		return classify(OwnerLabel, opInitialize, err)
	}

	log.L.WithContext(ctx).WithField("owner_id", identity.OwnerID).Info("Dono inicializado")
	return nil
}
