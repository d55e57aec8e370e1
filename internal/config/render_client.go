package config

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

type SecretStorage interface {
	ListSecrets(ctx context.Context, serviceID string) (map[string]string, error)
}

type secretFile struct {
	SecretFile struct {
		Content string `json:"content"`
		Name    string `json:"name"`
	} `json:"secretFile"`
	Cursor string `json:"cursor"`
}

type RenderClient struct {
	client *resty.Client
}

func NewRenderClient(cfg Render) *RenderClient {
	return &RenderClient{
		client: resty.New().
			SetBaseURL(cfg.APIURL).
			SetAuthToken(cfg.APIKey).
			SetHeader("Accept", "application/json"),
	}
}

// ListSecrets retorna o conteúdo dos secret files do serviço indexado pelo nome
func (c *RenderClient) ListSecrets(ctx context.Context, serviceID string) (map[string]string, error) {
	var response []secretFile

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("serviceID", serviceID).
		SetQueryParam("limit", "100").
		SetResult(&response).
		Get("/services/{serviceID}/secret-files")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("config: error list secrets: %s", resp.String())
	}

	secretsMap := make(map[string]string, len(response))
	for _, sf := range response {
		secretsMap[sf.SecretFile.Name] = sf.SecretFile.Content
	}

	return secretsMap, nil
}
