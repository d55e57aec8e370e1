package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "segredo")
	t.Setenv("DATABASE_PASSWORD", "pw")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, DocstoreMemory, cfg.Docstore.Driver)
	assert.Equal(t, ReferenceModeRef, cfg.Docstore.ReferenceMode)
	assert.Equal(t, AuthProviderLocal, cfg.Auth.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 6*time.Second, cfg.Notification.AutoHide)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/sales?sslmode=disable", cfg.Database.DSN)
	assert.True(t, cfg.IsDev())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: Database{URL: "localhost/sales"},
			Docstore: Docstore{Driver: DocstoreMemory, ReferenceMode: ReferenceModeRef},
			Auth:     Auth{Provider: AuthProviderLocal, Secret: "s"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "configuração válida", mutate: func(c *Config) {}},
		{name: "driver desconhecido", mutate: func(c *Config) { c.Docstore.Driver = "mongo" }, wantErr: "DOCSTORE_DRIVER"},
		{name: "modo de referência desconhecido", mutate: func(c *Config) { c.Docstore.ReferenceMode = "x" }, wantErr: "DOCSTORE_REFERENCE_MODE"},
		{name: "provedor local sem segredo", mutate: func(c *Config) { c.Auth.Secret = "" }, wantErr: "AUTH_SECRET"},
		{
			name: "firebase sem api key",
			mutate: func(c *Config) {
				c.Auth.Provider = AuthProviderFirebase
			},
			wantErr: "FIREBASE_WEB_API_KEY",
		},
		{
			name: "firestore sem projeto",
			mutate: func(c *Config) {
				c.Docstore.Driver = DocstoreFirestore
			},
			wantErr: "FIREBASE_PROJECT_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRenderClient_ListSecrets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/srv-1/secret-files", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"secretFile": {"name": "auth_secret", "content": "abc"}, "cursor": "1"},
			{"secretFile": {"name": "sentry_dsn", "content": "https://dsn"}, "cursor": "2"}
		]`))
	}))
	defer server.Close()

	client := NewRenderClient(Render{APIURL: server.URL, APIKey: "key"})
	secrets, err := client.ListSecrets(context.Background(), "srv-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"auth_secret": "abc", "sentry_dsn": "https://dsn"}, secrets)

	cfg := &Config{Sentry: Sentry{DSN: "definido"}}
	applySecrets(cfg, secrets)
	assert.Equal(t, "abc", cfg.Auth.Secret)
	assert.Equal(t, "definido", cfg.Sentry.DSN)
}

func TestRenderClient_ListSecretsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"unauthorized"}`))
	}))
	defer server.Close()

	_, err := NewRenderClient(Render{APIURL: server.URL}).ListSecrets(context.Background(), "srv-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}
