package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DocstoreMemory    = "memory"
	DocstorePostgres  = "postgres"
	DocstoreFirestore = "firestore"

	ReferenceModeRef = "ref"
	ReferenceModeID  = "id"

	AuthProviderLocal    = "local"
	AuthProviderFirebase = "firebase"
)

const DefaultTokenTTL = 24 * time.Hour

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Docstore     Docstore     `mapstructure:",squash"`
	Firebase     Firebase     `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	Session      Session      `mapstructure:",squash"`
	Notification Notification `mapstructure:",squash"`
	Sentry       Sentry       `mapstructure:",squash"`
	Render       Render       `mapstructure:",squash"`
}

type App struct {
	LogLevel     string `mapstructure:"log_level"`
	Env          string `mapstructure:"app_env"`
	UnknownLabel string `mapstructure:"unknown_reference_label"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN         string `mapstructure:"-"`
	Driver      string `mapstructure:"database_driver"`
	Password    string `mapstructure:"database_password"`
	URL         string `mapstructure:"database_url"`
	User        string `mapstructure:"database_user"`
	SSLMode     string `mapstructure:"database_sslmode"`
	AutoMigrate bool   `mapstructure:"database_auto_migrate"`
}

// Docstore escolhe o backend de documentos e como as vendas gravam referências
type Docstore struct {
	Driver        string `mapstructure:"docstore_driver"`
	ReferenceMode string `mapstructure:"docstore_reference_mode"`
}

type Firebase struct {
	ProjectID          string `mapstructure:"firebase_project_id"`
	CredentialsFile    string `mapstructure:"firebase_credentials_file"`
	WebAPIKey          string `mapstructure:"firebase_web_api_key"`
	IdentityToolkitURL string `mapstructure:"firebase_identity_toolkit_url"`
}

type Auth struct {
	Provider string        `mapstructure:"auth_provider"`
	Secret   string        `mapstructure:"auth_secret"`
	TokenTTL time.Duration `mapstructure:"auth_token_ttl"`
}

type Session struct {
	JanitorEnabled  bool          `mapstructure:"session_janitor_enabled"`
	JanitorInterval time.Duration `mapstructure:"session_janitor_interval"`
	IdleTimeout     time.Duration `mapstructure:"session_idle_timeout"`
}

type Notification struct {
	AutoHide time.Duration `mapstructure:"notification_auto_hide"`
}

type Sentry struct {
	DSN string `mapstructure:"sentry_dsn"`
}

type Render struct {
	APIURL    string `mapstructure:"render_api_url"`
	APIKey    string `mapstructure:"render_api_key"`
	ServiceID string `mapstructure:"render_service_id"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("APP_ENV", "dev")
	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("UNKNOWN_REFERENCE_LABEL", "Desconhecido")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/sales")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_AUTO_MIGRATE", false)

	viper.SetDefault("DOCSTORE_DRIVER", DocstoreMemory)
	viper.SetDefault("DOCSTORE_REFERENCE_MODE", ReferenceModeRef)

	viper.SetDefault("FIREBASE_PROJECT_ID", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("FIREBASE_WEB_API_KEY", "")
	viper.SetDefault("FIREBASE_IDENTITY_TOOLKIT_URL", "https://identitytoolkit.googleapis.com/v1")

	viper.SetDefault("AUTH_PROVIDER", AuthProviderLocal)
	viper.SetDefault("AUTH_SECRET", "")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")

	viper.SetDefault("SESSION_JANITOR_ENABLED", true)
	viper.SetDefault("SESSION_JANITOR_INTERVAL", "1m") // Varredura de sessões a cada minuto
	viper.SetDefault("SESSION_IDLE_TIMEOUT", "30m")    // Sessão sem acesso por 30 minutos é encerrada
	viper.SetDefault("NOTIFICATION_AUTO_HIDE", "6s")   // Tempo padrão de exibição das notificações

	viper.SetDefault("SENTRY_DSN", "")

	viper.SetDefault("RENDER_API_URL", "https://api.render.com/v1")
	viper.SetDefault("RENDER_API_KEY", "")
	viper.SetDefault("RENDER_SERVICE_ID", "")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	// Secrets do Render completam o que não veio do ambiente
	if config.Render.ServiceID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		secrets, err := NewRenderClient(config.Render).ListSecrets(ctx, config.Render.ServiceID)
		if err != nil {
			logrus.Error("Erro ao obter secrets do Render:", err)
			return nil, err
		}
		applySecrets(config, secrets)
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s?sslmode=%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
		config.Database.SSLMode,
	)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate recusa combinações que só falhariam em tempo de execução
func (c *Config) Validate() error {
	switch c.Docstore.Driver {
	case DocstoreMemory, DocstorePostgres, DocstoreFirestore:
	default:
		return fmt.Errorf("config: DOCSTORE_DRIVER inválido: %q", c.Docstore.Driver)
	}

	switch c.Docstore.ReferenceMode {
	case ReferenceModeRef, ReferenceModeID:
	default:
		return fmt.Errorf("config: DOCSTORE_REFERENCE_MODE inválido: %q", c.Docstore.ReferenceMode)
	}

	switch c.Auth.Provider {
	case AuthProviderLocal:
		if c.Auth.Secret == "" {
			return fmt.Errorf("config: AUTH_SECRET é obrigatório para o provedor local")
		}
		// Usuários locais sempre vivem no Postgres
		if c.Database.URL == "" {
			return fmt.Errorf("config: DATABASE_URL é obrigatório para o provedor local")
		}
	case AuthProviderFirebase:
		if c.Firebase.WebAPIKey == "" {
			return fmt.Errorf("config: FIREBASE_WEB_API_KEY é obrigatório para o provedor firebase")
		}
	default:
		return fmt.Errorf("config: AUTH_PROVIDER inválido: %q", c.Auth.Provider)
	}

	if c.Docstore.Driver == DocstoreFirestore && c.Firebase.ProjectID == "" {
		return fmt.Errorf("config: FIREBASE_PROJECT_ID é obrigatório para o Firestore")
	}

	return nil
}

func (c *Config) IsDev() bool {
	return c.App.Env == "" || c.App.Env == "dev"
}

func applySecrets(config *Config, secrets map[string]string) {
	fill := func(target *string, name string) {
		if value, ok := secrets[name]; ok && *target == "" {
			*target = value
		}
	}

	fill(&config.Auth.Secret, "auth_secret")
	fill(&config.Database.Password, "database_password")
	fill(&config.Firebase.WebAPIKey, "firebase_web_api_key")
	fill(&config.Firebase.CredentialsFile, "firebase_credentials_file")
	fill(&config.Sentry.DSN, "sentry_dsn")
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
