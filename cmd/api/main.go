package main

import (
	"context"
	"os"
	"path"
	"runtime"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	fsdocstore "github.com/vfg2006/sales-manager-api/infrastructure/docstore/firestore"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore/memory"
	pgdocstore "github.com/vfg2006/sales-manager-api/infrastructure/docstore/postgres"
	"github.com/vfg2006/sales-manager-api/infrastructure/migration"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/api"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/mapper"
	"github.com/vfg2006/sales-manager-api/internal/scheduler"
	"github.com/vfg2006/sales-manager-api/internal/store"
	"github.com/vfg2006/sales-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/sales-manager-api/pkg/log"
	"google.golang.org/api/option"
)

func main() {
	chdir()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Configure(cfg.App.LogLevel)
	log.L.WithField("level", cfg.App.LogLevel).Info("Nível de log configurado")

	flush, err := log.EnableSentry(cfg.Sentry.DSN, cfg.App.Env)
	if err != nil {
		logrus.WithError(err).Warn("Sentry desativado")
		flush = func() {}
	}
	defer flush()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pgConn *postgres.Connection
	if cfg.Docstore.Driver == config.DocstorePostgres || cfg.Auth.Provider == config.AuthProviderLocal {
		pgConn = pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		if cfg.Database.AutoMigrate {
			if err := migration.Apply(ctx, pgConn); err != nil {
				logrus.WithError(err).Fatal("Erro ao aplicar migrações")
			}
		}
	}

	var app *firebase.App
	if cfg.Docstore.Driver == config.DocstoreFirestore || cfg.Auth.Provider == config.AuthProviderFirebase {
		app = firebaseApp(ctx, cfg.Firebase)
	}

	docs := newDocstore(ctx, cfg, pgConn, app)
	defer func() {
		if err := docs.Close(); err != nil {
			logrus.WithError(err).Error("Erro ao fechar o docstore")
		}
	}()

	m := mapper.New(mapper.WithReferenceMode(mapper.ReferenceMode(cfg.Docstore.ReferenceMode)))

	customers := syncing.NewCustomerService(docs, m)
	airlines := syncing.NewAirlineService(docs, m)
	sales := syncing.NewSaleService(docs, m, customers, airlines)
	owners := syncing.NewOwnerService(docs)

	var authenticator authenticating.Authenticator
	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		authClient, err := app.Auth(ctx)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao criar cliente do Firebase Auth")
		}
		authenticator = authenticating.NewFirebaseService(cfg.Firebase, authClient, owners)
	default:
		authenticator = authenticating.NewService(repository.NewUserRepository(pgConn), owners, cfg.Auth)
	}

	sessions := session.NewManager(
		session.Services{Customers: customers, Airlines: airlines, Sales: sales},
		session.WithStoreOptions(store.WithAutoHide(cfg.Notification.AutoHide)),
	)
	defer sessions.Close()

	stopIdentity := authenticator.OnIdentityChange(sessions.HandleIdentityEvent)
	defer stopIdentity()

	janitor := scheduler.NewSessionJanitor(sessions, cfg.Session)
	if err := janitor.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar a limpeza de sessões ociosas")
	} else {
		logrus.Info("Limpeza de sessões ociosas iniciada com sucesso")
	}

	server, err := api.New(cfg, api.Services{
		Authenticator: authenticator,
		Sessions:      sessions,
		Customers:     customers,
		Airlines:      airlines,
		Sales:         sales,
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// chdir garante que o .env seja lido a partir do diretório do binário
func chdir() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

func firebaseApp(ctx context.Context, cfg config.Firebase) *firebase.App {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar o Firebase")
	}
	return app
}

// newDocstore escolhe o backend de documentos configurado
func newDocstore(ctx context.Context, cfg *config.Config, conn *postgres.Connection, app *firebase.App) docstore.Client {
	switch cfg.Docstore.Driver {
	case config.DocstorePostgres:
		logrus.Info("Docstore: PostgreSQL")
		return pgdocstore.New(conn)
	case config.DocstoreFirestore:
		docs, err := fsdocstore.New(ctx, app)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao conectar ao Firestore")
		}
		logrus.Info("Docstore: Firestore")
		return docs
	default:
		logrus.Warn("Docstore em memória: os dados se perdem ao reiniciar")
		return memory.New()
	}
}
