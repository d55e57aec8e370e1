// Package migration cria o schema usado pelo backend Postgres: a tabela de
// documentos com o gatilho de notificação e a tabela de usuários locais.
package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/infrastructure/database/postgres"
	pgdocstore "github.com/vfg2006/sales-manager-api/infrastructure/docstore/postgres"
)

// Statements são idempotentes e executados em ordem numa única transação
var Statements = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	path        TEXT PRIMARY KEY,
	collection  TEXT NOT NULL,
	id          TEXT NOT NULL,
	fields      JSONB NOT NULL DEFAULT '{}'::jsonb,
	create_time TIMESTAMPTZ NOT NULL,
	update_time TIMESTAMPTZ NOT NULL
)`, pgdocstore.DocumentsTable),

	fmt.Sprintf(`CREATE INDEX IF NOT EXISTS documents_collection_idx ON %s (collection, create_time, id)`, pgdocstore.DocumentsTable),

	fmt.Sprintf(`CREATE OR REPLACE FUNCTION notify_document_change() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'DELETE' THEN
		PERFORM pg_notify('%[1]s', OLD.collection);
		RETURN OLD;
	END IF;
	PERFORM pg_notify('%[1]s', NEW.collection);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`, pgdocstore.ChangesChannel),

	fmt.Sprintf(`DROP TRIGGER IF EXISTS documents_notify ON %s`, pgdocstore.DocumentsTable),

	fmt.Sprintf(`CREATE TRIGGER documents_notify
	AFTER INSERT OR UPDATE OR DELETE ON %s
	FOR EACH ROW EXECUTE FUNCTION notify_document_change()`, pgdocstore.DocumentsTable),

	`CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

func Apply(ctx context.Context, conn postgres.Conn) error {
	logrus.Info("Aplicando migrações do banco de dados...")

	err := conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "erro na migração %d", i+1)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.Infof("%d migrações aplicadas", len(Statements))
	return nil
}
