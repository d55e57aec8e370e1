// Package postgres implementa o banco de documentos sobre uma tabela jsonb,
// com o feed de mudanças entregue por LISTEN/NOTIFY.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/pkg/utils"
)

const (
	DocumentsTable = "documents"

	// ChangesChannel recebe o caminho da coleção alterada
	ChangesChannel = "docstore_changes"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Store struct {
	conn *postgres.Connection
}

func New(conn *postgres.Connection) *Store {
	return &Store{conn: conn}
}

func (s *Store) Get(ctx context.Context, docPath string) (docstore.Document, error) {
	query, args, err := psql.
		Select("id", "path", "fields").
		From(DocumentsTable).
		Where(squirrel.Eq{"path": docPath}).
		ToSql()
	if err != nil {
		return docstore.Document{}, err
	}

	doc, err := scanDocument(s.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, errors.Wrap(docstore.ErrNotFound, docPath)
	}
	return doc, err
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	query, args, err := psql.
		Select("id", "path", "fields").
		From(DocumentsTable).
		Where(squirrel.Eq{"collection": q.Collection}).
		OrderBy("create_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao consultar coleção %s", q.Collection)
	}
	defer rows.Close()

	docs := make([]docstore.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	docstore.SortDocuments(docs, q)
	return docs, nil
}

func (s *Store) Snapshots(ctx context.Context, q docstore.Query) docstore.SnapshotIterator {
	return newIterator(ctx, s, q)
}

func (s *Store) Add(ctx context.Context, collectionPath string, fields map[string]any) (string, error) {
	id, err := utils.GenerateDocumentID()
	if err != nil {
		return "", errors.Wrap(err, "erro ao gerar ID do documento")
	}

	path := collectionPath + "/" + id
	err = s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		now, err := serverNow(ctx, tx)
		if err != nil {
			return err
		}

		data, err := encodeFields(resolveTimestamps(fields, now))
		if err != nil {
			return err
		}

		query, args, err := psql.
			Insert(DocumentsTable).
			Columns("path", "collection", "id", "fields", "create_time", "update_time").
			Values(path, collectionPath, id, data, now, now).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return "", errors.Wrapf(err, "erro ao inserir documento em %s", collectionPath)
	}

	return id, nil
}

func (s *Store) Set(ctx context.Context, docPath string, fields map[string]any, merge bool) error {
	collection, id := docstore.ParentCollection(docPath)

	return s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		now, err := serverNow(ctx, tx)
		if err != nil {
			return err
		}

		resolved := resolveTimestamps(fields, now)
		if merge {
			current, err := lockFields(ctx, tx, docPath)
			if err != nil && !errors.Is(err, docstore.ErrNotFound) {
				return err
			}
			for k, v := range resolved {
				current[k] = v
			}
			resolved = current
		}

		data, err := encodeFields(resolved)
		if err != nil {
			return err
		}

		query, args, err := psql.
			Insert(DocumentsTable).
			Columns("path", "collection", "id", "fields", "create_time", "update_time").
			Values(docPath, collection, id, data, now, now).
			Suffix("ON CONFLICT (path) DO UPDATE SET fields = EXCLUDED.fields, update_time = EXCLUDED.update_time").
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *Store) Update(ctx context.Context, docPath string, fields map[string]any) error {
	return s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		current, err := lockFields(ctx, tx, docPath)
		if err != nil {
			return err
		}

		now, err := serverNow(ctx, tx)
		if err != nil {
			return err
		}

		for k, v := range resolveTimestamps(fields, now) {
			current[k] = v
		}

		data, err := encodeFields(current)
		if err != nil {
			return err
		}

		query, args, err := psql.
			Update(DocumentsTable).
			Set("fields", data).
			Set("update_time", now).
			Where(squirrel.Eq{"path": docPath}).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *Store) Delete(ctx context.Context, docPath string) error {
	query, args, err := psql.
		Delete(DocumentsTable).
		Where(squirrel.Eq{"path": docPath}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "erro ao remover documento %s", docPath)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrap(docstore.ErrNotFound, docPath)
	}

	return nil
}

// Close não fecha a conexão compartilhada; ela pertence a quem a criou
func (s *Store) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (docstore.Document, error) {
	var (
		doc  docstore.Document
		data []byte
	)

	if err := row.Scan(&doc.ID, &doc.Path, &data); err != nil {
		return docstore.Document{}, err
	}

	fields, err := decodeFields(data)
	if err != nil {
		logrus.WithError(err).WithField("path", doc.Path).Warn("Documento com campos ilegíveis")
		fields = make(map[string]any)
	}
	doc.Fields = fields

	return doc, nil
}

func lockFields(ctx context.Context, tx *sql.Tx, docPath string) (map[string]any, error) {
	query, args, err := psql.
		Select("fields").
		From(DocumentsTable).
		Where(squirrel.Eq{"path": docPath}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = tx.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return make(map[string]any), errors.Wrap(docstore.ErrNotFound, docPath)
	}
	if err != nil {
		return nil, err
	}

	return decodeFields(data)
}

func serverNow(ctx context.Context, tx *sql.Tx) (time.Time, error) {
	var now time.Time
	if err := tx.QueryRowContext(ctx, "SELECT clock_timestamp()").Scan(&now); err != nil {
		return time.Time{}, errors.Wrap(err, "erro ao obter relógio do servidor")
	}
	return now.UTC().Truncate(time.Microsecond), nil
}
