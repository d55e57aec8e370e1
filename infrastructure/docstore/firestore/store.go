// Package firestore adapta o Cloud Firestore ao contrato do docstore.
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const documentsMarker = "/documents/"

type Store struct {
	client *firestore.Client
}

func New(ctx context.Context, app *firebase.App) (*Store, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar cliente do Firestore")
	}
	return NewWithClient(client), nil
}

func NewWithClient(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, docPath string) (docstore.Document, error) {
	snap, err := s.client.Doc(docPath).Get(ctx)
	if err != nil {
		return docstore.Document{}, translateError(err, docPath)
	}
	return toDocument(snap), nil
}

// Query lê a coleção inteira e ordena localmente: o Firestore omite
// documentos sem o campo de ordenação
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	snaps, err := s.client.Collection(q.Collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, translateError(err, q.Collection)
	}

	docs := make([]docstore.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(snap))
	}

	docstore.SortDocuments(docs, q)
	return docs, nil
}

func (s *Store) Snapshots(ctx context.Context, q docstore.Query) docstore.SnapshotIterator {
	return &snapshotIterator{
		query: q,
		iter:  s.client.Collection(q.Collection).Snapshots(ctx),
	}
}

func (s *Store) Add(ctx context.Context, collectionPath string, fields map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collectionPath).Add(ctx, s.toFirestore(fields))
	if err != nil {
		return "", translateError(err, collectionPath)
	}
	return ref.ID, nil
}

func (s *Store) Set(ctx context.Context, docPath string, fields map[string]any, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}

	_, err := s.client.Doc(docPath).Set(ctx, s.toFirestore(fields), opts...)
	return translateError(err, docPath)
}

func (s *Store) Update(ctx context.Context, docPath string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: s.toFirestoreValue(v)})
	}

	_, err := s.client.Doc(docPath).Update(ctx, updates)
	return translateError(err, docPath)
}

// Delete exige que o documento exista para que NotFound seja reportado
func (s *Store) Delete(ctx context.Context, docPath string) error {
	_, err := s.client.Doc(docPath).Delete(ctx, firestore.Exists)
	return translateError(err, docPath)
}

func (s *Store) Close() error {
	return s.client.Close()
}

type snapshotIterator struct {
	query docstore.Query
	iter  *firestore.QuerySnapshotIterator
}

func (it *snapshotIterator) Next() ([]docstore.Document, error) {
	snap, err := it.iter.Next()
	if err != nil {
		if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
			return nil, docstore.ErrIteratorStopped
		}
		return nil, translateError(err, it.query.Collection)
	}

	snaps, err := snap.Documents.GetAll()
	if err != nil {
		return nil, translateError(err, it.query.Collection)
	}

	docs := make([]docstore.Document, 0, len(snaps))
	for _, s := range snaps {
		docs = append(docs, toDocument(s))
	}

	docstore.SortDocuments(docs, it.query)
	return docs, nil
}

func (it *snapshotIterator) Stop() {
	it.iter.Stop()
}

func toDocument(snap *firestore.DocumentSnapshot) docstore.Document {
	fields := make(map[string]any)
	for k, v := range snap.Data() {
		fields[k] = fromFirestoreValue(v)
	}

	return docstore.Document{
		ID:     snap.Ref.ID,
		Path:   relativePath(snap.Ref.Path),
		Fields: fields,
	}
}

func fromFirestoreValue(v any) any {
	switch val := v.(type) {
	case *firestore.DocumentRef:
		if val == nil {
			return nil
		}
		return docstore.Ref{Path: relativePath(val.Path)}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromFirestoreValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromFirestoreValue(item)
		}
		return out
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}

func (s *Store) toFirestore(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = s.toFirestoreValue(v)
	}
	return out
}

func (s *Store) toFirestoreValue(v any) any {
	if docstore.IsServerTimestamp(v) {
		return firestore.ServerTimestamp
	}

	switch val := v.(type) {
	case docstore.Ref:
		return s.client.Doc(val.Path)
	case *docstore.Ref:
		if val == nil {
			return nil
		}
		return s.client.Doc(val.Path)
	case map[string]any:
		return s.toFirestore(val)
	default:
		return v
	}
}

// relativePath remove o prefixo projects/.../databases/.../documents/
func relativePath(full string) string {
	if i := strings.Index(full, documentsMarker); i >= 0 {
		return full[i+len(documentsMarker):]
	}
	return full
}

func translateError(err error, path string) error {
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.NotFound:
		return errors.Wrap(docstore.ErrNotFound, path)
	case codes.PermissionDenied, codes.Unauthenticated:
		return errors.Wrap(docstore.ErrPermissionDenied, path)
	default:
		return errors.Wrapf(err, "erro no Firestore em %s", path)
	}
}
