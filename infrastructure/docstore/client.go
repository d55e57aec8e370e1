// Package docstore define o contrato com o banco de documentos remoto:
// consultas pontuais, feed de mudanças por coleção e escritas com timestamp
// atribuído pelo servidor.
package docstore

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound         = errors.New("documento não encontrado")
	ErrPermissionDenied = errors.New("permissão negada")
	ErrIteratorStopped  = errors.New("iterador encerrado")
	ErrInvalidPath      = errors.New("caminho de documento inválido")
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Query struct {
	Collection string
	OrderBy    string
	Direction  Direction
}

type Document struct {
	ID     string
	Path   string
	Fields map[string]any
}

// Ref aponta para outro documento. É a representação neutra de referência
// entre backends.
type Ref struct {
	Path string
}

// ID é o último segmento do caminho
func (r Ref) ID() string {
	_, id := splitLast(r.Path)
	return id
}

type serverTimestamp struct{}

// ServerTimestamp é substituído pelo relógio do backend no momento da escrita
var ServerTimestamp = serverTimestamp{}

func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// SnapshotIterator entrega a coleção completa a cada mudança. O primeiro Next
// retorna o estado atual; os seguintes bloqueiam até a próxima mudança.
// Depois de Stop, Next retorna ErrIteratorStopped.
type SnapshotIterator interface {
	Next() ([]Document, error)
	Stop()
}

//go:generate mockgen -source=client.go -destination=mocks/client.go -package=mocks
type Client interface {
	Get(ctx context.Context, docPath string) (Document, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	Snapshots(ctx context.Context, q Query) SnapshotIterator
	Add(ctx context.Context, collectionPath string, fields map[string]any) (string, error)
	Set(ctx context.Context, docPath string, fields map[string]any, merge bool) error
	Update(ctx context.Context, docPath string, fields map[string]any) error
	Delete(ctx context.Context, docPath string) error
	Close() error
}
