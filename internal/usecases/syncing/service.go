// Package syncing mantém as coleções de clientes, companhias aéreas e vendas
// de cada dono sincronizadas com o banco de documentos: assinaturas ao feed
// de mudanças e escritas com timestamp do servidor.
package syncing

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

// Entity descreve uma coleção sincronizada
type Entity[T any] struct {
	Collection string
	Label      string
	OrderBy    string
	Direction  docstore.Direction
	ToDomain   func(docstore.Document) T
}

type Service[T any] struct {
	client docstore.Client
	entity Entity[T]

	mu     sync.Mutex
	active map[string]*Subscription[T]
}

func NewService[T any](client docstore.Client, entity Entity[T]) *Service[T] {
	return &Service[T]{
		client: client,
		entity: entity,
		active: make(map[string]*Subscription[T]),
	}
}

func (s *Service[T]) Label() string {
	return s.entity.Label
}

func (s *Service[T]) logger(ctx context.Context, ownerID string) log.Logger {
	return log.L.WithContext(ctx).WithFields(log.Fields{
		"owner_id": ownerID,
		"entity":   s.entity.Collection,
	})
}

func (s *Service[T]) collectionPath(ownerID, op string) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", authenticationRequired(s.entity.Label, op)
	}

	path, err := docstore.CollectionPath(domain.OwnersCollection, ownerID, s.entity.Collection)
	if err != nil {
		return "", classify(s.entity.Label, op, err)
	}
	return path, nil
}

func (s *Service[T]) documentPath(ownerID, id, op string) (string, error) {
	collection, err := s.collectionPath(ownerID, op)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return "", newError(KindNotFound, s.entity.Label, op, errors.Errorf("id %q", id))
	}
	return collection + "/" + id, nil
}

func (s *Service[T]) query(collection string) docstore.Query {
	return docstore.Query{
		Collection: collection,
		OrderBy:    s.entity.OrderBy,
		Direction:  s.entity.Direction,
	}
}

func (s *Service[T]) toDomain(docs []docstore.Document) []T {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		items = append(items, s.entity.ToDomain(doc))
	}
	return items
}

// List faz uma leitura pontual da coleção completa
func (s *Service[T]) List(ctx context.Context, ownerID string) ([]T, error) {
	collection, err := s.collectionPath(ownerID, opList)
	if err != nil {
		return nil, err
	}

	docs, err := s.client.Query(ctx, s.query(collection))
	if err != nil {
		s.logger(ctx, ownerID).WithError(err).Error("Erro ao listar coleção")
		return nil, classify(s.entity.Label, opList, err)
	}

	return s.toDomain(docs), nil
}

func (s *Service[T]) Get(ctx context.Context, ownerID, id string) (T, error) {
	var zero T

	path, err := s.documentPath(ownerID, id, opGet)
	if err != nil {
		return zero, err
	}

	doc, err := s.client.Get(ctx, path)
	if err != nil {
		return zero, classify(s.entity.Label, opGet, err)
	}

	return s.entity.ToDomain(doc), nil
}

// Exists informa se o documento existe para o dono
func (s *Service[T]) Exists(ctx context.Context, ownerID, id string) (bool, error) {
	_, err := s.Get(ctx, ownerID, id)
	if err == nil {
		return true, nil
	}
	if KindOf(err) == KindNotFound {
		return false, nil
	}
	return false, err
}

func (s *Service[T]) add(ctx context.Context, ownerID string, fields map[string]any) (string, error) {
	collection, err := s.collectionPath(ownerID, opAdd)
	if err != nil {
		return "", err
	}

	id, err := s.client.Add(ctx, collection, fields)
	if err != nil {
		s.logger(ctx, ownerID).WithError(err).Error("Erro ao adicionar documento")
		return "", classify(s.entity.Label, opAdd, err)
	}

	s.logger(ctx, ownerID).Infof("Documento %s adicionado", id)
	return id, nil
}

func (s *Service[T]) update(ctx context.Context, ownerID, id string, fields map[string]any) error {
	path, err := s.documentPath(ownerID, id, opUpdate)
	if err != nil {
		return err
	}

	if err := s.client.Update(ctx, path, fields); err != nil {
		s.logger(ctx, ownerID).WithError(err).Errorf("Erro ao atualizar documento %s", id)
		return classify(s.entity.Label, opUpdate, err)
	}

	s.logger(ctx, ownerID).Infof("Documento %s atualizado", id)
	return nil
}

func (s *Service[T]) remove(ctx context.Context, ownerID, id string) error {
	path, err := s.documentPath(ownerID, id, opDelete)
	if err != nil {
		return err
	}

	if err := s.client.Delete(ctx, path); err != nil {
		s.logger(ctx, ownerID).WithError(err).Errorf("Erro ao remover documento %s", id)
		return classify(s.entity.Label, opDelete, err)
	}

	s.logger(ctx, ownerID).Infof("Documento %s removido", id)
	return nil
}

// Watch abre um Stream de snapshots da coleção do dono
func (s *Service[T]) Watch(ctx context.Context, ownerID string) (*Stream[T], error) {
	collection, err := s.collectionPath(ownerID, opSubscribe)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Stream[T]{
		iter:     s.client.Snapshots(ctx, s.query(collection)),
		toDomain: s.entity.ToDomain,
		entity:   s.entity.Label,
		cancel:   cancel,
	}, nil
}

// Subscribe registra um listener para o dono. Uma assinatura anterior do
// mesmo dono é encerrada antes da nova começar a entregar snapshots.
func (s *Service[T]) Subscribe(ownerID string, onData func([]T), onError func(error)) (*Subscription[T], error) {
	stream, err := s.Watch(context.Background(), ownerID)
	if err != nil {
		return nil, err
	}

	sub := newSubscription(ownerID, s.entity.Label, stream, onData, onError, s.release)

	s.mu.Lock()
	previous := s.active[ownerID]
	s.active[ownerID] = sub
	s.mu.Unlock()

	if previous != nil {
		s.logger(context.Background(), ownerID).Debug("Encerrando assinatura anterior do dono")
		previous.Unsubscribe()
	}

	sub.start()
	return sub, nil
}

// Unsubscribe encerra a assinatura ativa do dono, se houver, e espera o
// callback em andamento terminar
func (s *Service[T]) Unsubscribe(ownerID string) {
	s.mu.Lock()
	sub := s.active[ownerID]
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// State retorna subscribed quando há listener ativo para o dono
func (s *Service[T]) State(ownerID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[ownerID]; ok {
		return StateSubscribed
	}
	return StateIdle
}

func (s *Service[T]) release(sub *Subscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[sub.ownerID] == sub {
		delete(s.active, sub.ownerID)
	}
}
