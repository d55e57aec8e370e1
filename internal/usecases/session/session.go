// Package session liga as assinaturas de um dono ao seu store: cada snapshot
// recebido substitui a coleção correspondente e cada falha vira erro da
// coleção e notificação.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/store"
	"github.com/vfg2006/sales-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/sales-manager-api/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Collection é o que a sessão usa de um serviço de sincronização
type Collection[T any] interface {
	Label() string
	List(ctx context.Context, ownerID string) ([]T, error)
	Subscribe(ownerID string, onData func([]T), onError func(error)) (*syncing.Subscription[T], error)
}

type Services struct {
	Customers Collection[domain.Customer]
	Airlines  Collection[domain.Airline]
	Sales     Collection[domain.Sale]
}

type Session struct {
	services Services
	store    *store.Store

	mu       sync.Mutex
	identity *domain.Identity
	cancels  []func()
	lastSeen time.Time
}

func New(services Services, st *store.Store) *Session {
	return &Session{
		services: services,
		store:    st,
		lastSeen: time.Now(),
	}
}

func (s *Session) Store() *store.Store {
	return s.store
}

// OwnerID retorna o dono atual, vazio quando não há identidade
func (s *Session) OwnerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.OwnerID
}

// Running informa se há assinaturas ativas
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels) > 0
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// HandleIdentity reage a login e logout: identidade nula encerra tudo e limpa
// o store; outro dono reinicia as assinaturas.
func (s *Session) HandleIdentity(ctx context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if identity == nil {
		s.stopLocked()
		s.identity = nil
		s.store.Reset()
		return nil
	}

	copied := *identity
	sameOwner := s.identity != nil && s.identity.OwnerID == copied.OwnerID
	s.identity = &copied
	s.store.SetIdentity(&copied)

	if sameOwner && len(s.cancels) > 0 {
		return nil
	}

	s.stopLocked()
	return s.startLocked(ctx)
}

// Start marca as três coleções como carregando e assina os serviços em
// paralelo. Uma assinatura que não abre registra o erro na coleção e não
// impede as demais.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	return s.startLocked(ctx)
}

func (s *Session) startLocked(ctx context.Context) error {
	ownerID := ""
	if s.identity != nil {
		ownerID = s.identity.OwnerID
	}

	var (
		customers, airlines, sales func()
		g                          errgroup.Group
	)

	g.Go(func() (err error) {
		customers, err = subscribe(ctx, s.store, s.services.Customers, s.store.Customers(), ownerID)
		return err
	})
	g.Go(func() (err error) {
		airlines, err = subscribe(ctx, s.store, s.services.Airlines, s.store.Airlines(), ownerID)
		return err
	})
	g.Go(func() (err error) {
		sales, err = subscribe(ctx, s.store, s.services.Sales, s.store.Sales(), ownerID)
		return err
	})

	err := g.Wait()

	for _, cancel := range []func(){customers, airlines, sales} {
		if cancel != nil {
			s.cancels = append(s.cancels, cancel)
		}
	}

	if err != nil {
		log.L.WithContext(ctx).WithField("owner_id", ownerID).WithError(err).Error("Erro ao iniciar sessão")
		return err
	}

	log.L.WithContext(ctx).WithField("owner_id", ownerID).Info("Sessão iniciada")
	return nil
}

func subscribe[T any](ctx context.Context, st *store.Store, svc Collection[T], slice store.EntitySlice[T], ownerID string) (func(), error) {
	slice.SetLoading(true)

	sub, err := svc.Subscribe(ownerID, slice.SetItems, func(err error) {
		reportError(st, slice, err)
	})
	if err != nil {
		reportError(st, slice, err)
		return nil, err
	}

	log.L.WithContext(ctx).WithFields(log.Fields{"owner_id": ownerID, "entity": svc.Label()}).Debug("Assinatura aberta")
	return sub.Close, nil
}

func reportError[T any](st *store.Store, slice store.EntitySlice[T], err error) {
	slice.SetError(err.Error())
	st.Notify(err.Error(), domain.SeverityError)
}

// Stop encerra as assinaturas e esvazia as coleções. A identidade é mantida.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked só limpa as coleções depois que nenhuma entrega está em
// andamento, senão um snapshot antigo chegaria ao store já limpo
func (s *Session) stopLocked() {
	if len(s.cancels) == 0 {
		return
	}

	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil

	s.store.Customers().Clear()
	s.store.Airlines().Clear()
	s.store.Sales().Clear()
}

// Refresh faz uma leitura pontual das três coleções, fora das assinaturas.
// Retorna a primeira falha; cada coleção registra a sua.
func (s *Session) Refresh(ctx context.Context) error {
	ownerID := s.OwnerID()

	var g errgroup.Group
	g.Go(func() error { return refresh(ctx, s.store, s.services.Customers, s.store.Customers(), ownerID) })
	g.Go(func() error { return refresh(ctx, s.store, s.services.Airlines, s.store.Airlines(), ownerID) })
	g.Go(func() error { return refresh(ctx, s.store, s.services.Sales, s.store.Sales(), ownerID) })

	return g.Wait()
}

func refresh[T any](ctx context.Context, st *store.Store, svc Collection[T], slice store.EntitySlice[T], ownerID string) error {
	slice.SetLoading(true)

	items, err := svc.List(ctx, ownerID)
	if err != nil {
		reportError(st, slice, err)
		return err
	}

	slice.SetItems(items)
	return nil
}
