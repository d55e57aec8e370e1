package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/store"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

var ErrNoIdentity = errors.New("identidade ausente")

// Manager mantém uma sessão por dono autenticado
type Manager struct {
	services  Services
	storeOpts []store.Option
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

type ManagerOption func(*Manager)

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithStoreOptions repassa opções a cada store criado
func WithStoreOptions(opts ...store.Option) ManagerOption {
	return func(m *Manager) {
		m.storeOpts = append(m.storeOpts, opts...)
	}
}

func NewManager(services Services, opts ...ManagerOption) *Manager {
	m := &Manager{
		services: services,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session retorna a sessão do dono, criando e iniciando quando não existe
func (m *Manager) Session(ctx context.Context, identity domain.Identity) (*Session, error) {
	if strings.TrimSpace(identity.OwnerID) == "" {
		return nil, ErrNoIdentity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if sess, ok := m.sessions[identity.OwnerID]; ok {
		sess.touch(now)
		return sess, nil
	}

	sess := New(m.services, store.New(m.storeOpts...))
	sess.touch(now)
	if err := sess.HandleIdentity(ctx, &identity); err != nil {
		sess.HandleIdentity(ctx, nil) //nolint:errcheck
		sess.Store().Close()
		return nil, err
	}

	m.sessions[identity.OwnerID] = sess
	return sess, nil
}

// Lookup retorna a sessão existente sem criar
func (m *Manager) Lookup(ownerID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[ownerID]
	if ok {
		sess.touch(m.now())
	}
	return sess, ok
}

// HandleIdentityEvent é registrado no provedor de identidade: login abre a
// sessão do dono e logout a encerra
func (m *Manager) HandleIdentityEvent(ctx context.Context, event domain.IdentityEvent) {
	logger := log.L.WithContext(ctx).WithField("owner_id", event.OwnerID)

	if event.Identity == nil {
		if m.End(event.OwnerID) {
			logger.Info("Sessão encerrada por logout")
		}
		return
	}

	if _, err := m.Session(ctx, *event.Identity); err != nil {
		logger.WithError(err).Error("Erro ao abrir sessão após login")
	}
}

// End encerra a sessão do dono. Retorna false quando não havia sessão.
func (m *Manager) End(ownerID string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[ownerID]
	delete(m.sessions, ownerID)
	m.mu.Unlock()

	if !ok {
		return false
	}

	sess.HandleIdentity(context.Background(), nil) //nolint:errcheck
	sess.Store().Close()
	return true
}

// EvictIdle encerra as sessões sem uso há mais de idle e retorna quantas foram
// encerradas
func (m *Manager) EvictIdle(idle time.Duration) int {
	deadline := m.now().Add(-idle)

	m.mu.Lock()
	var expired []string
	for ownerID, sess := range m.sessions {
		if sess.idleSince().Before(deadline) {
			expired = append(expired, ownerID)
		}
	}
	m.mu.Unlock()

	evicted := 0
	for _, ownerID := range expired {
		if m.End(ownerID) {
			evicted++
		}
	}
	return evicted
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close encerra todas as sessões
func (m *Manager) Close() {
	m.mu.Lock()
	owners := make([]string, 0, len(m.sessions))
	for ownerID := range m.sessions {
		owners = append(owners, ownerID)
	}
	m.mu.Unlock()

	for _, ownerID := range owners {
		m.End(ownerID)
	}
}
