package authenticating

import (
	"context"
	"sync"

	"github.com/vfg2006/sales-manager-api/internal/domain"
)

// identityBroker entrega eventos de login e logout aos interessados, na ordem
// em que foram publicados
type identityBroker struct {
	publishMu sync.Mutex

	mu        sync.Mutex
	listeners map[uint64]func(context.Context, domain.IdentityEvent)
	next      uint64
}

func newIdentityBroker() *identityBroker {
	return &identityBroker{listeners: make(map[uint64]func(context.Context, domain.IdentityEvent))}
}

func (b *identityBroker) subscribe(fn func(context.Context, domain.IdentityEvent)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *identityBroker) publish(ctx context.Context, event domain.IdentityEvent) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	listeners := make([]func(context.Context, domain.IdentityEvent), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, event)
	}
}

func loggedIn(identity domain.Identity) domain.IdentityEvent {
	return domain.IdentityEvent{OwnerID: identity.OwnerID, Identity: &identity}
}

func loggedOut(ownerID string) domain.IdentityEvent {
	return domain.IdentityEvent{OwnerID: ownerID}
}

var (
	_ Authenticator = (*Service)(nil)
	_ Authenticator = (*FirebaseService)(nil)
)
