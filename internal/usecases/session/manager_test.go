package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestManager_SessionIsReused(t *testing.T) {
	f := newFixture()
	m := NewManager(f.services())
	defer m.Close()

	first, err := m.Session(context.Background(), *identity("u1"))
	require.NoError(t, err)
	second, err := m.Session(context.Background(), *identity("u1"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.True(t, first.Running())
}

func TestManager_RejectsEmptyOwner(t *testing.T) {
	m := NewManager(newFixture().services())

	_, err := m.Session(context.Background(), domain.Identity{})
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, 0, m.Len())
}

func TestManager_IdentityEvents(t *testing.T) {
	f := newFixture()
	m := NewManager(f.services())
	defer m.Close()

	ctx := context.Background()
	m.HandleIdentityEvent(ctx, domain.IdentityEvent{OwnerID: "u1", Identity: identity("u1")})

	sess, ok := m.Lookup("u1")
	require.True(t, ok)
	require.Eventually(t, loaded(sess.Store().Customers(), 0), waitFor, tick)

	m.HandleIdentityEvent(ctx, domain.IdentityEvent{OwnerID: "u1"})

	_, ok = m.Lookup("u1")
	assert.False(t, ok)
	assert.False(t, sess.Running())
	assert.Nil(t, sess.Store().Identity())

	m.HandleIdentityEvent(ctx, domain.IdentityEvent{OwnerID: "u1"})
	assert.Equal(t, 0, m.Len())
}

func TestManager_EvictIdle(t *testing.T) {
	f := newFixture()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(f.services(), WithClock(clock.Now), WithStoreOptions(store.WithAutoHide(time.Second)))
	defer m.Close()

	ctx := context.Background()
	_, err := m.Session(ctx, *identity("u1"))
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = m.Session(ctx, *identity("u2"))
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, m.EvictIdle(30*time.Minute))

	_, ok := m.Lookup("u1")
	assert.False(t, ok)
	_, ok = m.Lookup("u2")
	assert.True(t, ok)

	assert.Equal(t, 0, m.EvictIdle(30*time.Minute))
}
