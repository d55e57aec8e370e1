package memory

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
)

const customers = "owners/u1/customers"

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Add(ctx, customers, map[string]any{"name": "Ana", "createdAt": docstore.ServerTimestamp})
	require.NoError(t, err)
	assert.Len(t, id, 20)

	doc, err := s.Get(ctx, customers+"/"+id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.Fields["name"])
	assert.IsType(t, time.Time{}, doc.Fields["createdAt"])

	require.NoError(t, s.Update(ctx, doc.Path, map[string]any{"name": "Ana Maria"}))
	doc, err = s.Get(ctx, doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", doc.Fields["name"])
	assert.NotNil(t, doc.Fields["createdAt"])

	require.NoError(t, s.Delete(ctx, doc.Path))
	_, err = s.Get(ctx, doc.Path)
	assert.True(t, errors.Is(err, docstore.ErrNotFound))

	assert.True(t, errors.Is(s.Delete(ctx, doc.Path), docstore.ErrNotFound))
	assert.True(t, errors.Is(s.Update(ctx, doc.Path, map[string]any{"a": 1}), docstore.ErrNotFound))
}

func TestStore_SetMerge(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "owners/u1", map[string]any{"a": 1, "b": 2}, false))
	require.NoError(t, s.Set(ctx, "owners/u1", map[string]any{"b": 3}, true))

	doc, err := s.Get(ctx, "owners/u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 3}, doc.Fields)

	require.NoError(t, s.Set(ctx, "owners/u1", map[string]any{"c": 4}, false))
	doc, err = s.Get(ctx, "owners/u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"c": 4}, doc.Fields)
}

func TestStore_ServerTimestampsStrictlyIncrease(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	first, err := s.Add(ctx, customers, map[string]any{"createdAt": docstore.ServerTimestamp})
	require.NoError(t, err)
	second, err := s.Add(ctx, customers, map[string]any{"createdAt": docstore.ServerTimestamp})
	require.NoError(t, err)

	a, _ := s.Get(ctx, customers+"/"+first)
	b, _ := s.Get(ctx, customers+"/"+second)
	assert.True(t, b.Fields["createdAt"].(time.Time).After(a.Fields["createdAt"].(time.Time)))
}

func TestStore_FailNext(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	s.FailNext(boom)
	_, err := s.Add(ctx, customers, map[string]any{})
	assert.Equal(t, boom, err)

	_, err = s.Add(ctx, customers, map[string]any{})
	assert.NoError(t, err)
}

func TestStore_Snapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	it := s.Snapshots(ctx, docstore.Query{Collection: customers})
	docs, err := it.Next()
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 1, s.Listeners(customers))

	_, err = s.Add(ctx, customers, map[string]any{"name": "Ana"})
	require.NoError(t, err)

	docs, err = it.Next()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Ana", docs[0].Fields["name"])

	// mudanças em outra coleção não acordam o iterador
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := it.Next()
		assert.True(t, errors.Is(err, docstore.ErrIteratorStopped))
	}()

	_, err = s.Add(ctx, "owners/u2/customers", map[string]any{"name": "Bia"})
	require.NoError(t, err)

	it.Stop()
	it.Stop()
	<-done
	assert.Equal(t, 0, s.Listeners(customers))
}

func TestStore_BreakListeners(t *testing.T) {
	ctx := context.Background()
	s := New()
	broken := errors.New("conexão perdida")

	it := s.Snapshots(ctx, docstore.Query{Collection: customers})
	_, err := it.Next()
	require.NoError(t, err)

	s.BreakListeners(customers, broken)
	_, err = it.Next()
	assert.Equal(t, broken, err)
}

func TestStore_SnapshotsStopOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	it := s.Snapshots(ctx, docstore.Query{Collection: customers})
	_, err := it.Next()
	require.NoError(t, err)

	cancel()
	_, err = it.Next()
	assert.True(t, errors.Is(err, docstore.ErrIteratorStopped))
	it.Stop()
}
