package memory

import (
	"context"
	"sync"

	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
)

type iterator struct {
	store  *Store
	query  docstore.Query
	ctx    context.Context
	first  bool
	signal chan struct{}
	stop   chan struct{}

	mu       sync.Mutex
	err      error
	stopOnce sync.Once
}

func (it *iterator) Next() ([]docstore.Document, error) {
	if err := it.failure(); err != nil {
		return nil, err
	}

	if it.first {
		it.first = false
		return it.snapshot()
	}

	select {
	case <-it.stop:
		return nil, docstore.ErrIteratorStopped
	case <-it.ctx.Done():
		return nil, docstore.ErrIteratorStopped
	case <-it.signal:
		if err := it.failure(); err != nil {
			return nil, err
		}
		return it.snapshot()
	}
}

func (it *iterator) Stop() {
	it.stopOnce.Do(func() {
		close(it.stop)
		it.store.unregister(it)
	})
}

func (it *iterator) snapshot() ([]docstore.Document, error) {
	select {
	case <-it.stop:
		return nil, docstore.ErrIteratorStopped
	default:
	}

	it.store.mu.Lock()
	defer it.store.mu.Unlock()
	return it.store.query(it.query), nil
}

// fail é chamado com o lock do Store
func (it *iterator) fail(err error) {
	it.mu.Lock()
	it.err = err
	it.mu.Unlock()

	select {
	case it.signal <- struct{}{}:
	default:
	}
}

func (it *iterator) failure() error {
	select {
	case <-it.stop:
		return docstore.ErrIteratorStopped
	default:
	}

	it.mu.Lock()
	defer it.mu.Unlock()
	return it.err
}
