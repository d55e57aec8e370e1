package syncing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
)

// Stream é uma sequência preguiçosa e ilimitada de snapshots completos da
// coleção de um dono. Depois de Cancel não pode ser reiniciado: é preciso
// chamar Watch de novo.
type Stream[T any] struct {
	iter     docstore.SnapshotIterator
	toDomain func(docstore.Document) T
	entity   string
	cancel   context.CancelFunc

	once      sync.Once
	cancelled atomic.Bool
}

// Next bloqueia até o próximo snapshot. O primeiro retorna o estado atual.
// Retorna ErrStreamClosed depois de Cancel.
func (s *Stream[T]) Next() ([]T, error) {
	if s.cancelled.Load() {
		return nil, ErrStreamClosed
	}

	docs, err := s.iter.Next()
	if err != nil {
		if s.cancelled.Load() || errors.Is(err, docstore.ErrIteratorStopped) {
			return nil, ErrStreamClosed
		}
		return nil, classify(s.entity, opSubscribe, err)
	}

	if s.cancelled.Load() {
		return nil, ErrStreamClosed
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		items = append(items, s.toDomain(doc))
	}
	return items, nil
}

// Cancel libera o listener remoto. Pode ser chamado várias vezes.
func (s *Stream[T]) Cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		s.iter.Stop()
		s.cancel()
	})
}
