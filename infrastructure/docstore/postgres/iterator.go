package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

type iterator struct {
	ctx       context.Context
	store     *Store
	query     docstore.Query
	listener  *pq.Listener
	listenErr error
	first     bool
	stop      chan struct{}
	stopOnce  sync.Once
}

// newIterator começa a escutar antes da primeira consulta para não perder
// mudanças entre o snapshot inicial e o LISTEN
func newIterator(ctx context.Context, s *Store, q docstore.Query) *iterator {
	it := &iterator{
		ctx:   ctx,
		store: s,
		query: q,
		first: true,
		stop:  make(chan struct{}),
	}

	it.listener = pq.NewListener(s.conn.DSN(), minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logrus.WithError(err).WithField("collection", q.Collection).Warn("Evento de conexão do listener de documentos")
		}
	})

	if err := it.listener.Listen(ChangesChannel); err != nil {
		it.listenErr = errors.Wrapf(err, "erro ao escutar mudanças de %s", q.Collection)
	}

	return it
}

func (it *iterator) Next() ([]docstore.Document, error) {
	if it.stopped() {
		return nil, docstore.ErrIteratorStopped
	}
	if it.listenErr != nil {
		return nil, it.listenErr
	}

	if it.first {
		it.first = false
		return it.store.Query(it.ctx, it.query)
	}

	for {
		select {
		case <-it.stop:
			return nil, docstore.ErrIteratorStopped
		case <-it.ctx.Done():
			return nil, docstore.ErrIteratorStopped
		case n, ok := <-it.listener.Notify:
			if !ok {
				return nil, docstore.ErrIteratorStopped
			}
			// nil indica reconexão: mudanças podem ter sido perdidas
			if n == nil || n.Extra == it.query.Collection {
				return it.store.Query(it.ctx, it.query)
			}
		case <-time.After(pingInterval):
			go func() {
				if err := it.listener.Ping(); err != nil {
					logrus.WithError(err).Warn("Ping do listener de documentos falhou")
				}
			}()
		}
	}
}

func (it *iterator) Stop() {
	it.stopOnce.Do(func() {
		close(it.stop)
		if err := it.listener.Close(); err != nil {
			logrus.WithError(err).Debug("Listener de documentos já estava fechado")
		}
	})
}

func (it *iterator) stopped() bool {
	select {
	case <-it.stop:
		return true
	default:
		return false
	}
}
