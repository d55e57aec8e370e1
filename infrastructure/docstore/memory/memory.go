// Package memory é um backend de documentos em memória, usado em testes e
// no modo de desenvolvimento local.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/pkg/utils"
)

type entry struct {
	doc        docstore.Document
	collection string
	seq        uint64
}

type Store struct {
	mu        sync.Mutex
	docs      map[string]*entry
	seq       uint64
	listeners map[string]map[*iterator]struct{}
	clock     func() time.Time
	last      time.Time
	failNext  error
	closed    bool
}

type Option func(*Store)

// WithClock troca o relógio usado para os timestamps do servidor
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		docs:      make(map[string]*entry),
		listeners: make(map[string]map[*iterator]struct{}),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext faz a próxima escrita falhar com err
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// BreakListeners entrega err a todos os iteradores abertos na coleção
func (s *Store) BreakListeners(collectionPath string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for it := range s.listeners[collectionPath] {
		it.fail(err)
	}
}

// Listeners retorna quantos iteradores estão abertos na coleção
func (s *Store) Listeners(collectionPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners[collectionPath])
}

func (s *Store) Get(_ context.Context, docPath string) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.docs[docPath]
	if !ok {
		return docstore.Document{}, errors.Wrap(docstore.ErrNotFound, docPath)
	}
	return copyDocument(e.doc), nil
}

func (s *Store) Query(_ context.Context, q docstore.Query) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("backend em memória fechado")
	}
	return s.query(q), nil
}

func (s *Store) Snapshots(ctx context.Context, q docstore.Query) docstore.SnapshotIterator {
	it := &iterator{
		store:  s,
		query:  q,
		ctx:    ctx,
		first:  true,
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.listeners[q.Collection] == nil {
		s.listeners[q.Collection] = make(map[*iterator]struct{})
	}
	s.listeners[q.Collection][it] = struct{}{}
	s.mu.Unlock()

	return it
}

func (s *Store) Add(_ context.Context, collectionPath string, fields map[string]any) (string, error) {
	id, err := utils.GenerateDocumentID()
	if err != nil {
		return "", errors.Wrap(err, "erro ao gerar ID do documento")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return "", err
	}

	path := collectionPath + "/" + id
	s.seq++
	s.docs[path] = &entry{
		doc: docstore.Document{
			ID:     id,
			Path:   path,
			Fields: s.resolve(fields),
		},
		collection: collectionPath,
		seq:        s.seq,
	}
	s.notify(collectionPath)

	return id, nil
}

func (s *Store) Set(_ context.Context, docPath string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	resolved := s.resolve(fields)
	if e, ok := s.docs[docPath]; ok {
		if merge {
			for k, v := range resolved {
				e.doc.Fields[k] = v
			}
		} else {
			e.doc.Fields = resolved
		}
		s.notify(e.collection)
		return nil
	}

	collection, id := docstore.ParentCollection(docPath)
	s.seq++
	s.docs[docPath] = &entry{
		doc:        docstore.Document{ID: id, Path: docPath, Fields: resolved},
		collection: collection,
		seq:        s.seq,
	}
	s.notify(collection)
	return nil
}

func (s *Store) Update(_ context.Context, docPath string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	e, ok := s.docs[docPath]
	if !ok {
		return errors.Wrap(docstore.ErrNotFound, docPath)
	}

	for k, v := range s.resolve(fields) {
		e.doc.Fields[k] = v
	}
	s.notify(e.collection)
	return nil
}

func (s *Store) Delete(_ context.Context, docPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	e, ok := s.docs[docPath]
	if !ok {
		return errors.Wrap(docstore.ErrNotFound, docPath)
	}

	delete(s.docs, docPath)
	s.notify(e.collection)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, its := range s.listeners {
		for it := range its {
			it.fail(docstore.ErrIteratorStopped)
		}
	}
	return nil
}

func (s *Store) query(q docstore.Query) []docstore.Document {
	entries := make([]*entry, 0)
	for _, e := range s.docs {
		if e.collection == q.Collection {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	docs := make([]docstore.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, copyDocument(e.doc))
	}
	docstore.SortDocuments(docs, q)
	return docs
}

func (s *Store) takeFailure() error {
	if s.closed {
		return errors.New("backend em memória fechado")
	}
	err := s.failNext
	s.failNext = nil
	return err
}

// now garante timestamps estritamente crescentes com precisão de microssegundos
func (s *Store) now() time.Time {
	t := s.clock().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Store) resolve(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case map[string]any:
			out[k] = s.resolve(val)
		case time.Time:
			out[k] = val.UTC().Truncate(time.Microsecond)
		default:
			if docstore.IsServerTimestamp(v) {
				out[k] = s.now()
				continue
			}
			out[k] = v
		}
	}
	return out
}

func (s *Store) notify(collection string) {
	for it := range s.listeners[collection] {
		select {
		case it.signal <- struct{}{}:
		default:
		}
	}
}

func (s *Store) unregister(it *iterator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners[it.query.Collection], it)
}

func copyDocument(doc docstore.Document) docstore.Document {
	return docstore.Document{
		ID:     doc.ID,
		Path:   doc.Path,
		Fields: copyFields(doc.Fields),
	}
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyFields(nested)
			continue
		}
		out[k] = v
	}
	return out
}
