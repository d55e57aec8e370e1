// Package store guarda o último estado conhecido das coleções de um dono,
// os indicadores de carregamento e erro e a notificação pendente.
//
// Cada snapshot recebido substitui a coleção inteira; o store nunca aplica
// alterações incrementais.
package store

import (
	"sync"
	"time"

	"github.com/vfg2006/sales-manager-api/internal/domain"
)

const DefaultAutoHide = 6 * time.Second

// Slice é o estado de uma coleção
type Slice[T any] struct {
	Items   []T     `json:"items"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

type State struct {
	Version      uint64                 `json:"version"`
	Identity     *domain.Identity       `json:"identity"`
	Customers    Slice[domain.Customer] `json:"customers"`
	Airlines     Slice[domain.Airline]  `json:"airlines"`
	Sales        Slice[domain.Sale]     `json:"sales"`
	Notification *domain.Notification   `json:"notification"`
}

type Store struct {
	// dispatchMu mantém a ordem de entrega aos listeners igual à das mutações
	dispatchMu sync.Mutex

	mu               sync.RWMutex
	state            State
	listeners        map[uint64]func(State)
	nextListener     uint64
	nextNotification uint64
	autoHide         time.Duration
	hideTimer        *time.Timer

	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Store)

// WithAutoHide define a duração padrão das notificações
func WithAutoHide(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.autoHide = d
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		listeners: make(map[uint64]func(State)),
		autoHide:  DefaultAutoHide,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = emptyState()
	return s
}

func emptyState() State {
	return State{
		Customers: Slice[domain.Customer]{Items: []domain.Customer{}},
		Airlines:  Slice[domain.Airline]{Items: []domain.Airline{}},
		Sales:     Slice[domain.Sale]{Items: []domain.Sale{}},
	}
}

// Snapshot retorna uma cópia do estado atual
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Listen registra fn para receber o estado após cada mutação. Listeners não
// devem alterar o store.
func (s *Store) Listen(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) mutate(fn func(*State)) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	fn(&s.state)
	s.state.Version++
	snapshot := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

func (s *Store) Customers() EntitySlice[domain.Customer] {
	return EntitySlice[domain.Customer]{store: s, slice: func(st *State) *Slice[domain.Customer] { return &st.Customers }}
}

func (s *Store) Airlines() EntitySlice[domain.Airline] {
	return EntitySlice[domain.Airline]{store: s, slice: func(st *State) *Slice[domain.Airline] { return &st.Airlines }}
}

func (s *Store) Sales() EntitySlice[domain.Sale] {
	return EntitySlice[domain.Sale]{store: s, slice: func(st *State) *Slice[domain.Sale] { return &st.Sales }}
}

func (s *Store) SetIdentity(identity *domain.Identity) {
	s.mutate(func(st *State) {
		if identity == nil {
			st.Identity = nil
			return
		}
		copied := *identity
		st.Identity = &copied
	})
}

func (s *Store) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Identity == nil {
		return nil
	}
	copied := *s.state.Identity
	return &copied
}

// Reset volta ao estado inicial: sem identidade, coleções vazias e sem
// notificação
func (s *Store) Reset() {
	s.mutate(func(st *State) {
		s.stopHideTimerLocked()
		version := st.Version
		*st = emptyState()
		st.Version = version
	})
}

// Close cancela o timer da notificação pendente e fecha Done. Pode ser
// chamado mais de uma vez.
func (s *Store) Close() {
	s.mu.Lock()
	s.stopHideTimerLocked()
	s.mu.Unlock()

	s.closeOnce.Do(func() { close(s.done) })
}

// Done é fechado quando a sessão dona do store termina
func (s *Store) Done() <-chan struct{} {
	return s.done
}

func (st State) clone() State {
	out := st
	out.Customers.Items = append([]domain.Customer{}, st.Customers.Items...)
	out.Airlines.Items = append([]domain.Airline{}, st.Airlines.Items...)
	out.Sales.Items = append([]domain.Sale{}, st.Sales.Items...)
	if st.Identity != nil {
		identity := *st.Identity
		out.Identity = &identity
	}
	if st.Notification != nil {
		notification := *st.Notification
		out.Notification = &notification
	}
	return out
}
