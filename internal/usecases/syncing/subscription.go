package syncing

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/qmuntal/stateless"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

const (
	StateIdle       = "idle"
	StateSubscribed = "subscribed"
	StateTerminated = "terminated"

	triggerSubscribe   = "subscribe"
	triggerFail        = "fail"
	triggerUnsubscribe = "unsubscribe"
)

// Subscription entrega cada snapshot em onData e falhas em onError, sempre
// a partir de uma única goroutine. Depois que Unsubscribe retorna nenhum
// callback novo começa; depois que Close retorna nenhum callback está em
// andamento.
type Subscription[T any] struct {
	ownerID string
	entity  string
	stream  *Stream[T]
	onData  func([]T)
	onError func(error)
	release func(*Subscription[T])

	machineMu sync.Mutex
	machine   *stateless.StateMachine

	// callbackMu serializa callbacks com o cancelamento
	callbackMu sync.Mutex
	cancelled  atomic.Bool
	done       chan struct{}
}

func newMachine() *stateless.StateMachine {
	machine := stateless.NewStateMachine(StateIdle)

	machine.Configure(StateIdle).
		Permit(triggerSubscribe, StateSubscribed).
		Permit(triggerUnsubscribe, StateTerminated).
		Ignore(triggerFail)

	machine.Configure(StateSubscribed).
		Permit(triggerFail, StateIdle).
		Permit(triggerUnsubscribe, StateTerminated)

	machine.Configure(StateTerminated).
		Ignore(triggerUnsubscribe).
		Ignore(triggerFail)

	return machine
}

func newSubscription[T any](ownerID, entity string, stream *Stream[T], onData func([]T), onError func(error), release func(*Subscription[T])) *Subscription[T] {
	if onData == nil {
		onData = func([]T) {}
	}
	if onError == nil {
		onError = func(error) {}
	}

	return &Subscription[T]{
		ownerID: ownerID,
		entity:  entity,
		stream:  stream,
		onData:  onData,
		onError: onError,
		release: release,
		machine: newMachine(),
		done:    make(chan struct{}),
	}
}

func (s *Subscription[T]) OwnerID() string {
	return s.ownerID
}

// State retorna idle, subscribed ou terminated
func (s *Subscription[T]) State() string {
	s.machineMu.Lock()
	defer s.machineMu.Unlock()
	return s.machine.MustState().(string)
}

func (s *Subscription[T]) fire(trigger string) {
	s.machineMu.Lock()
	defer s.machineMu.Unlock()

	if err := s.machine.Fire(trigger); err != nil {
		log.L.WithFields(log.Fields{"owner_id": s.ownerID, "entity": s.entity}).
			WithError(err).Warn("Transição de assinatura inválida")
	}
}

func (s *Subscription[T]) start() {
	s.fire(triggerSubscribe)
	go s.run()
}

func (s *Subscription[T]) run() {
	defer close(s.done)

	for {
		items, err := s.stream.Next()
		if err != nil {
			if errors.Is(err, ErrStreamClosed) {
				return
			}
			s.fail(err)
			return
		}

		if !s.deliver(func() { s.onData(items) }) {
			return
		}
	}
}

// fail encerra a assinatura sem reconexão; o dono decide se assina de novo
func (s *Subscription[T]) fail(err error) {
	log.L.WithFields(log.Fields{"owner_id": s.ownerID, "entity": s.entity}).
		WithError(err).Error("Falha na assinatura")

	s.fire(triggerFail)
	s.stream.Cancel()
	s.release(s)
	s.deliver(func() { s.onError(err) })
}

func (s *Subscription[T]) deliver(callback func()) bool {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()

	if s.cancelled.Load() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			log.L.WithFields(log.Fields{"owner_id": s.ownerID, "entity": s.entity}).
				Errorf("Panic no callback da assinatura: %v", r)
		}
	}()

	callback()
	return true
}

// Unsubscribe é idempotente e pode ser chamado de dentro do próprio
// callback. Não espera um callback em andamento: quem encerra a assinatura
// de outra goroutine e depois descarta o estado entregue deve usar Close.
func (s *Subscription[T]) Unsubscribe() {
	if !s.cancelled.CompareAndSwap(false, true) {
		return
	}

	s.fire(triggerUnsubscribe)
	s.stream.Cancel()
	s.release(s)
}

// Close encerra a assinatura e espera a goroutine de entrega terminar,
// inclusive um callback que já estava em andamento. Chamado de dentro de um
// callback da mesma assinatura, bloqueia para sempre.
func (s *Subscription[T]) Close() {
	s.Unsubscribe()
	<-s.done
}

// Done é fechado quando a goroutine de entrega termina
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
