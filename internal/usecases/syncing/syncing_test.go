package syncing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore/memory"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/mapper"
)

const owner = "u1"

type recorder[T any] struct {
	mu        sync.Mutex
	snapshots [][]T
	errs      []error
}

func (r *recorder[T]) onData(items []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, items)
}

func (r *recorder[T]) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recorder[T]) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func (r *recorder[T]) last() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

type services struct {
	store     *memory.Store
	customers *CustomerService
	airlines  *AirlineService
	sales     *SaleService
}

func newServices() services {
	store := memory.New()
	m := mapper.New()
	customers := NewCustomerService(store, m)
	airlines := NewAirlineService(store, m)

	return services{
		store:     store,
		customers: customers,
		airlines:  airlines,
		sales:     NewSaleService(store, m, customers, airlines),
	}
}

func ana() domain.CustomerInput {
	return domain.CustomerInput{Name: "Ana", CPF: "12345678901", Email: "ana@x.com", Phone: "111"}
}

func TestCustomerService_SubscribeThenAdd(t *testing.T) {
	s := newServices()
	rec := &recorder[domain.Customer]{}

	sub, err := s.customers.Subscribe(owner, rec.onData, rec.onError)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, rec.last())
	assert.Equal(t, StateSubscribed, sub.State())

	id, err := s.customers.Add(context.Background(), owner, ana())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(rec.last()) == 1 }, time.Second, 5*time.Millisecond)
	got := rec.last()[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "12345678901", got.CPF)
	assert.Equal(t, "ana@x.com", got.Email)
	assert.Equal(t, "111", got.Phone)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Nil(t, got.UpdatedAt)
	assert.Empty(t, rec.errors())
}

func TestCustomerService_UpdateKeepsOtherFields(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	id, err := s.customers.Add(ctx, owner, ana())
	require.NoError(t, err)
	before, err := s.customers.Get(ctx, owner, id)
	require.NoError(t, err)

	name := "Ana B"
	require.NoError(t, s.customers.Update(ctx, owner, id, domain.CustomerPatch{Name: &name}))
	first, err := s.customers.Get(ctx, owner, id)
	require.NoError(t, err)

	assert.Equal(t, "Ana B", first.Name)
	assert.Equal(t, before.CPF, first.CPF)
	assert.Equal(t, before.Email, first.Email)
	assert.Equal(t, before.Phone, first.Phone)
	assert.Equal(t, before.CreatedAt, first.CreatedAt)
	require.NotNil(t, first.UpdatedAt)

	require.NoError(t, s.customers.Update(ctx, owner, id, domain.CustomerPatch{Name: &name}))
	second, err := s.customers.Get(ctx, owner, id)
	require.NoError(t, err)
	require.NotNil(t, second.UpdatedAt)
	assert.True(t, second.UpdatedAt.After(*first.UpdatedAt))
}

func TestCustomerService_UpdateMissing(t *testing.T) {
	s := newServices()
	name := "Ana"

	err := s.customers.Update(context.Background(), owner, "nao-existe", domain.CustomerPatch{Name: &name})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServices_AuthenticationRequired(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	_, err := s.customers.Add(ctx, "", ana())
	assert.Equal(t, KindAuthenticationRequired, KindOf(err))

	err = s.airlines.Update(ctx, " ", "a1", domain.AirlinePatch{})
	assert.Equal(t, KindAuthenticationRequired, KindOf(err))

	err = s.sales.Delete(ctx, "", "s1")
	assert.Equal(t, KindAuthenticationRequired, KindOf(err))

	_, err = s.sales.Subscribe("", nil, nil)
	assert.True(t, errors.Is(err, ErrAuthenticationRequired))

	_, err = s.customers.List(ctx, "")
	assert.Equal(t, KindAuthenticationRequired, KindOf(err))
}

func TestCustomerService_ValidationNeverReachesBackend(t *testing.T) {
	s := newServices()
	in := ana()
	in.CPF = "123"
	in.Email = "a@b"

	_, err := s.customers.Add(context.Background(), owner, in)
	require.Error(t, err)

	var syncErr *SyncError
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, KindValidation, syncErr.Kind)
	assert.Equal(t, "VAL_004", syncErr.Code)
	assert.Contains(t, err.Error(), "cpf")
	assert.Contains(t, err.Error(), "email")
	assert.NotNil(t, syncErr.Details)

	docs, err := s.store.Query(context.Background(), docstore.Query{Collection: "owners/u1/customers"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAirlineService_NameLength(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	_, err := s.airlines.Add(ctx, owner, domain.AirlineInput{Name: "A"})
	assert.Equal(t, KindValidation, KindOf(err))

	id, err := s.airlines.Add(ctx, owner, domain.AirlineInput{Name: "GOL"})
	require.NoError(t, err)

	airline, err := s.airlines.Get(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, "GOL", airline.Name)
}

func TestSaleService_ReferencesMustExist(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	customerID, err := s.customers.Add(ctx, owner, ana())
	require.NoError(t, err)

	in := domain.SaleInput{
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CustomerID: customerID,
		AirlineID:  "nao-existe",
		Value:      100,
		Cost:       50,
	}
	_, err = s.sales.Add(ctx, owner, in)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, errors.Is(err, ErrUnknownAirline))

	// referências de outro dono não valem
	airlineID, err := s.airlines.Add(ctx, "u2", domain.AirlineInput{Name: "GOL"})
	require.NoError(t, err)
	in.AirlineID = airlineID
	_, err = s.sales.Add(ctx, owner, in)
	assert.True(t, errors.Is(err, ErrUnknownAirline))

	airlineID, err = s.airlines.Add(ctx, owner, domain.AirlineInput{Name: "GOL"})
	require.NoError(t, err)
	in.AirlineID = airlineID
	id, err := s.sales.Add(ctx, owner, in)
	require.NoError(t, err)

	sale, err := s.sales.Get(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, customerID, sale.CustomerID)
	assert.Equal(t, airlineID, sale.AirlineID)
	assert.Equal(t, 50.0, sale.Profit())

	unknown := "outro"
	err = s.sales.Update(ctx, owner, id, domain.SalePatch{CustomerID: &unknown})
	assert.True(t, errors.Is(err, ErrUnknownCustomer))
}

func TestSaleService_ValueRules(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	customerID, err := s.customers.Add(ctx, owner, ana())
	require.NoError(t, err)
	airlineID, err := s.airlines.Add(ctx, owner, domain.AirlineInput{Name: "GOL"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		value   float64
		cost    float64
		wantErr bool
	}{
		{name: "valor zero", value: 0, wantErr: true},
		{name: "valor negativo", value: -5, wantErr: true},
		{name: "custo negativo", value: 1, cost: -1, wantErr: true},
		{name: "menor valor com custo zero", value: 0.01, cost: 0},
		{name: "custo maior que o valor", value: 10, cost: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := s.sales.Add(ctx, owner, domain.SaleInput{
				Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				CustomerID: customerID,
				AirlineID:  airlineID,
				Value:      tt.value,
				Cost:       tt.cost,
			})
			if tt.wantErr {
				assert.Equal(t, KindValidation, KindOf(err))
				return
			}

			require.NoError(t, err)
			sale, err := s.sales.Get(ctx, owner, id)
			require.NoError(t, err)
			assert.Equal(t, tt.value, sale.Value)
			assert.Equal(t, tt.cost, sale.Cost)
		})
	}
}

func TestCustomerService_FieldRules(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	tests := []struct {
		name    string
		change  func(*domain.CustomerInput)
		field   string
		wantErr bool
	}{
		{name: "válido", change: func(*domain.CustomerInput) {}},
		{name: "cpf com 12 dígitos", change: func(in *domain.CustomerInput) { in.CPF = "123456789012" }, field: "cpf", wantErr: true},
		{name: "cpf com letra", change: func(in *domain.CustomerInput) { in.CPF = "12345678901a" }, field: "cpf", wantErr: true},
		{name: "email sem arroba", change: func(in *domain.CustomerInput) { in.Email = "notanemail" }, field: "email", wantErr: true},
		{name: "nome vazio", change: func(in *domain.CustomerInput) { in.Name = "" }, field: "name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ana()
			tt.change(&in)

			_, err := s.customers.Add(ctx, owner, in)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSaleService_ListOrderedByDateDesc(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	customerID, err := s.customers.Add(ctx, owner, ana())
	require.NoError(t, err)
	airlineID, err := s.airlines.Add(ctx, owner, domain.AirlineInput{Name: "GOL"})
	require.NoError(t, err)

	for _, day := range []int{5, 20, 1} {
		_, err := s.sales.Add(ctx, owner, domain.SaleInput{
			Date:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			CustomerID: customerID,
			AirlineID:  airlineID,
			Value:      float64(day),
		})
		require.NoError(t, err)
	}

	sales, err := s.sales.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, sales, 3)
	assert.Equal(t, 20, sales[0].Date.Day())
	assert.Equal(t, 5, sales[1].Date.Day())
	assert.Equal(t, 1, sales[2].Date.Day())
}

func TestSaleService_DeleteMissing(t *testing.T) {
	s := newServices()

	err := s.sales.Delete(context.Background(), owner, "ja-removida")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "SYNC_001", err.(*SyncError).Code)
}

func TestSubscribe_ImmediateUnsubscribeNeverCallsBack(t *testing.T) {
	s := newServices()

	for i := 0; i < 50; i++ {
		rec := &recorder[domain.Customer]{}
		sub, err := s.customers.Subscribe(owner, rec.onData, rec.onError)
		require.NoError(t, err)
		sub.Close()

		countAfter := rec.count()
		_, err = s.customers.Add(context.Background(), owner, ana())
		require.NoError(t, err)

		time.Sleep(2 * time.Millisecond)
		assert.Equal(t, countAfter, rec.count())
		assert.LessOrEqual(t, countAfter, 1)
		assert.Equal(t, StateTerminated, sub.State())
	}

	assert.Equal(t, 0, s.store.Listeners("owners/u1/customers"))
}

func TestSubscribe_UnsubscribeIsIdempotent(t *testing.T) {
	s := newServices()

	sub, err := s.airlines.Subscribe(owner, nil, nil)
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, StateTerminated, sub.State())
	assert.Equal(t, StateIdle, s.airlines.State(owner))
}

func TestSubscribe_ReplacesPreviousListener(t *testing.T) {
	s := newServices()
	first := &recorder[domain.Customer]{}
	second := &recorder[domain.Customer]{}

	sub1, err := s.customers.Subscribe(owner, first.onData, first.onError)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return first.count() == 1 }, time.Second, 5*time.Millisecond)

	sub2, err := s.customers.Subscribe(owner, second.onData, second.onError)
	require.NoError(t, err)
	defer sub2.Unsubscribe()

	assert.Equal(t, StateTerminated, sub1.State())
	assert.Equal(t, 1, s.store.Listeners("owners/u1/customers"))

	_, err = s.customers.Add(context.Background(), owner, ana())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(second.last()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, first.count())
}

func TestSubscribe_FailureIsReportedOnceWithoutRetry(t *testing.T) {
	s := newServices()
	rec := &recorder[domain.Customer]{}

	sub, err := s.customers.Subscribe(owner, rec.onData, rec.onError)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	s.store.BreakListeners("owners/u1/customers", errors.New("conexão perdida"))

	require.Eventually(t, func() bool { return len(rec.errors()) == 1 }, time.Second, 5*time.Millisecond)
	<-sub.Done()

	err = rec.errors()[0]
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Contains(t, err.Error(), "conexão perdida")
	assert.Equal(t, StateIdle, sub.State())
	assert.Equal(t, StateIdle, s.customers.State(owner))

	_, err = s.customers.Add(context.Background(), owner, ana())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.Len(t, rec.errors(), 1)

	sub.Unsubscribe()
	assert.Equal(t, StateTerminated, sub.State())
}

func TestSubscribe_UnsubscribeFromCallback(t *testing.T) {
	s := newServices()
	calls := make(chan struct{}, 10)

	var (
		mu  sync.Mutex
		sub *Subscription[domain.Customer]
		err error
	)

	// o callback só enxerga sub depois da atribuição
	mu.Lock()
	sub, err = s.customers.Subscribe(owner, func([]domain.Customer) {
		calls <- struct{}{}
		mu.Lock()
		current := sub
		mu.Unlock()
		current.Unsubscribe()
	}, nil)
	mu.Unlock()
	require.NoError(t, err)

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("snapshot inicial não entregue")
	}
	<-sub.Done()

	_, err = s.customers.Add(context.Background(), owner, ana())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, calls, 0)
	assert.Equal(t, StateTerminated, sub.State())
}

func TestSubscribe_CloseWaitsForInFlightCallback(t *testing.T) {
	s := newServices()

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		once  sync.Once
		mu    sync.Mutex
		items []domain.Customer
	)

	sub, err := s.customers.Subscribe(owner, func(snapshot []domain.Customer) {
		if len(snapshot) > 0 {
			once.Do(func() { close(entered) })
			<-release
		}
		mu.Lock()
		items = snapshot
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	_, err = s.customers.Add(context.Background(), owner, ana())
	require.NoError(t, err)

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("snapshot com o cliente não entregue")
	}

	closed := make(chan struct{})
	go func() {
		sub.Close()
		mu.Lock()
		items = nil
		mu.Unlock()
		close(closed)
	}()

	require.Eventually(t, func() bool { return sub.State() == StateTerminated }, time.Second, 5*time.Millisecond)
	select {
	case <-closed:
		t.Fatal("Close retornou com um callback em andamento")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close não retornou depois do callback")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, items)
}

func TestSubscribe_OwnersAreIsolated(t *testing.T) {
	s := newServices()
	rec := &recorder[domain.Customer]{}

	sub, err := s.customers.Subscribe("u2", rec.onData, rec.onError)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	_, err = s.customers.Add(context.Background(), owner, ana())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, snapshot := range rec.snapshots {
		assert.Empty(t, snapshot)
	}
}

func TestWatch_StreamIsNotRestartable(t *testing.T) {
	s := newServices()

	stream, err := s.customers.Watch(context.Background(), owner)
	require.NoError(t, err)

	items, err := stream.Next()
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.customers.Add(context.Background(), owner, ana())
	require.NoError(t, err)
	items, err = stream.Next()
	require.NoError(t, err)
	assert.Len(t, items, 1)

	stream.Cancel()
	stream.Cancel()
	_, err = stream.Next()
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestOwnerService_InitializeOwner(t *testing.T) {
	store := memory.New()
	owners := NewOwnerService(store)
	ctx := context.Background()

	require.NoError(t, owners.InitializeOwner(ctx, domain.Identity{OwnerID: owner, Email: "ana@x.com"}))
	doc, err := store.Get(ctx, "owners/u1")
	require.NoError(t, err)
	createdAt := doc.Fields["createdAt"]
	assert.NotNil(t, createdAt)
	assert.Equal(t, "ana@x.com", doc.Fields["email"])

	require.NoError(t, owners.InitializeOwner(ctx, domain.Identity{OwnerID: owner, Email: "ana@y.com"}))
	doc, err = store.Get(ctx, "owners/u1")
	require.NoError(t, err)
	assert.Equal(t, createdAt, doc.Fields["createdAt"])
	assert.Equal(t, "ana@y.com", doc.Fields["email"])

	err = owners.InitializeOwner(ctx, domain.Identity{})
	assert.Equal(t, KindAuthenticationRequired, KindOf(err))
}
