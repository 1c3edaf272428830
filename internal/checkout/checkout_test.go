package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KH-Co/Bari-Foods/internal/domain"
	"github.com/KH-Co/Bari-Foods/internal/pricing"
)

type fakeBackend struct {
	mu        sync.Mutex
	addresses []domain.Address
	nextID    int64
	inFlight  int32 // address mutations currently executing
	overlap   int32 // set when two address mutations overlapped

	listErr      error
	checkoutFn   func(ctx context.Context, addressID int64, method domain.PaymentMethod) (int64, error)
	checkoutLog  []int64
	checkoutKeys []string
}

func newFakeBackend(addrs ...domain.Address) *fakeBackend {
	f := &fakeBackend{nextID: 100}
	f.addresses = append(f.addresses, addrs...)
	return f
}

func (f *fakeBackend) enterMutation() {
	if atomic.AddInt32(&f.inFlight, 1) > 1 {
		atomic.StoreInt32(&f.overlap, 1)
	}
	time.Sleep(time.Millisecond) // widen the race window
}

func (f *fakeBackend) leaveMutation() {
	atomic.AddInt32(&f.inFlight, -1)
}

func (f *fakeBackend) ListAddresses(context.Context) ([]domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Address, len(f.addresses))
	copy(out, f.addresses)
	return out, nil
}

func (f *fakeBackend) CreateAddress(_ context.Context, addr domain.Address) (domain.Address, error) {
	f.enterMutation()
	defer f.leaveMutation()

	f.mu.Lock()
	defer f.mu.Unlock()
	addr.ID = f.nextID
	f.nextID++
	f.addresses = append(f.addresses, addr)
	return addr, nil
}

func (f *fakeBackend) UpdateAddress(_ context.Context, addr domain.Address) (domain.Address, error) {
	f.enterMutation()
	defer f.leaveMutation()

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.addresses {
		if f.addresses[i].ID == addr.ID {
			f.addresses[i] = addr
			return addr, nil
		}
	}
	return domain.Address{}, errors.New("address not found")
}

func (f *fakeBackend) DeleteAddress(_ context.Context, id int64) error {
	f.enterMutation()
	defer f.leaveMutation()

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.addresses {
		if f.addresses[i].ID == id {
			f.addresses = append(f.addresses[:i], f.addresses[i+1:]...)
			return nil
		}
	}
	return errors.New("address not found")
}

func (f *fakeBackend) Checkout(ctx context.Context, addressID int64, method domain.PaymentMethod, idempotencyKey string) (int64, error) {
	f.mu.Lock()
	f.checkoutLog = append(f.checkoutLog, addressID)
	f.checkoutKeys = append(f.checkoutKeys, idempotencyKey)
	fn := f.checkoutFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, addressID, method)
	}
	return 42, nil
}

// fakeCart is a Cart whose contents and refresh behaviour are scripted.
type fakeCart struct {
	mu        sync.Mutex
	items     domain.Cart
	refreshFn func(ctx context.Context) error
}

func (f *fakeCart) Refresh(ctx context.Context) error {
	f.mu.Lock()
	fn := f.refreshFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (f *fakeCart) Snapshot() domain.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(domain.Cart, len(f.items))
	copy(out, f.items)
	return out
}

func (f *fakeCart) Breakdown() pricing.Breakdown {
	return pricing.Compute(f.Snapshot(), pricing.DefaultConfig())
}

func (f *fakeCart) setItems(items domain.Cart) {
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
}

func cartWithOneItem() *fakeCart {
	return &fakeCart{items: domain.Cart{{
		ItemID:   1,
		Product:  domain.Product{ID: 1, Name: "Cold Pressed Oil", Price: decimal.RequireFromString("250.00")},
		Quantity: 2,
	}}}
}

func addr(id int64, name string) domain.Address {
	return domain.Address{ID: id, Name: name, Type: domain.AddressHome}
}

func TestLoad_SelectsFirstAddress(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"), addr(2, "Ravi"))
	o := New(backend, cartWithOneItem())

	require.NoError(t, o.Load(context.Background()))

	assert.Equal(t, StateReady, o.State())
	selected, ok := o.SelectedAddress()
	require.True(t, ok)
	assert.Equal(t, int64(1), selected.ID)
}

func TestLoad_FailureEntersLoadFailedAndIsRetryable(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	backend.listErr = errors.New("503")
	o := New(backend, cartWithOneItem())

	require.Error(t, o.Load(context.Background()))
	assert.Equal(t, StateLoadFailed, o.State())

	backend.mu.Lock()
	backend.listErr = nil
	backend.mu.Unlock()
	require.NoError(t, o.Load(context.Background()))
	assert.Equal(t, StateReady, o.State())
}

func TestLoad_KeepsExistingSelectionWhenStillPresent(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"), addr(2, "Ravi"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))
	require.NoError(t, o.SelectAddress(2))

	require.NoError(t, o.Load(context.Background()))

	selected, ok := o.SelectedAddress()
	require.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)
}

func TestSelectAddress_UnknownID(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	assert.ErrorIs(t, o.SelectAddress(99), ErrUnknownAddress)
}

func TestSelectPayment(t *testing.T) {
	o := New(newFakeBackend(), cartWithOneItem())

	assert.Equal(t, domain.PaymentCOD, o.Payment(), "cash on delivery is the default")
	require.NoError(t, o.SelectPayment(domain.PaymentUPI))
	assert.Equal(t, domain.PaymentUPI, o.Payment())
	assert.ErrorIs(t, o.SelectPayment("cheque"), ErrInvalidPayment)
}

func TestSaveAddress_CreatesDraftAndReselectsByID(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	draft := domain.Address{Name: "Ravi", Street: "MG Road", Type: domain.AddressWork}
	require.NoError(t, o.SaveAddress(context.Background(), draft))

	addrs := o.Addresses()
	require.Len(t, addrs, 2)
	selected, ok := o.SelectedAddress()
	require.True(t, ok)
	assert.Equal(t, "Ravi", selected.Name)
	assert.Equal(t, int64(100), selected.ID, "selection must follow the server-assigned id")
}

func TestSaveAddress_UpdatesExisting(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"), addr(2, "Ravi"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	edited := addr(2, "Ravi Kumar")
	require.NoError(t, o.SaveAddress(context.Background(), edited))

	selected, ok := o.SelectedAddress()
	require.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)
	assert.Equal(t, "Ravi Kumar", selected.Name)
}

func TestDeleteAddress_FallsBackToFirstRemaining(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"), addr(2, "Ravi"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))
	require.NoError(t, o.SelectAddress(1))

	require.NoError(t, o.DeleteAddress(context.Background(), 1))

	selected, ok := o.SelectedAddress()
	require.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)
}

func TestDeleteAddress_LastOneLeavesNoSelection(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	require.NoError(t, o.DeleteAddress(context.Background(), 1))

	_, ok := o.SelectedAddress()
	assert.False(t, ok)
	assert.Empty(t, o.Addresses())
}

func TestSaveAddress_MutationsAreSerializedAndNoneLost(t *testing.T) {
	backend := newFakeBackend()
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	var wg sync.WaitGroup
	for _, name := range []string{"Asha", "Ravi", "Meera", "Office"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			assert.NoError(t, o.SaveAddress(context.Background(),
				domain.Address{Name: name, Type: domain.AddressHome}))
		}(name)
	}
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.overlap),
		"two address mutations were in flight concurrently")
	assert.Len(t, o.Addresses(), 4, "a concurrent save was lost")
}

func TestDeleteAddress_SerializedWithSaves(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, o.SaveAddress(context.Background(),
			domain.Address{Name: "Ravi", Type: domain.AddressWork}))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, o.DeleteAddress(context.Background(), 1))
	}()
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.overlap))
	addrs := o.Addresses()
	require.Len(t, addrs, 1)
	assert.Equal(t, "Ravi", addrs[0].Name)
}

func TestPlaceOrder_EmptyCartFailsBeforeAnyNetworkCall(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	cart := &fakeCart{}
	o := New(backend, cart)
	require.NoError(t, o.Load(context.Background()))

	_, err := o.PlaceOrder(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, backend.checkoutLog, "validation must run before the submission request")
	assert.Equal(t, StateReady, o.State())
}

func TestPlaceOrder_NoAddressSelected(t *testing.T) {
	backend := newFakeBackend() // empty address book
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	_, err := o.PlaceOrder(context.Background())

	assert.ErrorIs(t, err, ErrNoAddressSelected)
	assert.Empty(t, backend.checkoutLog)
}

func TestPlaceOrder_Succeeds(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	var states []State
	var mu sync.Mutex
	o.OnStateChange(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	orderID, err := o.PlaceOrder(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), orderID)
	assert.Equal(t, int64(42), o.OrderID())
	assert.Equal(t, StatePlaced, o.State())
	mu.Lock()
	assert.Equal(t, []State{StateSubmitting, StatePlaced}, states)
	mu.Unlock()
}

func TestPlaceOrder_CartEmptiedElsewhereIsCaughtByRefresh(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	cart := cartWithOneItem()
	cart.refreshFn = func(context.Context) error {
		// Another session cleared the cart; the refresh reveals it.
		cart.setItems(nil)
		return nil
	}
	o := New(backend, cart)
	require.NoError(t, o.Load(context.Background()))

	_, err := o.PlaceOrder(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, backend.checkoutLog)
	assert.Equal(t, StateReady, o.State())
}

func TestPlaceOrder_BackendFailureReturnsToReady(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	backend.checkoutFn = func(context.Context, int64, domain.PaymentMethod) (int64, error) {
		return 0, errors.New("502")
	}
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	_, err := o.PlaceOrder(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateReady, o.State(), "a failed submission must allow a retry")
}

func TestPlaceOrder_RetryReusesIdempotencyKey(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	fail := true
	backend.checkoutFn = func(context.Context, int64, domain.PaymentMethod) (int64, error) {
		if fail {
			return 0, errors.New("connection reset")
		}
		return 42, nil
	}
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	_, err := o.PlaceOrder(context.Background())
	require.Error(t, err)

	fail = false
	_, err = o.PlaceOrder(context.Background())
	require.NoError(t, err)

	require.Len(t, backend.checkoutKeys, 2)
	assert.NotEmpty(t, backend.checkoutKeys[0])
	assert.Equal(t, backend.checkoutKeys[0], backend.checkoutKeys[1],
		"a retry of the same submission must carry the same key so the backend can dedupe")
}

func TestPlaceOrder_NewOrderAfterSuccessGetsFreshKey(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	cart := cartWithOneItem()
	o := New(backend, cart)
	require.NoError(t, o.Load(context.Background()))

	_, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)

	// Next order: reload and submit again.
	require.NoError(t, o.Load(context.Background()))
	_, err = o.PlaceOrder(context.Background())
	require.NoError(t, err)

	require.Len(t, backend.checkoutKeys, 2)
	assert.NotEqual(t, backend.checkoutKeys[0], backend.checkoutKeys[1],
		"a new submission must not reuse the placed order's key")
}

func TestPlaceOrder_SecondSubmissionWhileInFlightIsRejected(t *testing.T) {
	backend := newFakeBackend(addr(1, "Asha"))
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.checkoutFn = func(context.Context, int64, domain.PaymentMethod) (int64, error) {
		close(entered)
		<-release
		return 42, nil
	}
	o := New(backend, cartWithOneItem())
	require.NoError(t, o.Load(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := o.PlaceOrder(context.Background())
		done <- err
	}()
	<-entered

	_, err := o.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first submission never completed")
	}
	assert.Len(t, backend.checkoutLog, 1)
}

func TestBreakdown_ReflectsCartContents(t *testing.T) {
	o := New(newFakeBackend(), cartWithOneItem())

	b := o.Breakdown()
	assert.Equal(t, "₹ 500.00", pricing.FormatINR(b.ItemsSubtotal))
	assert.True(t, b.GrandTotal.Equal(decimal.RequireFromString("510.00")),
		"500 subtotal + 0 delivery + 10 service fee")
}
