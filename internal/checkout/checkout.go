// Package checkout drives the order-placement flow: loading the cart and
// address book, picking a delivery address and payment method, and
// submitting the order. The flow is a small state machine so the UI can
// render from the state alone.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KH-Co/Bari-Foods/internal/domain"
	"github.com/KH-Co/Bari-Foods/internal/pricing"
)

// State is where the checkout flow currently is.
type State string

const (
	// StateLoading: the initial cart and address fetches are in flight.
	StateLoading State = "loading"
	// StateLoadFailed: the initial load failed; Load may be retried.
	StateLoadFailed State = "load_failed"
	// StateReady: everything is loaded and the order can be edited or placed.
	StateReady State = "ready"
	// StateSubmitting: the order submission is in flight.
	StateSubmitting State = "submitting"
	// StatePlaced: the order was accepted; OrderID identifies it.
	StatePlaced State = "placed"
)

// API is the slice of the backend client the orchestrator needs.
type API interface {
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	CreateAddress(ctx context.Context, addr domain.Address) (domain.Address, error)
	UpdateAddress(ctx context.Context, addr domain.Address) (domain.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
	Checkout(ctx context.Context, addressID int64, method domain.PaymentMethod, idempotencyKey string) (int64, error)
}

// Cart is the view-model surface the orchestrator reads from. The
// orchestrator never mutates cart contents itself.
type Cart interface {
	Refresh(ctx context.Context) error
	Snapshot() domain.Cart
	Breakdown() pricing.Breakdown
}

// Orchestrator owns the checkout flow for one session. All methods are
// safe for concurrent use; only one submission can be in flight at a time.
type Orchestrator struct {
	api  API
	cart Cart

	// mutmu serializes SaveAddress/DeleteAddress: a mutation and its
	// trailing refetch complete before the next mutation starts, so the
	// list never reflects refetches landing out of order.
	mutmu sync.Mutex

	mu        sync.Mutex
	state     State
	addresses []domain.Address
	selected  int64 // address id, 0 = none
	payment   domain.PaymentMethod
	orderID   int64
	submitKey string // idempotency key for the in-progress submission
	onState   func(State)
}

func New(api API, cart Cart) *Orchestrator {
	return &Orchestrator{
		api:     api,
		cart:    cart,
		state:   StateLoading,
		payment: domain.PaymentCOD,
	}
}

// OnStateChange registers a callback fired after every state transition.
// The callback runs outside the orchestrator's lock.
func (o *Orchestrator) OnStateChange(fn func(State)) {
	o.mu.Lock()
	o.onState = fn
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	fn := o.onState
	o.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// State returns the current flow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Load fetches the cart and the address book concurrently. If no address
// is selected yet, the first saved address becomes the selection. Load may
// be called again after a failure or to re-enter checkout after an order
// was placed.
func (o *Orchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return ErrNotReady
	}
	o.state = StateLoading
	o.orderID = 0
	// A reload starts a new logical submission. If the previous one did
	// land server-side, the refreshed cart comes back empty and PlaceOrder
	// rejects it before any request is made.
	o.submitKey = ""
	fn := o.onState
	o.mu.Unlock()
	if fn != nil {
		fn(StateLoading)
	}

	var addrs []domain.Address
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.cart.Refresh(gctx)
	})
	g.Go(func() error {
		var err error
		addrs, err = o.api.ListAddresses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		o.setState(StateLoadFailed)
		return fmt.Errorf("load checkout: %w", err)
	}

	o.mu.Lock()
	o.addresses = addrs
	if o.findAddress(o.selected) == nil {
		o.selected = 0
		if len(addrs) > 0 {
			o.selected = addrs[0].ID
		}
	}
	o.state = StateReady
	fn = o.onState
	o.mu.Unlock()
	if fn != nil {
		fn(StateReady)
	}
	return nil
}

// findAddress returns the address with the given id, or nil. Callers hold o.mu.
func (o *Orchestrator) findAddress(id int64) *domain.Address {
	if id == 0 {
		return nil
	}
	for i := range o.addresses {
		if o.addresses[i].ID == id {
			return &o.addresses[i]
		}
	}
	return nil
}

// Addresses returns a copy of the current address book.
func (o *Orchestrator) Addresses() []domain.Address {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.Address, len(o.addresses))
	copy(out, o.addresses)
	return out
}

// SelectedAddress returns the currently selected address and whether one
// is selected.
func (o *Orchestrator) SelectedAddress() (domain.Address, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if a := o.findAddress(o.selected); a != nil {
		return *a, true
	}
	return domain.Address{}, false
}

// SelectAddress picks a delivery address out of the loaded list.
func (o *Orchestrator) SelectAddress(id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.findAddress(id) == nil {
		return fmt.Errorf("select address %d: %w", id, ErrUnknownAddress)
	}
	o.selected = id
	return nil
}

// SelectPayment picks the payment method for the upcoming order.
func (o *Orchestrator) SelectPayment(m domain.PaymentMethod) error {
	if !m.Valid() {
		return fmt.Errorf("select payment %q: %w", m, ErrInvalidPayment)
	}
	o.mu.Lock()
	o.payment = m
	o.mu.Unlock()
	return nil
}

// Payment returns the currently selected payment method.
func (o *Orchestrator) Payment() domain.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.payment
}

// SaveAddress creates a draft address or updates a saved one, then
// refetches the address book so the local list matches the server. The
// saved address becomes the selection; it is re-identified in the fresh
// list by the id the server returned, never by position.
func (o *Orchestrator) SaveAddress(ctx context.Context, addr domain.Address) error {
	if o.State() == StateSubmitting {
		return ErrNotReady
	}

	o.mutmu.Lock()
	defer o.mutmu.Unlock()

	var (
		saved domain.Address
		err   error
	)
	if addr.IsDraft() {
		saved, err = o.api.CreateAddress(ctx, addr)
	} else {
		saved, err = o.api.UpdateAddress(ctx, addr)
	}
	if err != nil {
		return fmt.Errorf("save address: %w", err)
	}

	addrs, err := o.api.ListAddresses(ctx)
	if err != nil {
		return fmt.Errorf("save address: refetch: %w", err)
	}

	o.mu.Lock()
	o.addresses = addrs
	o.selected = saved.ID
	o.mu.Unlock()
	return nil
}

// DeleteAddress removes an address and refetches the book. If the deleted
// address was selected, selection falls back to the first remaining
// address, or to none.
func (o *Orchestrator) DeleteAddress(ctx context.Context, id int64) error {
	if o.State() == StateSubmitting {
		return ErrNotReady
	}

	o.mutmu.Lock()
	defer o.mutmu.Unlock()

	if err := o.api.DeleteAddress(ctx, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	addrs, err := o.api.ListAddresses(ctx)
	if err != nil {
		return fmt.Errorf("delete address: refetch: %w", err)
	}

	o.mu.Lock()
	o.addresses = addrs
	if o.findAddress(o.selected) == nil {
		o.selected = 0
		if len(addrs) > 0 {
			o.selected = addrs[0].ID
		}
	}
	o.mu.Unlock()
	return nil
}

// Breakdown prices the current cart mirror.
func (o *Orchestrator) Breakdown() pricing.Breakdown {
	return o.cart.Breakdown()
}

// OrderID returns the id of the placed order; it is only meaningful in
// StatePlaced.
func (o *Orchestrator) OrderID() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderID
}

// PlaceOrder validates and submits the order. Validation that needs no
// network runs first: an empty mirror or a missing address selection fails
// without touching the backend. The cart is then refreshed once more so a
// cart emptied from another session is caught before the server sees the
// submission.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (int64, error) {
	if len(o.cart.Snapshot()) == 0 {
		return 0, ErrEmptyCart
	}

	o.mu.Lock()
	if o.state != StateReady {
		o.mu.Unlock()
		return 0, ErrNotReady
	}
	if o.findAddress(o.selected) == nil {
		o.mu.Unlock()
		return 0, ErrNoAddressSelected
	}
	addressID := o.selected
	method := o.payment
	// One key per logical submission: a retry after a failed attempt
	// reuses it, so the backend can dedupe if the first attempt actually
	// landed. A fresh key is only issued once an order was placed.
	if o.submitKey == "" {
		o.submitKey = uuid.NewString()
	}
	submitKey := o.submitKey
	o.state = StateSubmitting
	fn := o.onState
	o.mu.Unlock()
	if fn != nil {
		fn(StateSubmitting)
	}

	if err := o.cart.Refresh(ctx); err != nil {
		o.setState(StateReady)
		return 0, fmt.Errorf("place order: refresh cart: %w", err)
	}
	if len(o.cart.Snapshot()) == 0 {
		o.setState(StateReady)
		return 0, ErrEmptyCart
	}

	orderID, err := o.api.Checkout(ctx, addressID, method, submitKey)
	if err != nil {
		o.setState(StateReady)
		return 0, fmt.Errorf("place order: %w", err)
	}

	o.mu.Lock()
	o.orderID = orderID
	o.submitKey = ""
	o.state = StatePlaced
	fn = o.onState
	o.mu.Unlock()
	if fn != nil {
		fn(StatePlaced)
	}
	return orderID, nil
}
