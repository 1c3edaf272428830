// Package cartview keeps a client-side mirror of the server-owned cart and
// funnels every mutation through the backend. The server stays
// authoritative: after any successful mutation the mirror is rebuilt from a
// full refetch rather than patched optimistically, because the product id
// the UI holds is not the cart item id the server assigns.
package cartview

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/KH-Co/Bari-Foods/internal/domain"
	"github.com/KH-Co/Bari-Foods/internal/pricing"
)

// CartAPI is the slice of the backend client the view model needs.
type CartAPI interface {
	ListCart(ctx context.Context) ([]domain.LineItem, error)
	AddCartItem(ctx context.Context, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, itemID int64) error
}

const refreshKey = "refresh"

// ViewModel owns the cart mirror. All methods are safe for concurrent use;
// mutating calls against the same view model are serialized so a second
// update is never in flight before the first (and its trailing refresh)
// completed.
type ViewModel struct {
	api CartAPI
	cfg pricing.Config

	// mutmu serializes AddItem/UpdateQuantity/RemoveItem/Clear.
	mutmu sync.Mutex

	// sfg deduplicates concurrent refreshes: a caller issuing a refresh
	// while one is in flight awaits the in-flight result.
	sfg singleflight.Group

	mu       sync.RWMutex
	mirror   domain.Cart
	issued   uint64 // refresh issue counter
	applied  uint64 // issue number currently reflected in the mirror
	onChange func(domain.Cart)
}

func New(api CartAPI, cfg pricing.Config) *ViewModel {
	return &ViewModel{api: api, cfg: cfg}
}

// OnChange registers a callback fired after every successful mirror
// replacement. The callback receives a copy and runs outside any lock.
func (vm *ViewModel) OnChange(fn func(domain.Cart)) {
	vm.mu.Lock()
	vm.onChange = fn
	vm.mu.Unlock()
}

// Refresh replaces the whole mirror from the server. A failed fetch leaves
// the previous mirror untouched. Responses are applied in issue order: if
// a slow refresh resolves after a newer one already landed, its result is
// silently discarded instead of overwriting fresher data.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	vm.issued++
	gen := vm.issued
	vm.mu.Unlock()

	v, err, _ := vm.sfg.Do(refreshKey, func() (any, error) {
		return vm.api.ListCart(ctx)
	})
	if err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}

	items := v.([]domain.LineItem)

	vm.mu.Lock()
	if gen <= vm.applied {
		// A newer refresh already replaced the mirror.
		vm.mu.Unlock()
		return nil
	}
	vm.applied = gen
	vm.mirror = cloneItems(items)
	fn := vm.onChange
	snapshot := cloneItems(vm.mirror)
	vm.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return nil
}

// AddItem adds quantity of a product and refetches the cart.
func (vm *ViewModel) AddItem(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	vm.mutmu.Lock()
	defer vm.mutmu.Unlock()

	if err := vm.api.AddCartItem(ctx, productID, quantity); err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	return vm.refreshAfterMutation(ctx)
}

// UpdateQuantity sets an existing line item's quantity. Quantities below 1
// are rejected; removal is a distinct operation.
func (vm *ViewModel) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	vm.mutmu.Lock()
	defer vm.mutmu.Unlock()

	if err := vm.api.UpdateCartItem(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return vm.refreshAfterMutation(ctx)
}

// RemoveItem deletes a line item and refetches the cart.
func (vm *ViewModel) RemoveItem(ctx context.Context, itemID int64) error {
	vm.mutmu.Lock()
	defer vm.mutmu.Unlock()

	if err := vm.api.RemoveCartItem(ctx, itemID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return vm.refreshAfterMutation(ctx)
}

// Clear removes every current line item one by one; there is no bulk
// endpoint. A removal failing partway through does not abort the rest: the
// returned ClearError lists the ids that survived.
func (vm *ViewModel) Clear(ctx context.Context) error {
	vm.mutmu.Lock()
	defer vm.mutmu.Unlock()

	var clearErr ClearError
	for _, it := range vm.Snapshot() {
		if err := vm.api.RemoveCartItem(ctx, it.ItemID); err != nil {
			clearErr.Failed = append(clearErr.Failed, it.ItemID)
			clearErr.Errs = append(clearErr.Errs, err)
		}
	}

	if err := vm.refreshAfterMutation(ctx); err != nil {
		return err
	}
	if len(clearErr.Failed) > 0 {
		return &clearErr
	}
	return nil
}

// refreshAfterMutation runs the trailing refresh of a mutating call. The
// flight key is forgotten first: a refresh that started before the
// mutation must not satisfy this one, or the mirror would show
// pre-mutation data.
func (vm *ViewModel) refreshAfterMutation(ctx context.Context) error {
	vm.sfg.Forget(refreshKey)
	return vm.Refresh(ctx)
}

// Snapshot returns a copy of the mirror.
func (vm *ViewModel) Snapshot() domain.Cart {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return cloneItems(vm.mirror)
}

// Breakdown prices the current mirror.
func (vm *ViewModel) Breakdown() pricing.Breakdown {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return pricing.Compute(vm.mirror, vm.cfg)
}

func cloneItems(items []domain.LineItem) domain.Cart {
	out := make(domain.Cart, len(items))
	copy(out, items)
	return out
}
