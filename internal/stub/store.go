// Package stub is an in-memory rendition of the storefront backend. It
// exists for development and end-to-end tests: the real backend owns the
// data, but the stub honours the same routes, payloads and error shapes so
// the client stack can be exercised without network access.
package stub

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

var (
	errNotFound      = errors.New("not found")
	errAlreadyExists = errors.New("already exists")
)

type account struct {
	Username string
	Email    string
	Password string
	Phone    string
}

// Store holds all backend state behind one lock. Every per-user collection
// is keyed by username, which is what the token carries.
type Store struct {
	mu sync.Mutex

	accounts  map[string]account
	products  []domain.Product
	featured  []domain.FeaturedProduct
	carts     map[string][]domain.LineItem
	addresses map[string][]domain.Address
	orders    map[string][]domain.Order

	// idempotency maps a checkout key to the order it created, so a retry
	// with the same key returns the same order instead of placing another.
	idempotency map[string]int64

	nextItemID  int64
	nextAddrID  int64
	nextOrderID int64
}

func NewStore() *Store {
	return &Store{
		accounts:    map[string]account{},
		carts:       map[string][]domain.LineItem{},
		addresses:   map[string][]domain.Address{},
		orders:      map[string][]domain.Order{},
		idempotency: map[string]int64{},
		nextItemID:  1,
		nextAddrID:  1,
		nextOrderID: 1,
	}
}

// SeedProducts installs the catalog the stub serves.
func (s *Store) SeedProducts(products []domain.Product, featured []domain.FeaturedProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.featured = featured
}

func (s *Store) register(username, email, password, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return errAlreadyExists
	}
	s.accounts[username] = account{Username: username, Email: email, Password: password, Phone: phone}
	return nil
}

func (s *Store) authenticate(username, password string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok || acc.Password != password {
		return account{}, false
	}
	return acc, true
}

func (s *Store) profile(username string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	return acc, ok
}

func (s *Store) updateProfile(username, email, phone string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		return account{}, false
	}
	if email != "" {
		acc.Email = email
	}
	if phone != "" {
		acc.Phone = phone
	}
	s.accounts[username] = acc
	return acc, true
}

func (s *Store) listProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) getProduct(id int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Store) listFeatured() []domain.FeaturedProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.FeaturedProduct, len(s.featured))
	copy(out, s.featured)
	return out
}

func (s *Store) listCart(username string) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LineItem, len(s.carts[username]))
	copy(out, s.carts[username])
	return out
}

// addToCart merges quantity into an existing line for the same product,
// matching how the real backend treats a repeated add.
func (s *Store) addToCart(username string, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var product domain.Product
	found := false
	for _, p := range s.products {
		if p.ID == productID {
			product, found = p, true
			break
		}
	}
	if !found {
		return errNotFound
	}

	items := s.carts[username]
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity += quantity
			s.carts[username] = items
			return nil
		}
	}
	s.carts[username] = append(items, domain.LineItem{
		ItemID:   s.nextItemID,
		Product:  product,
		Quantity: quantity,
		AddedAt:  time.Now(),
	})
	s.nextItemID++
	return nil
}

func (s *Store) updateCartItem(username string, itemID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[username]
	for i := range items {
		if items[i].ItemID == itemID {
			items[i].Quantity = quantity
			s.carts[username] = items
			return nil
		}
	}
	return errNotFound
}

func (s *Store) removeCartItem(username string, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[username]
	for i := range items {
		if items[i].ItemID == itemID {
			s.carts[username] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (s *Store) listAddresses(username string) []domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Address, len(s.addresses[username]))
	copy(out, s.addresses[username])
	return out
}

func (s *Store) createAddress(username string, addr domain.Address) domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr.ID = s.nextAddrID
	s.nextAddrID++
	s.addresses[username] = append(s.addresses[username], addr)
	return addr
}

func (s *Store) updateAddress(username string, addr domain.Address) (domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := s.addresses[username]
	for i := range addrs {
		if addrs[i].ID == addr.ID {
			addrs[i] = addr
			s.addresses[username] = addrs
			return addr, nil
		}
	}
	return domain.Address{}, errNotFound
}

func (s *Store) deleteAddress(username string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := s.addresses[username]
	for i := range addrs {
		if addrs[i].ID == id {
			s.addresses[username] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (s *Store) hasAddress(username string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.addresses[username] {
		if a.ID == id {
			return true
		}
	}
	return false
}

// checkout turns the user's cart into an order and clears the cart. The
// idempotency key dedupes retries: a key already seen returns the order it
// created the first time.
func (s *Store) checkout(username, idemKey string, total decimal.Decimal, method domain.PaymentMethod) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idemKey != "" {
		if orderID, ok := s.idempotency[idemKey]; ok {
			return orderID, nil
		}
	}

	items := s.carts[username]
	if len(items) == 0 {
		return 0, errNotFound
	}

	order := domain.Order{
		ID:            s.nextOrderID,
		TotalPrice:    total,
		Status:        domain.OrderStatusPending,
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	}
	for _, it := range items {
		order.Items = append(order.Items, domain.OrderItem{
			Product:         it.Product,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.Product.Price,
		})
	}
	s.nextOrderID++
	s.orders[username] = append([]domain.Order{order}, s.orders[username]...)
	s.carts[username] = nil
	if idemKey != "" {
		s.idempotency[idemKey] = order.ID
	}
	return order.ID, nil
}

// listOrders returns the user's orders newest first.
func (s *Store) listOrders(username string) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, len(s.orders[username]))
	copy(out, s.orders[username])
	return out
}

func (s *Store) getOrder(username string, id int64) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders[username] {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}
