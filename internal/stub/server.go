package stub

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/KH-Co/Bari-Foods/internal/domain"
	"github.com/KH-Co/Bari-Foods/internal/pricing"
)

// Server wires the store behind the backend's REST surface.
type Server struct {
	store      *Store
	cfg        pricing.Config
	jwtKey     []byte
	paymentSeq int64
}

func NewServer(store *Store, cfg pricing.Config, jwtKey []byte) *Server {
	return &Server{store: store, cfg: cfg, jwtKey: jwtKey}
}

// Router builds the route table. Everything except the catalog and the
// user endpoints requires a bearer token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products/", s.handleListProducts)
		r.Get("/products/{id}/", s.handleGetProduct)
		r.Get("/featured-products/", s.handleFeatured)

		r.Post("/users/register/", s.handleRegister)
		r.Post("/users/login/", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/users/profile/", s.handleProfile)
			r.Put("/users/profile/", s.handleUpdateProfile)

			r.Get("/cart/", s.handleListCart)
			r.Post("/cart/", s.handleAddToCart)
			r.Put("/cart/{item_id}/", s.handleUpdateCartItem)
			r.Delete("/cart/{item_id}/", s.handleRemoveCartItem)

			r.Get("/addresses/", s.handleListAddresses)
			r.Post("/addresses/", s.handleCreateAddress)
			r.Put("/addresses/{id}/", s.handleUpdateAddress)
			r.Delete("/addresses/{id}/", s.handleDeleteAddress)

			r.Post("/checkout/", s.handleCheckout)
			s.paymentRoutes(r)

			r.Get("/orders/", s.handleListOrders)
			r.Get("/orders/latest/", s.handleLatestOrder)
			r.Get("/orders/{id}/", s.handleGetOrder)
		})
	})

	return r
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}

func urlID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// --- catalog ---

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.listProducts())
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	p, found := s.store.getProduct(id)
	if !found {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.listFeatured())
}

// --- users ---

type registerRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if err := s.store.register(req.Username, req.Email, req.Password, req.Phone); err != nil {
		respondError(w, http.StatusBadRequest, "A user with that username already exists.")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

type loginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	acc, ok := s.store.authenticate(req.Username, req.Password)
	if !ok {
		respondError(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	token, err := s.generateToken(acc.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not create token")
		return
	}
	respondJSON(w, http.StatusOK, domain.Session{
		Access:   token,
		Refresh:  token,
		Username: acc.Username,
		Email:    acc.Email,
		Mobile:   acc.Phone,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.store.profile(usernameFromContext(r.Context()))
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, domain.Profile{
		Username: acc.Username,
		Email:    acc.Email,
		Phone:    acc.Phone,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	acc, ok := s.store.updateProfile(usernameFromContext(r.Context()), req.Email, req.Phone)
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, domain.Profile{
		Username: acc.Username,
		Email:    acc.Email,
		Phone:    acc.Phone,
	})
}

// --- cart ---

func (s *Server) handleListCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.listCart(usernameFromContext(r.Context())))
}

type addToCartRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "product_id must be positive")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}
	if err := s.store.addToCart(usernameFromContext(r.Context()), req.ProductID, req.Quantity); err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Item added to cart"})
}

type updateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := urlID(r, "item_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}
	var req updateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}
	if err := s.store.updateCartItem(usernameFromContext(r.Context()), itemID, req.Quantity); err != nil {
		respondError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart updated"})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := urlID(r, "item_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}
	if err := s.store.removeCartItem(usernameFromContext(r.Context()), itemID); err != nil {
		respondError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- addresses ---

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.listAddresses(usernameFromContext(r.Context())))
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	saved := s.store.createAddress(usernameFromContext(r.Context()), addr)
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid address id")
		return
	}
	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	addr.ID = id
	saved, err := s.store.updateAddress(usernameFromContext(r.Context()), addr)
	if err != nil {
		respondError(w, http.StatusNotFound, "Address not found")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid address id")
		return
	}
	if err := s.store.deleteAddress(usernameFromContext(r.Context()), id); err != nil {
		respondError(w, http.StatusNotFound, "Address not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- checkout and orders ---

type checkoutRequestDTO struct {
	AddressID     int64                `json:"address_id"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())

	var req checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !req.PaymentMethod.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid payment method")
		return
	}
	if !s.store.hasAddress(username, req.AddressID) {
		respondError(w, http.StatusBadRequest, "Invalid address")
		return
	}

	items := s.store.listCart(username)
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	// The order total is priced the same way the client previews it.
	breakdown := pricing.Compute(items, s.cfg)
	orderID, err := s.store.checkout(username, r.Header.Get("X-Idempotency-Key"), breakdown.GrandTotal, req.PaymentMethod)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Order placed successfully",
		"order_id": orderID,
	})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.listOrders(usernameFromContext(r.Context())))
}

func (s *Server) handleLatestOrder(w http.ResponseWriter, r *http.Request) {
	orders := s.store.listOrders(usernameFromContext(r.Context()))
	if len(orders) == 0 {
		respondError(w, http.StatusNotFound, "No orders found")
		return
	}
	respondJSON(w, http.StatusOK, orders[0])
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order id")
		return
	}
	order, found := s.store.getOrder(usernameFromContext(r.Context()), id)
	if !found {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, order)
}
