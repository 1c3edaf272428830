package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/KH-Co/Bari-Foods/internal/domain"
	"github.com/KH-Co/Bari-Foods/internal/pricing"
)

// paymentRoutes mounts the gateway endpoints. The stub never talks to a
// real gateway; create hands back a fabricated gateway order and verify
// accepts any complete proof.
func (s *Server) paymentRoutes(r chi.Router) {
	r.Post("/payment/create/", s.handleCreatePayment)
	r.Post("/payment/verify/", s.handleVerifyPayment)
}

type paymentIntentDTO struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Key       string `json:"key"`
	UserEmail string `json:"user_email"`
	UserPhone string `json:"user_phone"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())

	items := s.store.listCart(username)
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	acc, _ := s.store.profile(username)

	// Gateways take the amount in paise.
	breakdown := pricing.Compute(items, s.cfg)
	paise := breakdown.GrandTotal.Mul(decimal.NewFromInt(100)).IntPart()

	respondJSON(w, http.StatusOK, paymentIntentDTO{
		OrderID:   fmt.Sprintf("order_stub_%d", atomic.AddInt64(&s.paymentSeq, 1)),
		Amount:    paise,
		Key:       "rzp_test_stub",
		UserEmail: acc.Email,
		UserPhone: acc.Phone,
	})
}

type paymentProofDTO struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())

	var proof paymentProofDTO
	if err := json.NewDecoder(r.Body).Decode(&proof); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if proof.RazorpayOrderID == "" || proof.RazorpayPaymentID == "" || proof.RazorpaySignature == "" {
		respondError(w, http.StatusBadRequest, "Payment verification failed")
		return
	}

	items := s.store.listCart(username)
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	breakdown := pricing.Compute(items, s.cfg)
	orderID, err := s.store.checkout(username, proof.RazorpayPaymentID, breakdown.GrandTotal, domain.PaymentCard)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Order placed successfully",
		"order_id": orderID,
	})
}
