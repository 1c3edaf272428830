package api

import (
	"context"
	"fmt"
	"net/http"
)

// PaymentIntent is the gateway order created ahead of an online payment.
// Amount is in paise, per the gateway contract.
type PaymentIntent struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Key       string `json:"key"`
	UserEmail string `json:"user_email"`
	UserPhone string `json:"user_phone"`
}

// PaymentProof is what the gateway hands the browser after a successful
// payment; the backend verifies the signature before creating the order.
type PaymentProof struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// CreatePayment asks the backend to open a gateway order for the current
// cart total.
func (c *Client) CreatePayment(ctx context.Context) (PaymentIntent, error) {
	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/api/payment/create/", nil, struct{}{}, &intent); err != nil {
		return PaymentIntent{}, fmt.Errorf("create payment: %w", err)
	}
	return intent, nil
}

// VerifyPayment submits the gateway proof; on success the backend creates
// the order and clears the cart, returning the new order id.
func (c *Client) VerifyPayment(ctx context.Context, proof PaymentProof) (int64, error) {
	var resp checkoutResponseDTO
	if err := c.do(ctx, http.MethodPost, "/api/payment/verify/", nil, proof, &resp); err != nil {
		return 0, fmt.Errorf("verify payment: %w", err)
	}
	return resp.OrderID, nil
}
