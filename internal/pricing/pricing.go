// Package pricing derives the order summary from a set of cart line items.
// It is the single place where the delivery fee, service fee and grand
// total rules live; every screen that shows money goes through Compute.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

// Config carries the fee rules. All amounts are in rupees.
type Config struct {
	FreeShipThreshold decimal.Decimal
	BaseDeliveryFee   decimal.Decimal
	ServiceFeeRate    decimal.Decimal
}

// DefaultConfig returns the storefront's standard fee rules.
func DefaultConfig() Config {
	return Config{
		FreeShipThreshold: decimal.RequireFromString("499.00"),
		BaseDeliveryFee:   decimal.RequireFromString("30.00"),
		ServiceFeeRate:    decimal.RequireFromString("0.02"),
	}
}

// Breakdown is the priced view of a cart. All fields are rounded to two
// decimal places. FreeShipGap is valid only while the cart is non-empty and
// below the free-shipping threshold; it feeds the nudge banner and nothing
// else.
type Breakdown struct {
	ItemsSubtotal decimal.Decimal
	DeliveryFee   decimal.Decimal
	ServiceFee    decimal.Decimal
	GrandTotal    decimal.Decimal
	FreeShipGap   decimal.NullDecimal
}

// Compute prices the given line items. Quantities must be >= 1 and unit
// prices non-negative; callers validate before constructing line items.
//
// The subtotal is accumulated at full precision and only rounded where a
// fee is derived or a total is produced, so three items at 33.33 sum to
// 99.99 rather than drifting through per-line rounding. A subtotal exactly
// at the threshold ships free (>=, not >). The grand total is clamped at
// zero so a future discount can never surface a negative amount.
func Compute(items []domain.LineItem, cfg Config) Breakdown {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	belowThreshold := subtotal.IsPositive() && subtotal.LessThan(cfg.FreeShipThreshold)

	delivery := decimal.Zero
	if belowThreshold {
		delivery = cfg.BaseDeliveryFee
	}

	service := subtotal.Mul(cfg.ServiceFeeRate).Round(2)

	grand := subtotal.Round(2).Add(delivery).Add(service)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	var gap decimal.NullDecimal
	if belowThreshold {
		gap = decimal.NullDecimal{
			Decimal: cfg.FreeShipThreshold.Sub(subtotal).Round(2),
			Valid:   true,
		}
	}

	return Breakdown{
		ItemsSubtotal: subtotal.Round(2),
		DeliveryFee:   delivery.Round(2),
		ServiceFee:    service,
		GrandTotal:    grand,
		FreeShipGap:   gap,
	}
}

// FormatINR renders an amount the way the storefront displays money.
func FormatINR(d decimal.Decimal) string {
	return "₹ " + d.StringFixed(2)
}
