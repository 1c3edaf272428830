package checkout

import "errors"

var (
	// ErrEmptyCart rejects a submission when the cart mirror has no items.
	// The check runs before any network call and again after the
	// pre-submission refresh.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNoAddressSelected rejects a submission without a delivery address.
	ErrNoAddressSelected = errors.New("no delivery address selected")

	// ErrNotReady rejects operations that require the Ready state, e.g. a
	// second PlaceOrder while one is already submitting.
	ErrNotReady = errors.New("checkout is not ready")

	// ErrUnknownAddress rejects selecting an address id that is not in the
	// current list.
	ErrUnknownAddress = errors.New("unknown address id")

	// ErrInvalidPayment rejects payment methods the backend does not accept.
	ErrInvalidPayment = errors.New("invalid payment method")
)
