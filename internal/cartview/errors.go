package cartview

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity rejects mutations with a quantity below 1. Dropping a
// line to zero must go through RemoveItem, never through an update.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ClearError reports a Clear that only partially succeeded. Failed lists
// the cart item ids that are still on the server.
type ClearError struct {
	Failed []int64
	Errs   []error
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("clear cart: %d item(s) could not be removed", len(e.Failed))
}

func (e *ClearError) Unwrap() error {
	if len(e.Errs) > 0 {
		return e.Errs[0]
	}
	return nil
}
