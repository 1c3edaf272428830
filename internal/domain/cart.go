package domain

import "time"

// LineItem is one product + quantity entry in a server-side cart. ItemID is
// the server-assigned cart item id, distinct from Product.ID; all mutations
// after the initial add are keyed by ItemID.
type LineItem struct {
	ItemID   int64     `json:"id"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// Cart is a set of line items keyed by ItemID. The client only ever holds a
// mirror of the server cart; a LineItem with quantity 0 does not exist.
type Cart []LineItem

func (c Cart) Find(itemID int64) (LineItem, bool) {
	for _, it := range c {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return LineItem{}, false
}

func (c Cart) TotalQuantity() int {
	n := 0
	for _, it := range c {
		n += it.Quantity
	}
	return n
}
