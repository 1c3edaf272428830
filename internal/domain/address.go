package domain

type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

// Address is a delivery address. ID is zero for a draft that has not been
// persisted yet; the server assigns the id on create. Ids are the only
// stable handle across list refetches.
type Address struct {
	ID      int64       `json:"id,omitempty"`
	Name    string      `json:"name"`
	Phone   string      `json:"phone"`
	Street  string      `json:"street"`
	City    string      `json:"city"`
	State   string      `json:"state"`
	Pincode string      `json:"pincode"`
	Note    string      `json:"note,omitempty"`
	Type    AddressType `json:"type"`
}

// IsDraft reports whether the address has not been saved to the server yet.
func (a Address) IsDraft() bool {
	return a.ID == 0
}
