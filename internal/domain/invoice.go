package domain

import "time"

// InvoiceStatus enumerates payment states. Transitions are not exposed.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// InvoiceItem is a single billed line.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

// Invoice is a bill issued by FromUser to ToUser.
//
// Total is supplied by the issuer and is stored as given; it is never
// reconciled with Items.
type Invoice struct {
	ID            string
	InvoiceNumber string
	FromUser      Party
	ToUser        Party
	Client        string
	PONumber      *string
	Items         []InvoiceItem
	Shipping      float64
	Tax           float64
	GST           float64
	Total         float64
	DueDate       *time.Time
	Status        InvoiceStatus
	CreatedAt     time.Time
}

// Parties returns the user ids that may see the invoice.
func (i *Invoice) Parties() []string {
	return []string{i.FromUser.ID, i.ToUser.ID}
}

// ItemsSubtotal sums quantity*price over all items.
func (i *Invoice) ItemsSubtotal() float64 {
	var sum float64
	for _, item := range i.Items {
		sum += item.Quantity * item.Price
	}
	return sum
}
