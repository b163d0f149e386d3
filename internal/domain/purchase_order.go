package domain

import "time"

// PurchaseOrderStatus enumerates fulfilment states. Transitions are not exposed.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusFulfilled PurchaseOrderStatus = "fulfilled"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// Valid reports whether s is a known purchase order status.
func (s PurchaseOrderStatus) Valid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusFulfilled, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrderProduct is a requested line on a purchase order.
type PurchaseOrderProduct struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
}

// PurchaseOrder is an order placed by CreatedBy with Vendor.
type PurchaseOrder struct {
	ID        string
	PONumber  string
	CreatedBy Party
	Vendor    Party
	Products  []PurchaseOrderProduct
	Status    PurchaseOrderStatus
	CreatedAt time.Time
}

// Parties returns the user ids that may see the purchase order.
func (p *PurchaseOrder) Parties() []string {
	return []string{p.CreatedBy.ID, p.Vendor.ID}
}
