package dto

import (
	"time"

	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/service"
)

// ProductRequest is one product line.
type ProductRequest struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
}

// CreatePurchaseOrderRequest payload. The creator is taken from the token.
type CreatePurchaseOrderRequest struct {
	PONumber string           `json:"poNumber"`
	VendorID string           `json:"vendorId"`
	Products []ProductRequest `json:"products"`
}

// ToInput converts to service input.
func (r CreatePurchaseOrderRequest) ToInput() service.PurchaseOrderCreateInput {
	products := make([]service.ProductInput, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, service.ProductInput{Description: p.Description, Quantity: p.Quantity})
	}
	return service.PurchaseOrderCreateInput{
		PONumber: r.PONumber,
		VendorID: r.VendorID,
		Products: products,
	}
}

// PurchaseOrderResponse is the public representation.
type PurchaseOrderResponse struct {
	ID        string                        `json:"id"`
	PONumber  string                        `json:"poNumber"`
	CreatedBy domain.Party                  `json:"createdBy"`
	Vendor    domain.Party                  `json:"vendor"`
	Products  []domain.PurchaseOrderProduct `json:"products"`
	Status    domain.PurchaseOrderStatus    `json:"status"`
	CreatedAt time.Time                     `json:"createdAt"`
}

// NewPurchaseOrderResponse maps a domain purchase order.
func NewPurchaseOrderResponse(po domain.PurchaseOrder) PurchaseOrderResponse {
	products := po.Products
	if products == nil {
		products = []domain.PurchaseOrderProduct{}
	}
	return PurchaseOrderResponse{
		ID:        po.ID,
		PONumber:  po.PONumber,
		CreatedBy: po.CreatedBy,
		Vendor:    po.Vendor,
		Products:  products,
		Status:    po.Status,
		CreatedAt: po.CreatedAt,
	}
}

// NewPurchaseOrderListResponse maps a slice.
func NewPurchaseOrderListResponse(list []domain.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		out = append(out, NewPurchaseOrderResponse(po))
	}
	return out
}
