package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/service"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

// InvoiceItemRequest is one line of a create request.
type InvoiceItemRequest struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Price       *float64 `json:"price"`
}

// CreateInvoiceRequest payload. The sender is taken from the token, never the body.
type CreateInvoiceRequest struct {
	ToUserID string               `json:"toUserId"`
	Client   string               `json:"client"`
	PONumber *string              `json:"poNumber"`
	Items    []InvoiceItemRequest `json:"items"`
	Shipping *float64             `json:"shipping"`
	Tax      *float64             `json:"tax"`
	GST      *float64             `json:"gst"`
	Total    *float64             `json:"total"`
	DueDate  *string              `json:"dueDate"`
}

// ToInput converts the request into service input, parsing the due date.
func (r CreateInvoiceRequest) ToInput() (service.InvoiceCreateInput, error) {
	due, err := ParseDate(r.DueDate)
	if err != nil {
		return service.InvoiceCreateInput{}, err
	}
	items := make([]service.InvoiceItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, service.InvoiceItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return service.InvoiceCreateInput{
		ToUserID: r.ToUserID,
		Client:   r.Client,
		PONumber: r.PONumber,
		Items:    items,
		Shipping: r.Shipping,
		Tax:      r.Tax,
		GST:      r.GST,
		Total:    r.Total,
		DueDate:  due,
	}, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. Nil or blank means unset.
func ParseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid dueDate", map[string]any{"dueDate": v})
	}
	t = t.UTC()
	return &t, nil
}

// InvoiceResponse is the public invoice representation.
type InvoiceResponse struct {
	ID            string               `json:"id"`
	InvoiceNumber string               `json:"invoiceNumber"`
	FromUser      domain.Party         `json:"fromUser"`
	ToUser        domain.Party         `json:"toUser"`
	Client        string               `json:"client"`
	PONumber      *string              `json:"poNumber"`
	Items         []domain.InvoiceItem `json:"items"`
	Shipping      float64              `json:"shipping"`
	Tax           float64              `json:"tax"`
	GST           float64              `json:"gst"`
	Total         float64              `json:"total"`
	DueDate       *string              `json:"dueDate"`
	Status        domain.InvoiceStatus `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// CreateInvoiceResponse wraps a created invoice with non-blocking warnings.
type CreateInvoiceResponse struct {
	Data     InvoiceResponse `json:"data"`
	Warnings []string        `json:"warnings,omitempty"`
}

// NewInvoiceResponse maps a domain invoice.
func NewInvoiceResponse(inv domain.Invoice) InvoiceResponse {
	var due *string
	if inv.DueDate != nil {
		s := inv.DueDate.Format(dateLayout)
		due = &s
	}
	items := inv.Items
	if items == nil {
		items = []domain.InvoiceItem{}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		FromUser:      inv.FromUser,
		ToUser:        inv.ToUser,
		Client:        inv.Client,
		PONumber:      inv.PONumber,
		Items:         items,
		Shipping:      inv.Shipping,
		Tax:           inv.Tax,
		GST:           inv.GST,
		Total:         inv.Total,
		DueDate:       due,
		Status:        inv.Status,
		CreatedAt:     inv.CreatedAt,
	}
}

// NewInvoiceListResponse maps a slice, never returning nil.
func NewInvoiceListResponse(list []domain.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, NewInvoiceResponse(inv))
	}
	return out
}
