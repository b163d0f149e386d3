package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/events"
	"github.com/spec-kit/invoice-service/internal/policy"
	"github.com/spec-kit/invoice-service/internal/repository"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

// PurchaseOrderService coordinates purchase order workflows.
type PurchaseOrderService struct {
	orders     repository.PurchaseOrderRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PurchaseOrderDependencies bundles collaborators.
type PurchaseOrderDependencies struct {
	PurchaseOrderRepo repository.PurchaseOrderRepository
	UserRepo          repository.UserRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// ProductInput is one requested product line.
type ProductInput struct {
	Description string
	Quantity    *float64
}

// PurchaseOrderCreateInput describes creation payload. The creator is always the caller.
type PurchaseOrderCreateInput struct {
	PONumber string
	VendorID string
	Products []ProductInput
}

// PurchaseOrderListFilter describes listing options.
type PurchaseOrderListFilter struct {
	Statuses []domain.PurchaseOrderStatus
	Limit    int
	Offset   int
}

// NewPurchaseOrderService constructs the service.
func NewPurchaseOrderService(deps PurchaseOrderDependencies) *PurchaseOrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orders:     deps.PurchaseOrderRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create validates and stores a purchase order raised by caller.
func (s *PurchaseOrderService) Create(ctx context.Context, caller domain.Identity, input PurchaseOrderCreateInput) (*domain.PurchaseOrder, error) {
	if err := policy.Authorize(caller, policy.OpCreate, nil); err != nil {
		return nil, err
	}

	products, err := validatePurchaseOrderInput(input)
	if err != nil {
		return nil, err
	}

	vendorID := strings.TrimSpace(input.VendorID)
	if _, err := uuid.Parse(vendorID); err != nil {
		return nil, apperrors.NewValidationError("unknown user", map[string]any{"vendorId": input.VendorID})
	}
	vendor, err := s.users.GetByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("unknown user", map[string]any{"vendorId": input.VendorID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	creator, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("unknown caller")
		}
		return nil, apperrors.NewInternalError(err)
	}

	po := &domain.PurchaseOrder{
		PONumber:  strings.TrimSpace(input.PONumber),
		CreatedBy: domain.PartyOf(creator),
		Vendor:    domain.PartyOf(vendor),
		Products:  products,
		Status:    domain.PurchaseOrderStatusPending,
	}
	if err := s.orders.Create(ctx, po); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.NewDuplicateKey("poNumber", po.PONumber)
		}
		return nil, apperrors.NewInternalError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventPurchaseOrderCreated,
		RecordID: po.ID,
		ActorID:  caller.ID,
		Payload: events.PurchaseOrderCreatedPayload{
			PONumber:     po.PONumber,
			VendorID:     po.Vendor.ID,
			VendorEmail:  po.Vendor.Email,
			ProductCount: len(po.Products),
		},
	})
	return po, nil
}

// List returns the purchase orders visible to caller, newest first.
func (s *PurchaseOrderService) List(ctx context.Context, caller domain.Identity, filter PurchaseOrderListFilter) ([]domain.PurchaseOrder, error) {
	if err := policy.Authorize(caller, policy.OpList, nil); err != nil {
		return nil, err
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(st)})
		}
	}
	orders, err := s.orders.List(ctx, repository.PurchaseOrderFilter{
		PartyID:  policy.VisibilityFilter(caller),
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return orders, nil
}

// Get fetches a single purchase order the caller may view.
func (s *PurchaseOrderService) Get(ctx context.Context, caller domain.Identity, id string) (*domain.PurchaseOrder, error) {
	if !requireCaller(caller.ID) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("purchase order", map[string]any{"id": id})
	}
	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("purchase order", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := policy.Authorize(caller, policy.OpView, po); err != nil {
		return nil, err
	}
	return po, nil
}

func validatePurchaseOrderInput(input PurchaseOrderCreateInput) ([]domain.PurchaseOrderProduct, error) {
	var missing []string
	if strings.TrimSpace(input.PONumber) == "" {
		missing = append(missing, "poNumber")
	}
	if strings.TrimSpace(input.VendorID) == "" {
		missing = append(missing, "vendorId")
	}
	if len(input.Products) == 0 {
		missing = append(missing, "products")
	}

	products := make([]domain.PurchaseOrderProduct, 0, len(input.Products))
	for i, p := range input.Products {
		prefix := fmt.Sprintf("products[%d].", i)
		if strings.TrimSpace(p.Description) == "" {
			missing = append(missing, prefix+"description")
		}
		if p.Quantity == nil {
			missing = append(missing, prefix+"quantity")
			continue
		}
		products = append(products, domain.PurchaseOrderProduct{
			Description: strings.TrimSpace(p.Description),
			Quantity:    *p.Quantity,
		})
	}

	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	return products, nil
}
