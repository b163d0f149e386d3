package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/events"
	"github.com/spec-kit/invoice-service/internal/policy"
	"github.com/spec-kit/invoice-service/internal/repository"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

const totalTolerance = 1e-9

// InvoiceService coordinates invoice workflows.
type InvoiceService struct {
	invoices   repository.InvoiceRepository
	orders     repository.PurchaseOrderRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// InvoiceDependencies bundles collaborators for the invoice service.
type InvoiceDependencies struct {
	InvoiceRepo       repository.InvoiceRepository
	PurchaseOrderRepo repository.PurchaseOrderRepository
	UserRepo          repository.UserRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// InvoiceItemInput is one requested line. Pointer fields distinguish missing from zero.
type InvoiceItemInput struct {
	Description string
	Quantity    *float64
	Price       *float64
}

// InvoiceCreateInput describes invoice creation payload. The sender is always the caller.
type InvoiceCreateInput struct {
	ToUserID string
	Client   string
	PONumber *string
	Items    []InvoiceItemInput
	Shipping *float64
	Tax      *float64
	GST      *float64
	Total    *float64
	DueDate  *time.Time
}

// InvoiceListFilter describes listing options.
type InvoiceListFilter struct {
	Statuses []domain.InvoiceStatus
	Limit    int
	Offset   int
}

// NewInvoiceService constructs the service.
func NewInvoiceService(deps InvoiceDependencies) *InvoiceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoices:   deps.InvoiceRepo,
		orders:     deps.PurchaseOrderRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create validates and stores an invoice sent by caller. The returned warnings
// describe consistency issues that do not block the write.
func (s *InvoiceService) Create(ctx context.Context, caller domain.Identity, input InvoiceCreateInput) (*domain.Invoice, []string, error) {
	if err := policy.Authorize(caller, policy.OpCreate, nil); err != nil {
		return nil, nil, err
	}

	items, err := validateInvoiceInput(input)
	if err != nil {
		return nil, nil, err
	}

	recipient, err := s.resolveUser(ctx, input.ToUserID, "toUserId")
	if err != nil {
		return nil, nil, err
	}
	sender, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorized("unknown caller")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	invoice := &domain.Invoice{
		InvoiceNumber: generateInvoiceNumber(s.now()),
		FromUser:      domain.PartyOf(sender),
		ToUser:        domain.PartyOf(recipient),
		Client:        strings.TrimSpace(input.Client),
		PONumber:      normalizeOptional(input.PONumber),
		Items:         items,
		Shipping:      valueOrZero(input.Shipping),
		Tax:           valueOrZero(input.Tax),
		GST:           valueOrZero(input.GST),
		Total:         *input.Total,
		DueDate:       input.DueDate,
		Status:        domain.InvoiceStatusUnpaid,
	}

	warnings := s.consistencyWarnings(ctx, invoice)

	if err := s.invoices.Create(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, nil, apperrors.NewDuplicateKey("invoiceNumber", invoice.InvoiceNumber)
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	for _, w := range warnings {
		s.logger.Warn("invoice consistency",
			zap.String("invoice_id", invoice.ID),
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("warning", w))
	}

	payload := events.InvoiceCreatedPayload{
		InvoiceNumber:  invoice.InvoiceNumber,
		RecipientID:    invoice.ToUser.ID,
		RecipientEmail: invoice.ToUser.Email,
		Total:          invoice.Total,
	}
	if invoice.PONumber != nil {
		payload.PONumber = *invoice.PONumber
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventInvoiceCreated,
		RecordID: invoice.ID,
		ActorID:  caller.ID,
		Payload:  payload,
	})

	return invoice, warnings, nil
}

// List returns the invoices visible to caller, newest first.
func (s *InvoiceService) List(ctx context.Context, caller domain.Identity, filter InvoiceListFilter) ([]domain.Invoice, error) {
	if err := policy.Authorize(caller, policy.OpList, nil); err != nil {
		return nil, err
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(st)})
		}
	}

	invoices, err := s.invoices.List(ctx, repository.InvoiceFilter{
		PartyID:  policy.VisibilityFilter(caller),
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return invoices, nil
}

// Get fetches a single invoice the caller may view.
func (s *InvoiceService) Get(ctx context.Context, caller domain.Identity, id string) (*domain.Invoice, error) {
	return s.fetchAuthorized(ctx, caller, policy.OpView, id)
}

// GetForRender fetches an invoice the caller may render. Existence is checked
// before permission so unknown ids report not found.
func (s *InvoiceService) GetForRender(ctx context.Context, caller domain.Identity, id string) (*domain.Invoice, error) {
	return s.fetchAuthorized(ctx, caller, policy.OpRender, id)
}

func (s *InvoiceService) fetchAuthorized(ctx context.Context, caller domain.Identity, op policy.Operation, id string) (*domain.Invoice, error) {
	if !requireCaller(caller.ID) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("invoice", map[string]any{"id": id})
	}
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("invoice", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := policy.Authorize(caller, op, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) resolveUser(ctx context.Context, id, field string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewValidationError("unknown user", map[string]any{field: id})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("unknown user", map[string]any{field: id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *InvoiceService) consistencyWarnings(ctx context.Context, invoice *domain.Invoice) []string {
	var warnings []string

	expected := invoice.ItemsSubtotal() + invoice.Shipping + invoice.Tax + invoice.GST
	if math.Abs(expected-invoice.Total) > totalTolerance {
		warnings = append(warnings, fmt.Sprintf("total %s differs from items plus surcharges %s",
			formatAmount(invoice.Total), formatAmount(expected)))
	}

	if invoice.PONumber != nil && s.orders != nil {
		_, err := s.orders.GetByPONumber(ctx, *invoice.PONumber)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			warnings = append(warnings, fmt.Sprintf("purchase order %s not found", *invoice.PONumber))
		case err != nil:
			s.logger.Warn("purchase order lookup failed", zap.String("po_number", *invoice.PONumber), zap.Error(err))
		}
	}
	return warnings
}

func validateInvoiceInput(input InvoiceCreateInput) ([]domain.InvoiceItem, error) {
	var missing []string
	if strings.TrimSpace(input.ToUserID) == "" {
		missing = append(missing, "toUserId")
	}
	if strings.TrimSpace(input.Client) == "" {
		missing = append(missing, "client")
	}
	if input.Total == nil {
		missing = append(missing, "total")
	}
	if len(input.Items) == 0 {
		missing = append(missing, "items")
	}

	items := make([]domain.InvoiceItem, 0, len(input.Items))
	for i, it := range input.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(it.Description) == "" {
			missing = append(missing, prefix+"description")
		}
		if it.Quantity == nil {
			missing = append(missing, prefix+"quantity")
		}
		if it.Price == nil {
			missing = append(missing, prefix+"price")
		}
		if it.Quantity != nil && it.Price != nil {
			items = append(items, domain.InvoiceItem{
				Description: strings.TrimSpace(it.Description),
				Quantity:    *it.Quantity,
				Price:       *it.Price,
			})
		}
	}

	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	return items, nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
