package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/invoice-service/internal/api/dto"
	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/service"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

// PurchaseOrdersHandler serves purchase order endpoints.
type PurchaseOrdersHandler struct {
	service *service.PurchaseOrderService
}

// NewPurchaseOrdersHandler constructs handler.
func NewPurchaseOrdersHandler(orderService *service.PurchaseOrderService) *PurchaseOrdersHandler {
	return &PurchaseOrdersHandler{service: orderService}
}

// Create POST /purchase-orders.
func (h *PurchaseOrdersHandler) Create(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	po, err := h.service.Create(c.UserContext(), caller, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPurchaseOrderResponse(*po)})
}

// List GET /purchase-orders.
func (h *PurchaseOrdersHandler) List(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	query := dto.ParseListQuery(c)
	limit, offset := query.LimitOffset()

	statuses := make([]domain.PurchaseOrderStatus, 0, len(query.Statuses))
	for _, s := range query.Statuses {
		statuses = append(statuses, domain.PurchaseOrderStatus(s))
	}

	orders, err := h.service.List(c.UserContext(), caller, service.PurchaseOrderListFilter{
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPurchaseOrderListResponse(orders)})
}

// Get GET /purchase-orders/:id.
func (h *PurchaseOrdersHandler) Get(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	po, err := h.service.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPurchaseOrderResponse(*po)})
}
