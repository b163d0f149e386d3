package handlers

import (
	"bufio"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/invoice-service/internal/api/dto"
	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/observability"
	"github.com/spec-kit/invoice-service/internal/render"
	"github.com/spec-kit/invoice-service/internal/service"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

// InvoicesHandler serves invoice endpoints.
type InvoicesHandler struct {
	service  *service.InvoiceService
	renderer *render.InvoiceRenderer
	logger   *zap.Logger
}

// NewInvoicesHandler constructs handler.
func NewInvoicesHandler(invoiceService *service.InvoiceService, renderer *render.InvoiceRenderer, logger *zap.Logger) *InvoicesHandler {
	return &InvoicesHandler{service: invoiceService, renderer: renderer, logger: logger}
}

// Create POST /invoices.
func (h *InvoicesHandler) Create(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := req.ToInput()
	if err != nil {
		return err
	}

	invoice, warnings, err := h.service.Create(c.UserContext(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreateInvoiceResponse{
		Data:     dto.NewInvoiceResponse(*invoice),
		Warnings: warnings,
	})
}

// List GET /invoices.
func (h *InvoicesHandler) List(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	query := dto.ParseListQuery(c)
	limit, offset := query.LimitOffset()

	statuses := make([]domain.InvoiceStatus, 0, len(query.Statuses))
	for _, s := range query.Statuses {
		statuses = append(statuses, domain.InvoiceStatus(s))
	}

	invoices, err := h.service.List(c.UserContext(), caller, service.InvoiceListFilter{
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewInvoiceListResponse(invoices)})
}

// Get GET /invoices/:id.
func (h *InvoicesHandler) Get(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	invoice, err := h.service.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewInvoiceResponse(*invoice)})
}

// Document GET /invoices/:id/document streams the rendered PDF. Existence and
// access are settled before any byte is written.
func (h *InvoicesHandler) Document(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	invoice, err := h.service.GetForRender(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	doc, err := h.renderer.Compose(invoice)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	name := invoice.InvoiceNumber
	if name == "" {
		name = invoice.ID
	}
	c.Set(fiber.HeaderContentType, h.renderer.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, name))

	requestID := observability.RequestID(c)
	invoiceID := invoice.ID
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := doc.Write(w); err != nil {
			h.logger.Error("invoice document stream failed",
				zap.String("request_id", requestID),
				zap.String("invoice_id", invoiceID),
				zap.Error(err))
		}
		if err := w.Flush(); err != nil {
			h.logger.Debug("client went away during document stream", zap.String("invoice_id", invoiceID), zap.Error(err))
		}
	})
	return nil
}
