package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/invoice-service/internal/config"
	"github.com/spec-kit/invoice-service/internal/events"
)

// NotificationService tells the counterparty of a new record. Delivery is
// stubbed: the message is logged rather than sent.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events and returns the subscribed types.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	subscriptions := []struct {
		eventType events.EventType
		handler   events.EventHandler
	}{
		{events.EventInvoiceCreated, n.handleInvoiceCreated},
		{events.EventPurchaseOrderCreated, n.handlePurchaseOrderCreated},
		{events.EventPasswordResetRequested, n.handlePasswordResetRequested},
	}
	subscribed := make([]events.EventType, 0, len(subscriptions))
	for _, sub := range subscriptions {
		n.dispatcher.Subscribe(sub.eventType, sub.handler)
		subscribed = append(subscribed, sub.eventType)
	}
	return subscribed
}

func (n *NotificationService) handleInvoiceCreated(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.InvoiceCreatedPayload)
	n.logger.Info("InvoiceCreated",
		zap.String("invoice_id", event.RecordID),
		zap.String("invoice_number", payload.InvoiceNumber),
		zap.String("recipient_id", payload.RecipientID))
	n.sendEmailNotificationStub(ctx, event, payload.RecipientEmail)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePurchaseOrderCreated(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.PurchaseOrderCreatedPayload)
	n.logger.Info("PurchaseOrderCreated",
		zap.String("purchase_order_id", event.RecordID),
		zap.String("po_number", payload.PONumber),
		zap.String("vendor_id", payload.VendorID))
	n.sendEmailNotificationStub(ctx, event, payload.VendorEmail)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.PasswordResetRequestedPayload)
	n.logger.Info("PasswordResetRequested",
		zap.String("user_id", event.ActorID),
		zap.Time("expires_at", payload.ExpiresAt))
	n.sendEmailNotificationStub(ctx, event, payload.Email)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || strings.TrimSpace(to) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("record_id", event.RecordID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("record_id", event.RecordID),
		zap.String("event_type", string(event.Type)))
}
