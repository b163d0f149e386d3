// Package worker starts the background consumers of record events.
package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/invoice-service/internal/events"
	"github.com/spec-kit/invoice-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to record and
// password-reset events. It returns the event types now being consumed.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) []events.EventType {
	if notifications == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	subscribed := notifications.RegisterHandlers()
	names := make([]string, len(subscribed))
	for i, eventType := range subscribed {
		names[i] = string(eventType)
	}
	logger.Info("notification worker started", zap.Strings("events", names))
	return subscribed
}
