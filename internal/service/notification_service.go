package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/enquiry-service/internal/events"
)

// NotificationService logs domain events as they occur. It is the hook point
// for future email/webhook delivery.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventEnquiryCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventEnquiryStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventEnquiryAssigned, n.handleEvent)
	n.dispatcher.Subscribe(events.EventEnquiryDeleted, n.handleEvent)
}

func (n *NotificationService) handleEvent(_ context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("type", string(event.Type)),
		zap.String("enquiry_id", event.EnquiryID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
