package event

import (
	"context"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// BusNotifier turns cart notifications into NotificationEvents on a publisher
type BusNotifier struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewBusNotifier creates a notifier publishing to publisher
func NewBusNotifier(publisher shared.EventPublisher, logger *zap.Logger) *BusNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusNotifier{publisher: publisher, logger: logger}
}

// Success publishes a success toast
func (n *BusNotifier) Success(ctx context.Context, sessionID, title, description string) {
	n.publish(ctx, cart.NewNotificationEvent(sessionID, cart.NotificationSuccess, title, description))
}

// Error publishes an error toast
func (n *BusNotifier) Error(ctx context.Context, sessionID, message string) {
	n.publish(ctx, cart.NewNotificationEvent(sessionID, cart.NotificationError, message, ""))
}

// Notifications are best effort: a failed publish is logged, never returned.
func (n *BusNotifier) publish(ctx context.Context, event *cart.NotificationEvent) {
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Warn("failed to publish notification",
			zap.String("session_id", event.SessionID()),
			zap.String("level", string(event.Level)),
			zap.Error(err),
		)
	}
}

var _ cart.Notifier = (*BusNotifier)(nil)
