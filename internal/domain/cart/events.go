package cart

import "github.com/craveup/leclerc-storefront/internal/domain/shared"

// AggregateTypeCart is the aggregate type of cart events
const AggregateTypeCart = "Cart"

// EventTypeNotification is published for every user-facing cart notification
const EventTypeNotification = "CartNotification"

// NotificationLevel is the tone of a notification
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// NotificationEvent carries a toast for one shopper session
type NotificationEvent struct {
	shared.BaseDomainEvent
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
}

// NewNotificationEvent creates a notification event for a session
func NewNotificationEvent(sessionID string, level NotificationLevel, title, description string) *NotificationEvent {
	return &NotificationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNotification, AggregateTypeCart, sessionID, sessionID),
		Level:           level,
		Title:           title,
		Description:     description,
	}
}
