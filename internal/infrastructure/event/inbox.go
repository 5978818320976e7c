package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
)

// DefaultInboxCapacity bounds the toasts kept per session
const DefaultInboxCapacity = 20

// Toast is a notification waiting to be shown to a shopper
type Toast struct {
	ID          string                 `json:"id"`
	Level       cart.NotificationLevel `json:"level"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// ToastInbox collects notification events per session until the UI drains them.
// Only the newest toasts are kept when a session exceeds the capacity.
type ToastInbox struct {
	mu       sync.Mutex
	toasts   map[string][]Toast
	capacity int
}

// NewToastInbox creates an inbox; capacity <= 0 uses DefaultInboxCapacity
func NewToastInbox(capacity int) *ToastInbox {
	if capacity <= 0 {
		capacity = DefaultInboxCapacity
	}
	return &ToastInbox{
		toasts:   make(map[string][]Toast),
		capacity: capacity,
	}
}

// Handle stores a notification event
func (i *ToastInbox) Handle(_ context.Context, event shared.DomainEvent) error {
	n, ok := event.(*cart.NotificationEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for toast inbox", event)
	}
	if n.SessionID() == "" {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	queue := append(i.toasts[n.SessionID()], Toast{
		ID:          n.EventID().String(),
		Level:       n.Level,
		Title:       n.Title,
		Description: n.Description,
		CreatedAt:   n.OccurredAt(),
	})
	if len(queue) > i.capacity {
		queue = queue[len(queue)-i.capacity:]
	}
	i.toasts[n.SessionID()] = queue
	return nil
}

// EventTypes returns the event types this handler consumes
func (i *ToastInbox) EventTypes() []string {
	return []string{cart.EventTypeNotification}
}

// Drain returns the pending toasts of a session oldest first and empties its queue
func (i *ToastInbox) Drain(sessionID string) []Toast {
	i.mu.Lock()
	defer i.mu.Unlock()

	queue := i.toasts[sessionID]
	delete(i.toasts, sessionID)
	if queue == nil {
		return []Toast{}
	}
	return queue
}

// Forget drops everything pending for a session
func (i *ToastInbox) Forget(sessionID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.toasts, sessionID)
}

var _ shared.EventHandler = (*ToastInbox)(nil)
