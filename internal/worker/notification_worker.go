package worker

import (
	"context"

	"github.com/helpdesk-io/helpdesk-service/internal/events"
	"github.com/helpdesk-io/helpdesk-service/internal/service"
)

// NotificationWorker bridges the event dispatcher to the notification
// service. Registration is synchronous; delivery happens inline with the
// publishing request.
type NotificationWorker struct {
	notifications *service.NotificationService
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(notifications *service.NotificationService) *NotificationWorker {
	return &NotificationWorker{notifications: notifications}
}

// Register subscribes the worker to every ticket event type.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketStatusChanged,
		events.EventTicketEscalated,
		events.EventTicketCommentAdded,
	} {
		dispatcher.Subscribe(eventType, w.handle)
	}
}

func (w *NotificationWorker) handle(ctx context.Context, event events.Event) error {
	return w.notifications.Notify(ctx, event)
}
