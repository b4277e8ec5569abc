package widgets

import "context"

// NotificationsClient is the minimal publishing interface an external
// notifications service must expose.
type NotificationsClient interface {
	PublishWidgetEvent(ctx context.Context, event WidgetEvent) error
}

// NotificationsHook forwards widget events to an external notifications client.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
}

// WidgetUpdated publishes events to the configured notifications client.
func (h *NotificationsHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	return h.Client.PublishWidgetEvent(ctx, event)
}
