package slack

import (
	"context"

	log "github.com/sirupsen/logrus"

	"kudos/events"
)

// RegisterDelivery subscribes the adapter as the delivery sink for
// outbound notifications published on the bus
func (c *Client) RegisterDelivery(bus *events.Bus) {
	bus.Subscribe(events.EventTypeNotification, c.handleNotification)
}

func (c *Client) handleNotification(ctx context.Context, event events.Event) {
	notification, ok := event.(events.NotificationEvent)
	if !ok {
		log.WithField("eventType", event.Type()).Error("Unexpected event payload on notification channel")
		return
	}

	n := notification.Notification
	var err error
	switch n.Kind {
	case events.NotificationDM:
		err = c.SendDM(ctx, notification.TeamID, n.TargetUser, n.Text)
	case events.NotificationHomeView:
		err = c.PublishHomeView(ctx, notification.TeamID, n.TargetUser, n.TotalPoints, n.RemainingPoints)
	default:
		log.WithField("kind", n.Kind).Warn("Unknown notification kind, dropping")
		return
	}

	if err != nil {
		log.WithFields(log.Fields{
			"kind":       n.Kind,
			"targetUser": n.TargetUser,
		}).WithError(err).Error("Failed to deliver notification")
	}
}
