package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventKind classifies a normalized inbound event. The platform adapter
// maps its envelope onto one of these; anything else is unrecognized and
// handled as a no-op.
type EventKind string

const (
	KindHomeOpened        EventKind = "home_opened"
	KindMessage           EventKind = "message"
	KindAppInstalled      EventKind = "app_installed"
	KindTeamJoin          EventKind = "team_join"
	KindUserProfileChange EventKind = "user_profile_change"
)

// ActionViewHistory is the interactive action emitted by the home view's
// history button.
const ActionViewHistory = "view_history"

// InboundEvent is the normalized shape the core consumes. The core never
// parses platform-specific envelopes.
type InboundEvent struct {
	Kind   EventKind
	TeamID string
	UserID string
	// Text is the raw message text, set only for message events
	Text string
	// ActionID is set for interactive actions (home view buttons)
	ActionID string
	// Redelivery is the transport's retry marker; a redelivered event
	// must not cause side effects a second time
	Redelivery bool
}

// NotificationKind tells the delivery layer how to render a notification
type NotificationKind string

const (
	NotificationDM       NotificationKind = "dm"
	NotificationHomeView NotificationKind = "home_view"
)

// OutboundNotification is what the core emits back toward the platform.
// Delivery is out of the core's hands.
type OutboundNotification struct {
	Kind       NotificationKind
	TargetUser string
	Text       string
	// TotalPoints and RemainingPoints are set for home_view renders
	TotalPoints     int
	RemainingPoints int
}

// EventType represents different types of events on the internal bus
type EventType string

const (
	EventTypeInbound      EventType = "inbound"
	EventTypeNotification EventType = "notification"
	EventTypeQuotaReset   EventType = "quota_reset"
)

// Event is the base interface for all bus events
type Event interface {
	Type() EventType
}

// InboundReceivedEvent wraps a normalized inbound event for the bus. The
// transport layer publishes these; the router subscription consumes them.
type InboundReceivedEvent struct {
	Event InboundEvent
}

func (e InboundReceivedEvent) Type() EventType {
	return EventTypeInbound
}

// NotificationEvent carries one outbound notification to the delivery
// handlers subscribed on the bus
type NotificationEvent struct {
	TeamID       string
	Notification OutboundNotification
}

func (e NotificationEvent) Type() EventType {
	return EventTypeNotification
}

// QuotaResetEvent is published when a daily reset run completes
type QuotaResetEvent struct {
	Date       string
	UsersReset int
}

func (e QuotaResetEvent) Type() EventType {
	return EventTypeQuotaReset
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so a slow delivery never blocks the request path.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
