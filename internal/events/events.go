// Package events provides in-process pub/sub used to decouple reservation
// writes from side effects like the sheets sync.
package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Event types published by the bot.
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCancelled = "reservation.cancelled"
	TypeSeriesCreated        = "reservation.series_created"
)

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// ReservationPayload is the payload of reservation events.
type ReservationPayload struct {
	ReservationID   int64     `json:"reservation_id"`
	RoomID          int64     `json:"room_id"`
	UserID          int64     `json:"user_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	RecurrenceGroup string    `json:"recurrence_group,omitempty"`
	Created         int       `json:"created,omitempty"`
	Requested       int       `json:"requested,omitempty"`
}

// NewReservationEvent builds an event with a JSON-encoded payload.
func NewReservationEvent(eventType string, p ReservationPayload) Event {
	data, _ := json.Marshal(p)
	return Event{Type: eventType, Payload: data, CreatedAt: time.Now()}
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}
