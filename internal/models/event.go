package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события в системе
type EventType string

const (
	EventTypeOrderCreated   EventType = "order.created"
	EventTypeOrderUpdated   EventType = "order.updated"
	EventTypeOrderDeleted   EventType = "order.deleted"
	EventTypeUserRegistered EventType = "user.registered"
)

// Event представляет событие, публикуемое в Kafka
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Type       EventType              `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
