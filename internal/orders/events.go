package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type PlacedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type OrderPlacedPayload struct {
	OrderID int64        `json:"order_id"`
	UserID  int64        `json:"user_id"`
	Amount  int64        `json:"amount"`
	Items   []PlacedItem `json:"items"`
}
