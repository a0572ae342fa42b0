// Package notify publishes order lifecycle events to Kafka and delivers the
// resulting admin emails. Publishing is best-effort: a broker outage must
// never fail an order placement.
package notify

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
)

const (
	// TopicOrderCreated carries one event per placed order.
	TopicOrderCreated = "storefront.order.created"

	EventOrderCreated = "OrderCreated"
)

// Envelope wraps every event on the wire with routing metadata.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// OrderCreatedPayload describes a freshly placed order.
type OrderCreatedPayload struct {
	OrderID      string `json:"order_id"`
	UserID       string `json:"user_id"`
	ProductModel string `json:"product_model"`

	BuyerName string `json:"buyer_name"`
	Mobile    string `json:"mobile"`
	Address   string `json:"address"`

	Amount      string `json:"amount"`
	PaymentType string `json:"payment_type"`
	Status      string `json:"status"`
}

// PartitionKey keys messages by order so events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

// UnwrapPayload decodes the typed payload of an envelope.
func UnwrapPayload[T any](raw json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		return t, errors.Wrap(err, "decode payload")
	}
	return t, nil
}
