package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openkart/storefront/internal/domain/order"
)

const producerName = "storefront-api"

// Publisher emits order.Notifier events onto Kafka.
type Publisher struct {
	producer *Producer
	lg       *zap.Logger
	now      func() time.Time
}

// NewPublisher wraps an async producer as an order notifier.
func NewPublisher(producer *Producer, lg *zap.Logger) *Publisher {
	return &Publisher{producer: producer, lg: lg, now: time.Now}
}

func (p *Publisher) OrderCreated(_ context.Context, o *order.Order, productModel string) {
	payload, err := json.Marshal(OrderCreatedPayload{
		OrderID:      o.ID,
		UserID:       o.UserID,
		ProductModel: productModel,
		BuyerName:    o.UserName,
		Mobile:       o.Mobile,
		Address:      o.Address,
		Amount:       o.Amount.String(),
		PaymentType:  string(o.PaymentType),
		Status:       string(o.Status),
	})
	if err != nil {
		p.lg.Warn("encode order event", zap.Error(err))
		return
	}
	env, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderCreated,
		EventVersion: 1,
		OccurredAt:   p.now().UTC(),
		Producer:     producerName,
		Payload:      payload,
	})
	if err != nil {
		p.lg.Warn("encode order event", zap.Error(err))
		return
	}
	p.producer.Publish(PartitionKey(o.ID), env)
}

// NopNotifier is used when no brokers are configured.
type NopNotifier struct{}

func (NopNotifier) OrderCreated(context.Context, *order.Order, string) {}
