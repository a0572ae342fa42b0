package notify

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler processes one message. Returning nil commits the offset; an error
// leaves the message uncommitted for redelivery.
type Handler func(ctx context.Context, m kafka.Message) error

// Consumer reads a topic within a consumer group and commits offsets only
// after the handler succeeds.
type Consumer struct {
	r  *kafka.Reader
	lg *zap.Logger
}

// NewConsumer builds a group consumer for the given topic.
func NewConsumer(brokers []string, group, topic string, lg *zap.Logger) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        group,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 0,
		}),
		lg: lg,
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	defer c.r.Close()

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		if err := h(ctx, m); err != nil {
			c.lg.Warn("handle message",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			continue
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			c.lg.Warn("commit offset", zap.Error(err))
		}
	}
}
