package notify

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer writes events to Kafka through a buffered inbox so callers never
// block on the broker.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	lg      *zap.Logger
}

// NewProducer builds an async producer for the given topic.
func NewProducer(brokers []string, topic string, buf int, lg *zap.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		lg:      lg,
	}
}

// Start runs the writer loop until ctx is cancelled, then flushes the inbox.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				close(p.inbox)
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.lg.Warn("Kafka write failed",
			zap.String("topic", p.w.Topic),
			zap.Error(err),
		)
	}
}

// Publish queues a message. It drops the message with a warning when the
// inbox is full rather than blocking the caller.
func (p *Producer) Publish(key, value []byte) {
	m := kafka.Message{Key: key, Value: value, Time: time.Now()}
	select {
	case p.inbox <- m:
	default:
		p.lg.Warn("event inbox full, dropping message", zap.String("topic", p.w.Topic))
	}
}

// WaitClosed blocks until the writer loop has flushed and exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
