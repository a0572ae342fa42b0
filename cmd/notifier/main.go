// Command notifier consumes order events from Kafka and emails the shop
// admin about every placed order.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/openkart/storefront/internal/notify"
)

func main() {
	var (
		brokers    string
		group      string
		smtpHost   string
		smtpPort   int
		smtpUser   string
		smtpPass   string
		smtpFrom   string
		adminEmail string
	)

	flag.StringVar(&brokers, "brokers", "", "comma-separated Kafka brokers (or KAFKA_BROKERS env)")
	flag.StringVar(&group, "group", "storefront-notifier", "Kafka consumer group")
	flag.StringVar(&smtpHost, "smtp-host", "", "SMTP relay host (or SMTP_HOST env)")
	flag.IntVar(&smtpPort, "smtp-port", 587, "SMTP relay port")
	flag.StringVar(&smtpUser, "smtp-user", "", "SMTP username (or SMTP_USER env)")
	flag.StringVar(&smtpPass, "smtp-pass", "", "SMTP password (or SMTP_PASS env)")
	flag.StringVar(&smtpFrom, "smtp-from", "", "sender address for notification mail")
	flag.StringVar(&adminEmail, "admin-email", "", "recipient address for order notifications (or ADMIN_EMAIL env)")
	flag.Parse()

	if brokers == "" {
		brokers = os.Getenv("KAFKA_BROKERS")
	}
	if smtpHost == "" {
		smtpHost = os.Getenv("SMTP_HOST")
	}
	if smtpUser == "" {
		smtpUser = os.Getenv("SMTP_USER")
	}
	if smtpPass == "" {
		smtpPass = os.Getenv("SMTP_PASS")
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("ADMIN_EMAIL")
	}

	if brokers == "" {
		slog.Error("brokers are required: set --brokers or KAFKA_BROKERS")
		os.Exit(1)
	}
	if smtpHost == "" || adminEmail == "" {
		slog.Error("SMTP host and admin email are required")
		os.Exit(1)
	}
	if smtpFrom == "" {
		smtpFrom = smtpUser
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, strings.Split(brokers, ","), group, notify.SMTPConfig{
		Host:     smtpHost,
		Port:     smtpPort,
		Username: smtpUser,
		Password: smtpPass,
		From:     smtpFrom,
	}, adminEmail); err != nil {
		slog.Error("notifier failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("notifier stopped")
}

func run(ctx context.Context, brokers []string, group string, smtp notify.SMTPConfig, adminEmail string) error {
	lg, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer func() { _ = lg.Sync() }()

	mailer, err := notify.NewMailer(smtp, adminEmail)
	if err != nil {
		return errors.Wrap(err, "create mailer")
	}

	consumer := notify.NewConsumer(brokers, group, notify.TopicOrderCreated, lg.Named("consumer"))

	lg.Info("consuming order events",
		zap.Strings("brokers", brokers),
		zap.String("group", group),
		zap.String("topic", notify.TopicOrderCreated),
	)

	return consumer.Run(ctx, func(ctx context.Context, m kafka.Message) error {
		var env notify.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			lg.Warn("drop malformed event", zap.Error(err))
			return nil
		}
		if env.EventType != notify.EventOrderCreated {
			return nil
		}
		payload, err := notify.UnwrapPayload[notify.OrderCreatedPayload](env.Payload)
		if err != nil {
			lg.Warn("drop event with bad payload",
				zap.String("event_id", env.EventID),
				zap.Error(err),
			)
			return nil
		}
		if err := mailer.SendOrderCreated(ctx, payload); err != nil {
			return errors.Wrapf(err, "notify order %s", payload.OrderID)
		}
		lg.Info("notified admin",
			zap.String("order_id", payload.OrderID),
			zap.String("payment_type", payload.PaymentType),
		)
		return nil
	})
}
