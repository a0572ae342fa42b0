package notify

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	mail "github.com/wneessen/go-mail"
)

// SMTPConfig carries the mail relay credentials.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends the per-order notification email to the shop admin.
type Mailer struct {
	client *mail.Client
	from   string
	admin  string
}

// NewMailer connects the mailer to an SMTP relay.
func NewMailer(cfg SMTPConfig, adminEmail string) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, errors.Wrap(err, "smtp client")
	}

	return &Mailer{client: client, from: cfg.From, admin: adminEmail}, nil
}

// SendOrderCreated emails the admin about a freshly placed order.
func (m *Mailer) SendOrderCreated(ctx context.Context, p OrderCreatedPayload) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return errors.Wrap(err, "from address")
	}
	if err := msg.To(m.admin); err != nil {
		return errors.Wrap(err, "admin address")
	}
	msg.Subject(fmt.Sprintf("New %s order: %s", p.PaymentType, p.ProductModel))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Order %s\n\nProduct: %s\nBuyer: %s\nMobile: %s\nAddress: %s\nAmount: %s\nPayment: %s\nStatus: %s\n",
		p.OrderID, p.ProductModel, p.BuyerName, p.Mobile, p.Address,
		p.Amount, p.PaymentType, p.Status,
	))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}
