// Package order implements the order lifecycle: placement of Netpay and EMI
// orders, the delivery status state machine, and admin confirmation.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// PaymentType distinguishes the two purchase paths.
type PaymentType string

const (
	// PaymentNetpay is the prepaid full-payment-by-QR path.
	PaymentNetpay PaymentType = "netpay"
	// PaymentEMI is the installment path with a down payment.
	PaymentEMI PaymentType = "emi"
)

// Status is the delivery status of an order.
type Status string

const (
	// StatusPending is the initial state of a Netpay order.
	StatusPending Status = "Pending"
	// StatusEMIPending is the initial state of an EMI order, awaiting
	// application review.
	StatusEMIPending Status = "EMI Pending"
	// StatusConfirmed means the admin accepted the order and a delivery
	// date has been set.
	StatusConfirmed Status = "Confirmed"
	// StatusDelivered is terminal.
	StatusDelivered Status = "Delivered"
	// StatusCancelled is terminal, reachable from any non-terminal state
	// by admin action.
	StatusCancelled Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusEMIPending: {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether the status machine allows moving from one
// status to another.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether no further transitions are possible. Confirmed is
// treated as terminal for re-confirmation purposes: confirming an already
// confirmed order is a no-op so the delivery date cannot silently move.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is a placed customer order.
type Order struct {
	ID        string
	UserID    string
	ProductID string

	UserName string
	Mobile   string
	Address  string

	Amount      decimal.Decimal
	PaymentType PaymentType
	Status      Status

	// ScreenshotURL references the uploaded payment-proof image.
	ScreenshotURL string
	// DeliveryDate is set at confirmation time, not at placement.
	DeliveryDate *time.Time

	CreatedAt time.Time
}

// EMIApplication holds the installment details captured alongside an EMI
// order. Monthly installment and remaining balance are derived on read via
// pricing.ComputeEMI and never stored.
type EMIApplication struct {
	OrderID string
	UserID  string

	Months      int
	DownPayment decimal.Decimal

	AadharNumber string
	BankDetails  string
	UserPhotoURL string

	ApplicationStatus string
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// CreateWithEMI persists the order and its EMI application atomically.
	CreateWithEMI(ctx context.Context, o *Order, app *EMIApplication) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetEMIApplication(ctx context.Context, orderID string) (*EMIApplication, error)
	List(ctx context.Context) ([]Order, error)
	// SetStatus updates the delivery status and date of an order.
	SetStatus(ctx context.Context, id string, status Status, deliveryDate *time.Time) (*Order, error)
	CountConfirmedByUser(ctx context.Context, userID string) (int, error)
	Count(ctx context.Context) (int, error)
}
