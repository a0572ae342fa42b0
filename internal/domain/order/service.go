package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openkart/storefront/internal/domain/offer"
	"github.com/openkart/storefront/internal/domain/pricing"
	"github.com/openkart/storefront/internal/domain/product"
)

// Sentinel errors for order placement.
var (
	ErrProofRequired       = errors.New("payment screenshot required")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrOfferExpired        = errors.New("offer has expired")
	ErrDownPaymentRequired = errors.New("down payment required")
	ErrPlanRequired        = errors.New("EMI month plan selection required")
)

// MissingFieldError indicates a required buyer field was not supplied.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Field)
}

// PlanNotAllowedError indicates the selected month count is not part of the
// product's configured plan.
type PlanNotAllowedError struct {
	Months int
	Plan   pricing.MonthPlan
}

func (e *PlanNotAllowedError) Error() string {
	return fmt.Sprintf("EMI plan of %d months not offered (allowed: %s)", e.Months, e.Plan)
}

// Uploader stores a payment proof or verification photo on the media host
// and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

// Notifier dispatches the admin notification for a freshly created order.
// Implementations are best-effort: failures are logged, never returned.
type Notifier interface {
	OrderCreated(ctx context.Context, o *Order, productModel string)
}

// IdempotencyStore deduplicates retried order submissions. Claim registers
// orderID under the client-supplied key; when the key was already claimed it
// returns the previously stored order ID and claimed=false.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, orderID string) (existingID string, claimed bool, err error)
	Release(ctx context.Context, key string) error
}

// Media host folders for order uploads.
const (
	folderScreenshots    = "orders/screenshots"
	folderEMIScreenshots = "orders/emi/screenshots"
	folderEMIPhotos      = "orders/emi/photos"
)

// Config holds order placement policy.
type Config struct {
	// DeliveryLeadDays is added to the confirmation time to produce the
	// estimated delivery date.
	DeliveryLeadDays int
	// EnforceOfferExpiry rejects purchases once a product's offer window has
	// closed. The storefront historically treated the countdown as cosmetic,
	// so this defaults to off.
	EnforceOfferExpiry bool
}

// Service encapsulates order placement and lifecycle business logic.
type Service struct {
	cfg      Config
	products product.Repository
	orders   Repository
	uploader Uploader
	notifier Notifier
	idem     IdempotencyStore
	now      func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	cfg Config,
	products product.Repository,
	orders Repository,
	uploader Uploader,
	notifier Notifier,
	idem IdempotencyStore,
) *Service {
	if cfg.DeliveryLeadDays <= 0 {
		cfg.DeliveryLeadDays = 15
	}
	return &Service{
		cfg:      cfg,
		products: products,
		orders:   orders,
		uploader: uploader,
		notifier: notifier,
		idem:     idem,
		now:      time.Now,
	}
}

// PlaceNetpayRequest holds the input for placing a prepaid-QR order.
type PlaceNetpayRequest struct {
	UserID    string
	ProductID string
	UserName  string
	Mobile    string
	Address   string
	Amount    decimal.Decimal

	// Screenshot is the raw payment-proof image to upload. Alternatively a
	// pre-uploaded ScreenshotURL is accepted (legacy ingress shape).
	Screenshot    []byte
	ScreenshotURL string

	// IdempotencyKey is a client-generated token per submission attempt.
	// Retried requests with the same key return the original order.
	IdempotencyKey string
}

// PlaceEMIRequest holds the input for placing an installment order.
type PlaceEMIRequest struct {
	PlaceNetpayRequest

	Months int
	// DownPayment is the buyer-entered amount, used only when the product
	// does not fix one.
	DownPayment decimal.NullDecimal

	AadharNumber string
	BankDetails  string
	UserPhoto    []byte
}

// PlaceResult is the outcome of a successful placement.
type PlaceResult struct {
	Order *Order
	// EMI carries the derived installment breakdown for EMI orders.
	EMI *pricing.Breakdown
	// Idempotent is true when a retried submission matched an earlier order.
	Idempotent bool
}

// PlaceNetpay validates the buyer details, uploads the payment proof, and
// persists a Pending order. The proof upload is sequenced before the insert:
// if it fails no order row is written. The admin notification fires after the
// order is durable and never affects the result.
func (s *Service) PlaceNetpay(ctx context.Context, req PlaceNetpayRequest) (*PlaceResult, error) {
	p, err := s.validatePlacement(ctx, &req)
	if err != nil {
		return nil, err
	}

	proofURL, err := s.resolveProof(ctx, req.Screenshot, req.ScreenshotURL, folderScreenshots)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		ProductID:     req.ProductID,
		UserName:      req.UserName,
		Mobile:        req.Mobile,
		Address:       req.Address,
		Amount:        req.Amount,
		PaymentType:   PaymentNetpay,
		Status:        StatusPending,
		ScreenshotURL: proofURL,
	}

	if result, done, err := s.claimKey(ctx, req.IdempotencyKey, o.ID); done {
		return result, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, errors.Wrap(err, "create order")
	}

	s.notifier.OrderCreated(ctx, o, p.Model)
	return &PlaceResult{Order: o}, nil
}

// PlaceEMI validates the plan selection and down payment, uploads the proofs,
// and persists an EMI Pending order together with its application. The
// monthly installment and remaining balance are derived, not stored.
func (s *Service) PlaceEMI(ctx context.Context, req PlaceEMIRequest) (*PlaceResult, error) {
	p, err := s.validatePlacement(ctx, &req.PlaceNetpayRequest)
	if err != nil {
		return nil, err
	}

	if req.Months <= 0 {
		return nil, ErrPlanRequired
	}
	if len(p.EMIMonths) > 0 && !p.EMIMonths.Contains(req.Months) {
		return nil, &PlanNotAllowedError{Months: req.Months, Plan: p.EMIMonths}
	}

	// A product-fixed down payment wins; otherwise the buyer must supply one.
	var down decimal.Decimal
	switch {
	case p.DownPayment.Valid:
		down = p.DownPayment.Decimal
	case req.DownPayment.Valid:
		down = req.DownPayment.Decimal
	default:
		return nil, ErrDownPaymentRequired
	}
	if down.IsNegative() {
		return nil, ErrDownPaymentRequired
	}

	proofURL, err := s.resolveProof(ctx, req.Screenshot, req.ScreenshotURL, folderEMIScreenshots)
	if err != nil {
		return nil, err
	}

	photoURL := ""
	if len(req.UserPhoto) > 0 {
		photoURL, err = s.uploader.Upload(ctx, req.UserPhoto, folderEMIPhotos)
		if err != nil {
			return nil, errors.Wrap(err, "upload user photo")
		}
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		ProductID:     req.ProductID,
		UserName:      req.UserName,
		Mobile:        req.Mobile,
		Address:       req.Address,
		Amount:        req.Amount,
		PaymentType:   PaymentEMI,
		Status:        StatusEMIPending,
		ScreenshotURL: proofURL,
	}
	app := &EMIApplication{
		OrderID:           o.ID,
		UserID:            req.UserID,
		Months:            req.Months,
		DownPayment:       down,
		AadharNumber:      req.AadharNumber,
		BankDetails:       req.BankDetails,
		UserPhotoURL:      photoURL,
		ApplicationStatus: "Pending",
	}

	if result, done, err := s.claimKey(ctx, req.IdempotencyKey, o.ID); done {
		return result, err
	}

	if err := s.orders.CreateWithEMI(ctx, o, app); err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, errors.Wrap(err, "create EMI order")
	}

	s.notifier.OrderCreated(ctx, o, p.Model)

	breakdown := pricing.ComputeEMI(o.Amount, down, req.Months)
	return &PlaceResult{Order: o, EMI: &breakdown}, nil
}

// ConfirmDelivery moves an order to Confirmed and stamps the estimated
// delivery date as now plus the configured lead time. The lead window starts
// at confirmation, not at placement. Confirming an order that is already
// Confirmed or terminal is a no-op: the order is returned unchanged and the
// delivery date does not move.
func (s *Service) ConfirmDelivery(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	if o.Status == StatusConfirmed || o.Status.Terminal() {
		return o, nil
	}

	deliveryDate := s.now().AddDate(0, 0, s.cfg.DeliveryLeadDays)
	updated, err := s.orders.SetStatus(ctx, id, StatusConfirmed, &deliveryDate)
	if err != nil {
		return nil, errors.Wrap(err, "confirm order")
	}
	return updated, nil
}

// Cancel moves a non-terminal order to Cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return o, nil
	}
	updated, err := s.orders.SetStatus(ctx, id, StatusCancelled, o.DeliveryDate)
	if err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}
	return updated, nil
}

// EMIBreakdown derives the installment split for a stored EMI order.
func (s *Service) EMIBreakdown(ctx context.Context, orderID string) (*pricing.Breakdown, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	app, err := s.orders.GetEMIApplication(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get EMI application")
	}
	b := pricing.ComputeEMI(o.Amount, app.DownPayment, app.Months)
	return &b, nil
}

func (s *Service) validatePlacement(ctx context.Context, req *PlaceNetpayRequest) (*product.Product, error) {
	for _, f := range []struct{ name, value string }{
		{"user_name", req.UserName},
		{"mobile", req.Mobile},
		{"address", req.Address},
	} {
		if f.value == "" {
			return nil, &MissingFieldError{Field: f.name}
		}
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(req.Screenshot) == 0 && req.ScreenshotURL == "" {
		return nil, ErrProofRequired
	}

	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %s", req.ProductID)
	}

	if s.cfg.EnforceOfferExpiry && p.OfferPercent > 0 && p.OfferEnd != nil {
		if !offer.Evaluate(p.OfferEnd, s.now()).Active {
			return nil, ErrOfferExpired
		}
	}
	return p, nil
}

// resolveProof uploads the raw screenshot when present, otherwise accepts the
// pre-uploaded URL. Upload failure aborts the placement before any insert.
func (s *Service) resolveProof(ctx context.Context, data []byte, url, folder string) (string, error) {
	if len(data) == 0 {
		return url, nil
	}
	uploaded, err := s.uploader.Upload(ctx, data, folder)
	if err != nil {
		return "", errors.Wrap(err, "upload screenshot")
	}
	return uploaded, nil
}

// claimKey registers the idempotency key. done=true short-circuits the
// placement: either the earlier order is returned or the lookup failed.
func (s *Service) claimKey(ctx context.Context, key, orderID string) (*PlaceResult, bool, error) {
	if key == "" || s.idem == nil {
		return nil, false, nil
	}
	existingID, claimed, err := s.idem.Claim(ctx, key, orderID)
	if err != nil {
		return nil, true, errors.Wrap(err, "claim idempotency key")
	}
	if claimed {
		return nil, false, nil
	}
	existing, err := s.orders.GetByID(ctx, existingID)
	if err != nil {
		return nil, true, errors.Wrap(err, "get deduplicated order")
	}
	return &PlaceResult{Order: existing, Idempotent: true}, true, nil
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if key == "" || s.idem == nil {
		return
	}
	_ = s.idem.Release(ctx, key)
}
