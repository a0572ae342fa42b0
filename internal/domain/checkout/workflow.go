// Package checkout models the buyer-facing purchase funnel as a finite
// sequence of steps with validated forward transitions. Steps before the
// final one mutate only local form state; the Confirm step is the single
// point with an external side effect (the order submission).
package checkout

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openkart/storefront/internal/domain/order"
	"github.com/openkart/storefront/internal/domain/pricing"
	"github.com/openkart/storefront/internal/domain/product"
)

// Step identifies a page in the purchase funnel.
type Step int

const (
	StepProductDetails Step = iota
	StepBuyerInfo
	StepPaymentQR
	StepConfirmUpload
)

func (s Step) String() string {
	switch s {
	case StepProductDetails:
		return "product-details"
	case StepBuyerInfo:
		return "buyer-info"
	case StepPaymentQR:
		return "payment-qr"
	case StepConfirmUpload:
		return "confirm-upload"
	default:
		return "unknown"
	}
}

// Workflow errors.
var (
	ErrSubmitInFlight  = errors.New("submission already in progress")
	ErrNotAtFinalStep  = errors.New("workflow is not at the confirm step")
	ErrAlreadyAtStart  = errors.New("workflow is at the first step")
	ErrProofMissing    = errors.New("payment screenshot required before submit")
	ErrPlanNotSelected = errors.New("an EMI plan must be selected")
)

// IncompleteFormError reports which buyer field blocks a forward transition.
type IncompleteFormError struct {
	Field string
}

func (e *IncompleteFormError) Error() string {
	return "required field is empty: " + e.Field
}

// Form holds the in-progress buyer input. Nothing here is persisted until
// the final submit succeeds.
type Form struct {
	Name    string
	Mobile  string
	Address string

	// EMI-only fields.
	Months       int
	DownPayment  decimal.NullDecimal
	AadharNumber string
	BankDetails  string

	Screenshot []byte
	UserPhoto  []byte
}

// Submitter places the assembled order. Satisfied by *order.Service.
type Submitter interface {
	PlaceNetpay(ctx context.Context, req order.PlaceNetpayRequest) (*order.PlaceResult, error)
	PlaceEMI(ctx context.Context, req order.PlaceEMIRequest) (*order.PlaceResult, error)
}

// Workflow drives one buyer through the funnel for one product. It is safe
// for the concurrent submit-guard but otherwise intended for a single
// browsing session.
type Workflow struct {
	product product.Product
	payment order.PaymentType
	userID  string
	submit  Submitter

	mu       sync.Mutex
	step     Step
	form     Form
	inFlight bool
	// idemKey is generated per submission attempt and resent on retries so
	// the backend can deduplicate.
	idemKey string
}

// New starts a workflow at the product details page.
func New(p product.Product, payment order.PaymentType, userID string, submit Submitter) *Workflow {
	return &Workflow{
		product: p,
		payment: payment,
		userID:  userID,
		submit:  submit,
	}
}

// Step returns the current funnel position.
func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Form returns a copy of the in-progress form state.
func (w *Workflow) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// SetBuyerInfo records the buyer details entered on the info page.
func (w *Workflow) SetBuyerInfo(name, mobile, address string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Name = name
	w.form.Mobile = mobile
	w.form.Address = address
}

// SetEMIDetails records the installment selections entered on the EMI form.
func (w *Workflow) SetEMIDetails(months int, down decimal.NullDecimal, aadhar, bankDetails string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Months = months
	w.form.DownPayment = down
	w.form.AadharNumber = aadhar
	w.form.BankDetails = bankDetails
}

// AttachProof stores the payment screenshot (and, for EMI, the optional
// verification photo) ahead of the final submit.
func (w *Workflow) AttachProof(screenshot, userPhoto []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Screenshot = screenshot
	w.form.UserPhoto = userPhoto
}

// Next advances the funnel one step. Each forward transition is gated on the
// fields the departing step collects; a gate failure leaves the workflow
// where it is and persists nothing.
func (w *Workflow) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepProductDetails:
		w.step = StepBuyerInfo
		return nil
	case StepBuyerInfo:
		if err := w.validateBuyerInfo(); err != nil {
			return err
		}
		w.step = StepPaymentQR
		return nil
	case StepPaymentQR:
		w.step = StepConfirmUpload
		return nil
	default:
		return ErrNotAtFinalStep
	}
}

// Back returns to the previous step, keeping all entered data.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepProductDetails {
		return ErrAlreadyAtStart
	}
	w.step--
	return nil
}

// QRAmount is the amount displayed alongside the payment QR code: the full
// netpay price for prepaid orders, the down payment for EMI orders.
func (w *Workflow) QRAmount() decimal.Decimal {
	if w.payment == order.PaymentEMI {
		if b := w.Breakdown(); b != nil {
			return b.Down
		}
	}
	return w.product.NetpayPrice
}

// Breakdown derives the EMI split for the current plan selection, nil when
// no plan is selected yet or the workflow is a Netpay purchase.
func (w *Workflow) Breakdown() *pricing.Breakdown {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.payment != order.PaymentEMI || w.form.Months <= 0 {
		return nil
	}
	down := decimal.Zero
	switch {
	case w.product.DownPayment.Valid:
		down = w.product.DownPayment.Decimal
	case w.form.DownPayment.Valid:
		down = w.form.DownPayment.Decimal
	}
	b := pricing.ComputeEMI(w.product.NetpayPrice, down, w.form.Months)
	return &b
}

// Submit performs the final network submission. Only one submission may be
// in flight at a time; a second call while the first is unresolved fails
// fast with ErrSubmitInFlight. On success the buyer-entered form fields are
// cleared; on failure everything is retained so the buyer can retry.
func (w *Workflow) Submit(ctx context.Context) (*order.PlaceResult, error) {
	w.mu.Lock()
	if w.step != StepConfirmUpload {
		w.mu.Unlock()
		return nil, ErrNotAtFinalStep
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := w.validateBuyerInfo(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if len(w.form.Screenshot) == 0 {
		w.mu.Unlock()
		return nil, ErrProofMissing
	}
	if w.payment == order.PaymentEMI && w.form.Months <= 0 {
		w.mu.Unlock()
		return nil, ErrPlanNotSelected
	}

	w.inFlight = true
	if w.idemKey == "" {
		w.idemKey = uuid.New().String()
	}
	form := w.form
	key := w.idemKey
	w.mu.Unlock()

	result, err := w.place(ctx, form, key)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if err != nil {
		// Keep form state and the idempotency key for a retry.
		return nil, err
	}

	w.form = Form{}
	w.idemKey = ""
	w.step = StepProductDetails
	return result, nil
}

func (w *Workflow) place(ctx context.Context, form Form, key string) (*order.PlaceResult, error) {
	base := order.PlaceNetpayRequest{
		UserID:         w.userID,
		ProductID:      w.product.ID,
		UserName:       form.Name,
		Mobile:         form.Mobile,
		Address:        form.Address,
		Amount:         w.product.NetpayPrice,
		Screenshot:     form.Screenshot,
		IdempotencyKey: key,
	}

	if w.payment == order.PaymentEMI {
		return w.submit.PlaceEMI(ctx, order.PlaceEMIRequest{
			PlaceNetpayRequest: base,
			Months:             form.Months,
			DownPayment:        form.DownPayment,
			AadharNumber:       form.AadharNumber,
			BankDetails:        form.BankDetails,
			UserPhoto:          form.UserPhoto,
		})
	}
	return w.submit.PlaceNetpay(ctx, base)
}

// validateBuyerInfo is called with w.mu held.
func (w *Workflow) validateBuyerInfo() error {
	for _, f := range []struct{ name, value string }{
		{"name", w.form.Name},
		{"mobile", w.form.Mobile},
		{"address", w.form.Address},
	} {
		if f.value == "" {
			return &IncompleteFormError{Field: f.name}
		}
	}
	if w.payment == order.PaymentEMI && w.form.Months <= 0 {
		return ErrPlanNotSelected
	}
	return nil
}
