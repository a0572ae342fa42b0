package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/openkart/storefront/internal/domain/order"
	"github.com/openkart/storefront/internal/domain/pricing"
)

type orderResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`

	UserName string `json:"user_name"`
	Mobile   string `json:"mobile"`
	Address  string `json:"address"`

	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"payment_type"`
	Status      string          `json:"status"`

	ScreenshotURL string     `json:"screenshot_url,omitempty"`
	DeliveryDate  *time.Time `json:"delivery_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	EMI        *emiResponse `json:"emi,omitempty"`
	Idempotent bool         `json:"idempotent,omitempty"`
}

type emiResponse struct {
	Months      int             `json:"months"`
	DownPayment decimal.Decimal `json:"down_payment"`
	Monthly     decimal.Decimal `json:"monthly"`
	Remaining   decimal.Decimal `json:"remaining"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		ProductID:     o.ProductID,
		UserName:      o.UserName,
		Mobile:        o.Mobile,
		Address:       o.Address,
		Amount:        o.Amount.Round(2),
		PaymentType:   string(o.PaymentType),
		Status:        string(o.Status),
		ScreenshotURL: o.ScreenshotURL,
		DeliveryDate:  o.DeliveryDate,
		CreatedAt:     o.CreatedAt,
	}
}

func toEMIResponse(months int, b pricing.Breakdown) *emiResponse {
	r := b.Rounded()
	return &emiResponse{
		Months:      months,
		DownPayment: r.Down,
		Monthly:     r.Monthly,
		Remaining:   r.Remaining,
	}
}

// placeNetpay accepts the prepaid-QR placement form. The payment screenshot
// arrives as a multipart file; a pre-uploaded screenshot_url is also taken.
func (h *Handler) placeNetpay(w http.ResponseWriter, r *http.Request) {
	req, err := h.parsePlacement(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.orders.PlaceNetpay(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writePlacement(w, result, 0)
}

// placeEMI accepts the installment placement form, which extends the Netpay
// form with the plan selection and application details.
func (h *Handler) placeEMI(w http.ResponseWriter, r *http.Request) {
	base, err := h.parsePlacement(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	req := order.PlaceEMIRequest{
		PlaceNetpayRequest: base,
		AadharNumber:       r.FormValue("aadhar_number"),
		BankDetails:        r.FormValue("bank_details"),
	}
	if v := r.FormValue("emi_months"); v != "" {
		months, convErr := strconv.Atoi(v)
		if convErr != nil {
			h.respondError(w, r, badRequest("invalid emi_months"))
			return
		}
		req.Months = months
	}
	if v := r.FormValue("down_payment"); v != "" {
		d, convErr := decimal.NewFromString(v)
		if convErr != nil {
			h.respondError(w, r, badRequest("invalid down_payment"))
			return
		}
		req.DownPayment = decimal.NewNullDecimal(d)
	}
	if req.UserPhoto, err = formFile(r, "user_photo"); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.orders.PlaceEMI(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writePlacement(w, result, req.Months)
}

func (h *Handler) parsePlacement(r *http.Request) (order.PlaceNetpayRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return order.PlaceNetpayRequest{}, badRequest("invalid multipart form")
	}

	req := order.PlaceNetpayRequest{
		UserID:         claimsFrom(r.Context()).UserID,
		ProductID:      r.FormValue("product_id"),
		UserName:       r.FormValue("user_name"),
		Mobile:         r.FormValue("mobile"),
		Address:        r.FormValue("address"),
		ScreenshotURL:  r.FormValue("screenshot_url"),
		IdempotencyKey: r.FormValue("idempotency_key"),
	}

	if v := r.FormValue("amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return req, badRequest("invalid amount")
		}
		req.Amount = d
	}

	var err error
	if req.Screenshot, err = formFile(r, "screenshot"); err != nil {
		return req, err
	}
	return req, nil
}

func (h *Handler) writePlacement(w http.ResponseWriter, result *order.PlaceResult, months int) {
	resp := toOrderResponse(result.Order)
	resp.Idempotent = result.Idempotent
	if result.EMI != nil {
		resp.EMI = toEMIResponse(months, *result.EMI)
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	items, err := h.orderRepo.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(items))
	for i := range items {
		resp[i] = toOrderResponse(&items[i])
		if items[i].PaymentType != order.PaymentEMI {
			continue
		}
		app, err := h.orderRepo.GetEMIApplication(r.Context(), items[i].ID)
		if err != nil {
			continue
		}
		b := pricing.ComputeEMI(items[i].Amount, app.DownPayment, app.Months)
		resp[i].EMI = toEMIResponse(app.Months, b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ConfirmDelivery(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) orderCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.orderRepo.Count(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) userSalesCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.orderRepo.CountConfirmedByUser(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}
