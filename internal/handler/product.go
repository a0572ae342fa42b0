package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openkart/storefront/internal/domain/offer"
	"github.com/openkart/storefront/internal/domain/pricing"
	"github.com/openkart/storefront/internal/domain/product"
	"github.com/openkart/storefront/internal/media"
)

// Media host folders for product uploads.
const (
	folderProducts = "products"
	folderQRCodes  = "qr_codes"
)

type productResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Model    string `json:"model"`

	Price         decimal.Decimal `json:"price"`
	BookingAmount decimal.Decimal `json:"booking_amount"`
	NetpayPrice   decimal.Decimal `json:"netpay_price"`

	OfferPercent int        `json:"offer_percent"`
	OfferEnd     *time.Time `json:"offer_end,omitempty"`
	// OfferActive and OfferRemaining render the countdown. Remaining is the
	// mm:ss string shown under the price.
	OfferActive    bool   `json:"offer_active"`
	OfferRemaining string `json:"offer_remaining,omitempty"`

	BuyOneGetOne bool `json:"buy_one_get_one"`

	EMIMonths   []int            `json:"emi_months,omitempty"`
	DownPayment *decimal.Decimal `json:"down_payment,omitempty"`
	FullSpecs   string           `json:"full_specs"`

	ImageURL    string `json:"image_url"`
	NetpayQRURL string `json:"netpay_qr_url"`
	VideoURL    string `json:"video_url,omitempty"`
}

func toProductResponse(p product.Product, now time.Time) productResponse {
	resp := productResponse{
		ID:            p.ID,
		Category:      p.Category,
		Model:         p.Model,
		Price:         p.Price.Round(2),
		BookingAmount: p.BookingAmount.Round(2),
		NetpayPrice:   p.NetpayPrice.Round(2),
		OfferPercent:  p.OfferPercent,
		OfferEnd:      p.OfferEnd,
		BuyOneGetOne:  p.BuyOneGetOne,
		EMIMonths:     p.EMIMonths,
		FullSpecs:     p.FullSpecs,
		ImageURL:      p.Media.ImageURL,
		NetpayQRURL:   p.Media.NetpayQRURL,
		VideoURL:      p.Media.VideoURL,
	}
	if p.DownPayment.Valid {
		d := p.DownPayment.Decimal.Round(2)
		resp.DownPayment = &d
	}
	if p.OfferPercent > 0 {
		win := offer.Evaluate(p.OfferEnd, now)
		resp.OfferActive = win.Active
		if win.Active {
			resp.OfferRemaining = offer.FormatRemaining(win.Remaining)
		}
	}
	return resp
}

func (h *Handler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	items, err := h.products.ListByCategory(r.Context(), category)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	now := time.Now()
	resp := make([]productResponse, len(items))
	for i, p := range items {
		resp[i] = toProductResponse(p, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.products.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	now := time.Now()
	resp := make([]productResponse, len(items))
	for i, p := range items {
		resp[i] = toProductResponse(p, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

// upsertProduct creates or updates a catalog entry from a multipart form.
// File fields (image, netpay_qr, video) are uploaded first; existing URLs
// are kept when no new file is sent.
func (h *Handler) upsertProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	p := &product.Product{
		ID:       r.FormValue("id"),
		Category: r.FormValue("category"),
		Model:    r.FormValue("model"),
	}
	if p.Category == "" || p.Model == "" {
		writeError(w, http.StatusBadRequest, "category and model are required")
		return
	}

	existing := &product.Product{}
	if p.ID == "" {
		p.ID = uuid.New().String()
	} else if prev, err := h.products.GetByID(r.Context(), p.ID); err == nil {
		existing = prev
	}

	var err error
	if p.Price, err = parseDecimal(r, "price"); err != nil {
		h.respondError(w, r, err)
		return
	}
	if p.BookingAmount, err = parseDecimal(r, "booking_amount"); err != nil {
		h.respondError(w, r, err)
		return
	}
	if p.NetpayPrice, err = parseDecimal(r, "netpay_price"); err != nil {
		h.respondError(w, r, err)
		return
	}

	if v := r.FormValue("offer_percent"); v != "" {
		n, convErr := decimal.NewFromString(v)
		if convErr != nil {
			h.respondError(w, r, badRequest("invalid offer_percent"))
			return
		}
		p.OfferPercent = int(n.IntPart())
	}
	// offer_time is the daily HH:MM deadline; it rolls to tomorrow once
	// passed so every day gets a fresh countdown.
	if v := r.FormValue("offer_time"); v != "" {
		p.OfferEnd = offer.DailyWindowEnd(v, time.Now())
	}
	p.BuyOneGetOne = r.FormValue("buy_one_get_one") == "true"

	if v := r.FormValue("emi_months"); v != "" {
		plan, planErr := pricing.ParseMonthPlan(v)
		if planErr != nil {
			h.respondError(w, r, badRequest("invalid emi_months"))
			return
		}
		p.EMIMonths = plan
	}
	if v := r.FormValue("down_payment"); v != "" {
		d, convErr := decimal.NewFromString(v)
		if convErr != nil {
			h.respondError(w, r, badRequest("invalid down_payment"))
			return
		}
		p.DownPayment = decimal.NewNullDecimal(d)
	}
	p.FullSpecs = r.FormValue("full_specs")

	p.Media = existing.Media
	if p.Media.ImageURL, err = h.formAsset(r, "image", existing.Media.ImageURL, folderProducts); err != nil {
		h.respondError(w, r, err)
		return
	}
	if p.Media.NetpayQRURL, err = h.formAsset(r, "netpay_qr", existing.Media.NetpayQRURL, folderQRCodes); err != nil {
		h.respondError(w, r, err)
		return
	}
	if p.Media.VideoURL, err = h.formAsset(r, "video", existing.Media.VideoURL, folderProducts); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.products.Upsert(r.Context(), p); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p, time.Now()))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// formAsset resolves a multipart file field into a hosted URL, keeping the
// current URL when no file was sent.
func (h *Handler) formAsset(r *http.Request, field, current, folder string) (string, error) {
	data, err := formFile(r, field)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return media.FromURL(current).Resolve(r.Context(), h.uploader, folder)
	}
	return media.FromBytes(data).Resolve(r.Context(), h.uploader, folder)
}

// formFile reads an optional multipart file field fully into memory.
func formFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, badRequest("invalid file field " + field)
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxUploadBytes))
}

func parseDecimal(r *http.Request, field string) (decimal.Decimal, error) {
	v := r.FormValue(field)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, badRequest("invalid " + field)
	}
	return d, nil
}
