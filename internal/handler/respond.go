package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/go-faster/sdk/zctx"

	"github.com/openkart/storefront/internal/domain/message"
	"github.com/openkart/storefront/internal/domain/order"
	"github.com/openkart/storefront/internal/domain/product"
	"github.com/openkart/storefront/internal/domain/settings"
	"github.com/openkart/storefront/internal/domain/user"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Code: code, Message: msg})
}

// respondError maps domain errors onto HTTP statuses. Unclassified errors are
// logged and hidden behind a 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch status := classify(err); status {
	case http.StatusInternalServerError:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, status, "internal error")
	default:
		writeError(w, status, err.Error())
	}
}

func classify(err error) int {
	var (
		missing    *order.MissingFieldError
		notAllowed *order.PlanNotAllowedError
		incomplete badRequestError
	)
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound

	case errors.As(err, &missing),
		errors.Is(err, order.ErrProofRequired),
		errors.Is(err, message.ErrEmptyContent),
		errors.As(err, &incomplete):
		return http.StatusBadRequest

	case errors.As(err, &notAllowed),
		errors.Is(err, order.ErrInvalidAmount),
		errors.Is(err, order.ErrOfferExpired),
		errors.Is(err, order.ErrDownPaymentRequired),
		errors.Is(err, order.ErrPlanRequired):
		return http.StatusUnprocessableEntity

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, user.ErrNotAdmin):
		return http.StatusForbidden

	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrPhoneTaken),
		errors.Is(err, user.ErrCannotDeleteAdmin),
		errors.Is(err, settings.ErrVersionConflict):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// badRequestError marks handler-level input errors.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return badRequestError{msg: msg} }
