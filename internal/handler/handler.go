// Package handler exposes the storefront REST API.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/openkart/storefront/internal/auth"
	"github.com/openkart/storefront/internal/domain/message"
	"github.com/openkart/storefront/internal/domain/order"
	"github.com/openkart/storefront/internal/domain/product"
	"github.com/openkart/storefront/internal/domain/settings"
	"github.com/openkart/storefront/internal/domain/user"
	"github.com/openkart/storefront/internal/media"
)

// maxUploadBytes caps multipart request bodies. Product videos are the
// largest legitimate upload.
const maxUploadBytes = 64 << 20

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	tokens    *auth.Manager
	users     *user.Service
	products  product.Repository
	orders    *order.Service
	orderRepo order.Repository
	settings  settings.Repository
	messages  message.Repository
	uploader  media.Uploader
}

// New constructs a Handler with the required domain dependencies.
func New(
	tokens *auth.Manager,
	users *user.Service,
	products product.Repository,
	orders *order.Service,
	orderRepo order.Repository,
	settingsRepo settings.Repository,
	messages message.Repository,
	uploader media.Uploader,
) *Handler {
	return &Handler{
		tokens:    tokens,
		users:     users,
		products:  products,
		orders:    orders,
		orderRepo: orderRepo,
		settings:  settingsRepo,
		messages:  messages,
		uploader:  uploader,
	}
}

// Routes mounts the API onto a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.signup)
		r.Post("/auth/login", h.login)
		r.Post("/admin/login", h.adminLogin)

		r.Get("/products/{category}", h.listProductsByCategory)
		r.Get("/orders/count", h.orderCount)
		r.Get("/settings", h.getSettings)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/orders/place", h.placeNetpay)
			r.Post("/orders/emi", h.placeEMI)
			r.Get("/user/sales/count", h.userSalesCount)

			r.Post("/messages/send", h.sendMessage)
			r.Get("/messages", h.listMessages)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth, h.requireAdmin)

			r.Get("/products/admin", h.adminListProducts)
			r.Post("/products/admin", h.upsertProduct)
			r.Delete("/products/admin/{id}", h.deleteProduct)

			r.Get("/admin/orders", h.listOrders)
			r.Put("/admin/orders/{id}/confirm", h.confirmOrder)
			r.Put("/admin/orders/{id}/cancel", h.cancelOrder)

			r.Post("/admin/settings", h.updateSettings)
			r.Get("/admin/users", h.listUsers)
			r.Delete("/admin/users/{id}", h.deleteUser)
			r.Get("/admin/messages/latest", h.latestMessage)
		})
	})

	return r
}
