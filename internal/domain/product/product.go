// Package product defines the catalog model shared by the storefront and the
// admin panel.
package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/openkart/storefront/internal/domain/pricing"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
//
// Price is the base price, BookingAmount the market ("booking") price shown
// struck through, and NetpayPrice the prepaid-QR price. NetpayPrice is
// expected to be at most BookingAmount but the core does not enforce it;
// the values come from admin entry.
type Product struct {
	ID       string
	Category string
	Model    string

	Price         decimal.Decimal
	BookingAmount decimal.Decimal
	NetpayPrice   decimal.Decimal

	// OfferPercent is the discount percentage (0 means no offer).
	OfferPercent int
	// OfferEnd is the absolute end of the offer window, nil when none.
	OfferEnd     *time.Time
	BuyOneGetOne bool

	EMIMonths   pricing.MonthPlan
	DownPayment decimal.NullDecimal

	FullSpecs string
	Media     Media

	CreatedAt time.Time
}

// Media holds the externally hosted asset URLs for a product. The URLs are
// opaque to the core; uploads are delegated to the media host.
type Media struct {
	ImageURL    string
	NetpayQRURL string
	VideoURL    string
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// List returns the whole catalog, newest first.
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Upsert(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
