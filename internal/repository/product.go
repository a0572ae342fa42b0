package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkart/storefront/internal/domain/pricing"
	"github.com/openkart/storefront/internal/domain/product"
)

const (
	productColumns = `id, category, model, price, booking_amount, netpay_price,
		offer_percent, offer_end, buy_one_get_one, emi_months, down_payment,
		full_specs, image_url, netpay_qr_url, video_url, created_at`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	listProductsByCategorySQL = `SELECT ` + productColumns + `
		FROM products WHERE category = $1 ORDER BY created_at DESC`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (id, category, model, price, booking_amount, netpay_price,
			offer_percent, offer_end, buy_one_get_one, emi_months, down_payment,
			full_specs, image_url, netpay_qr_url, video_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category, model = EXCLUDED.model,
			price = EXCLUDED.price, booking_amount = EXCLUDED.booking_amount,
			netpay_price = EXCLUDED.netpay_price, offer_percent = EXCLUDED.offer_percent,
			offer_end = EXCLUDED.offer_end, buy_one_get_one = EXCLUDED.buy_one_get_one,
			emi_months = EXCLUDED.emi_months, down_payment = EXCLUDED.down_payment,
			full_specs = EXCLUDED.full_specs, image_url = EXCLUDED.image_url,
			netpay_qr_url = EXCLUDED.netpay_qr_url, video_url = EXCLUDED.video_url`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the whole catalog, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListByCategory returns the products of one category, newest first.
func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsByCategorySQL, category)
	if err != nil {
		return nil, fmt.Errorf("listing products in %q: %w", category, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts the product or overwrites all mutable columns on conflict.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Category, p.Model, p.Price, p.BookingAmount, p.NetpayPrice,
		p.OfferPercent, p.OfferEnd, p.BuyOneGetOne, monthsToInt32(p.EMIMonths), p.DownPayment,
		p.FullSpecs, p.Media.ImageURL, p.Media.NetpayQRURL, p.Media.VideoURL,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// Delete removes a product from the catalog.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p      product.Product
		months []int32
	)
	err := row.Scan(
		&p.ID, &p.Category, &p.Model, &p.Price, &p.BookingAmount, &p.NetpayPrice,
		&p.OfferPercent, &p.OfferEnd, &p.BuyOneGetOne, &months, &p.DownPayment,
		&p.FullSpecs, &p.Media.ImageURL, &p.Media.NetpayQRURL, &p.Media.VideoURL, &p.CreatedAt,
	)
	p.EMIMonths = monthsFromInt32(months)
	return p, err
}

func monthsToInt32(plan pricing.MonthPlan) []int32 {
	out := make([]int32, len(plan))
	for i, m := range plan {
		out[i] = int32(m)
	}
	return out
}

func monthsFromInt32(months []int32) pricing.MonthPlan {
	if len(months) == 0 {
		return nil
	}
	out := make(pricing.MonthPlan, len(months))
	for i, m := range months {
		out[i] = int(m)
	}
	return out
}
