package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkart/storefront/internal/domain/order"
)

const (
	orderColumns = `id, user_id, product_id, user_name, mobile, address,
		amount, payment_type, status, screenshot_url, delivery_date, created_at`

	createOrderSQL = `INSERT INTO orders (id, user_id, product_id, user_name, mobile, address,
			amount, payment_type, status, screenshot_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	createEMIApplicationSQL = `INSERT INTO emi_applications (order_id, user_id, months, down_payment,
			aadhar_number, bank_details, user_photo_url, application_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getEMIApplicationSQL = `SELECT order_id, user_id, months, down_payment,
			aadhar_number, bank_details, user_photo_url, application_status
		FROM emi_applications WHERE order_id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	setOrderStatusSQL = `UPDATE orders SET status = $2, delivery_date = $3
		WHERE id = $1 RETURNING ` + orderColumns

	countConfirmedByUserSQL = `SELECT count(*) FROM orders
		WHERE user_id = $1 AND status = 'Confirmed'`

	countOrdersSQL = `SELECT count(*) FROM orders`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.ProductID, o.UserName, o.Mobile, o.Address,
		o.Amount, o.PaymentType, o.Status, o.ScreenshotURL,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// CreateWithEMI persists the order and its EMI application in one
// transaction, so an application never exists without its order.
func (r *OrderRepository) CreateWithEMI(ctx context.Context, o *order.Order, app *order.EMIApplication) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.ProductID, o.UserName, o.Mobile, o.Address,
		o.Amount, o.PaymentType, o.Status, o.ScreenshotURL,
	); err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if _, err := tx.Exec(ctx, createEMIApplicationSQL,
		app.OrderID, app.UserID, app.Months, app.DownPayment,
		app.AadharNumber, app.BankDetails, app.UserPhotoURL, app.ApplicationStatus,
	); err != nil {
		return fmt.Errorf("creating EMI application for order %q: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// GetEMIApplication returns the installment details captured with an order.
func (r *OrderRepository) GetEMIApplication(ctx context.Context, orderID string) (*order.EMIApplication, error) {
	rows, err := r.pool.Query(ctx, getEMIApplicationSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting EMI application for order %q: %w", orderID, err)
	}

	app, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (order.EMIApplication, error) {
		var a order.EMIApplication
		err := row.Scan(
			&a.OrderID, &a.UserID, &a.Months, &a.DownPayment,
			&a.AadharNumber, &a.BankDetails, &a.UserPhotoURL, &a.ApplicationStatus,
		)
		return a, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting EMI application for order %q: %w", orderID, err)
	}
	return &app, nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// SetStatus updates the delivery status and date of an order and returns the
// updated row.
func (r *OrderRepository) SetStatus(ctx context.Context, id string, status order.Status, deliveryDate *time.Time) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, setOrderStatusSQL, id, status, deliveryDate)
	if err != nil {
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}
	return &o, nil
}

// CountConfirmedByUser counts a user's confirmed orders.
func (r *OrderRepository) CountConfirmedByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countConfirmedByUserSQL, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting confirmed orders for user %q: %w", userID, err)
	}
	return n, nil
}

// Count returns the total number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.ProductID, &o.UserName, &o.Mobile, &o.Address,
		&o.Amount, &o.PaymentType, &o.Status, &o.ScreenshotURL, &o.DeliveryDate, &o.CreatedAt,
	)
	return o, err
}
