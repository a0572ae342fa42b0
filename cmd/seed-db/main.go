package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openkart/storefront/internal/domain/pricing"
	"github.com/openkart/storefront/internal/domain/product"
	"github.com/openkart/storefront/internal/domain/user"
	"github.com/openkart/storefront/internal/repository"
)

type productJSON struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Model         string          `json:"model"`
	Price         decimal.Decimal `json:"price"`
	BookingAmount decimal.Decimal `json:"booking_amount"`
	NetpayPrice   decimal.Decimal `json:"netpay_price"`
	OfferPercent  int             `json:"offer_percent"`
	BuyOneGetOne  bool            `json:"buy_one_get_one"`
	EMIMonths     []int           `json:"emi_months"`
	DownPayment   *string         `json:"down_payment"`
	FullSpecs     string          `json:"full_specs"`
	ImageURL      string          `json:"image_url"`
	NetpayQRURL   string          `json:"netpay_qr_url"`
	VideoURL      string          `json:"video_url"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminUsername string
		adminPhone    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminUsername, "admin-username", "admin", "username for the seeded admin account")
	flag.StringVar(&adminPhone, "admin-phone", "", "phone number for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminUsername, adminPhone, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminUsername, adminPhone, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if adminPassword != "" {
		if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminUsername, adminPhone, adminPassword); err != nil {
			return errors.Wrap(err, "seed admin")
		}
	} else {
		slog.Info("skipping admin account: no password provided")
	}

	return nil
}

func seedProducts(ctx context.Context, products *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var entries []productJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(entries)))

	for _, e := range entries {
		p, err := toProduct(e)
		if err != nil {
			return errors.Wrapf(err, "product %s", e.ID)
		}
		if err := products.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("model", p.Model))
	}

	return nil
}

func toProduct(e productJSON) (*product.Product, error) {
	p := &product.Product{
		ID:            e.ID,
		Category:      e.Category,
		Model:         e.Model,
		Price:         e.Price,
		BookingAmount: e.BookingAmount,
		NetpayPrice:   e.NetpayPrice,
		OfferPercent:  e.OfferPercent,
		BuyOneGetOne:  e.BuyOneGetOne,
		EMIMonths:     pricing.MonthPlan(e.EMIMonths),
		FullSpecs:     e.FullSpecs,
		Media: product.Media{
			ImageURL:    e.ImageURL,
			NetpayQRURL: e.NetpayQRURL,
			VideoURL:    e.VideoURL,
		},
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if e.DownPayment != nil {
		d, err := decimal.NewFromString(*e.DownPayment)
		if err != nil {
			return nil, errors.Wrap(err, "parse down payment")
		}
		p.DownPayment = decimal.NewNullDecimal(d)
	}
	return p, nil
}

func seedAdmin(ctx context.Context, users *repository.UserRepository, username, phone, password string) error {
	hash, err := user.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	err = users.Create(ctx, &user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Phone:        phone,
		PasswordHash: hash,
		IsAdmin:      true,
	})
	switch {
	case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrPhoneTaken):
		slog.Info("admin account already exists", slog.String("username", username))
		return nil
	case err != nil:
		return errors.Wrap(err, "create admin")
	}

	slog.Info("created admin account", slog.String("username", username))
	return nil
}
