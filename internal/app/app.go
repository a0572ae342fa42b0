// Package app wires the storefront API server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/openkart/storefront/internal/auth"
	"github.com/openkart/storefront/internal/domain/order"
	"github.com/openkart/storefront/internal/domain/user"
	"github.com/openkart/storefront/internal/handler"
	"github.com/openkart/storefront/internal/idempotency"
	"github.com/openkart/storefront/internal/media"
	"github.com/openkart/storefront/internal/notify"
	"github.com/openkart/storefront/internal/repository"
	"github.com/openkart/storefront/pkg/health"
	"github.com/openkart/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Media host.
	if cfg.CloudinaryURL == "" {
		return errors.New("cloudinary URL is required: set STORE_CLOUDINARY_URL or CLOUDINARY_URL")
	}
	uploader, err := media.NewCloudinaryUploader(cfg.CloudinaryURL)
	if err != nil {
		return errors.Wrap(err, "create uploader")
	}

	// Idempotency store: Redis when configured, otherwise no deduplication.
	var idemStore order.IdempotencyStore = idempotency.NopStore{}
	if cfg.RedisAddr != "" {
		redisStore := idempotency.NewRedisStore(cfg.RedisAddr)
		defer redisStore.Close()
		healthSvc.AddReadinessCheck("redis", 2*time.Second, redisStore.Ping)
		idemStore = redisStore
	}

	// Order events: Kafka when configured, otherwise dropped.
	var notifier order.Notifier = notify.NopNotifier{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := notify.NewProducer(cfg.KafkaBrokers, notify.TopicOrderCreated, 1024, lg.Named("kafka"))
		producer.Start(ctx)
		defer producer.WaitClosed()
		notifier = notify.NewPublisher(producer, lg.Named("events"))
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	// Domain services.
	tokens := auth.NewManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	userService := user.NewService(userRepo)
	orderService := order.NewService(order.Config{
		DeliveryLeadDays:   cfg.Order.DeliveryLeadDays,
		EnforceOfferExpiry: cfg.Order.EnforceOfferExpiry,
	}, productRepo, orderRepo, uploader, notifier, idemStore)

	// HTTP routes.
	h := handler.New(tokens, userService, productRepo, orderService, orderRepo, settingsRepo, messageRepo, uploader)

	mux := chi.NewRouter()
	mux.Get("/livez", healthSvc.LiveEndpoint)
	mux.Get("/readyz", healthSvc.ReadyEndpoint)
	mux.Mount("/", h.Routes())

	instrumented := otelhttp.NewHandler(mux, "storefront-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
