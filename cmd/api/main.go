package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/boutique2v/commerce-backend/api/routes"
	"github.com/boutique2v/commerce-backend/internal/admin"
	"github.com/boutique2v/commerce-backend/internal/cart"
	"github.com/boutique2v/commerce-backend/internal/categories"
	"github.com/boutique2v/commerce-backend/internal/chats"
	"github.com/boutique2v/commerce-backend/internal/invoices"
	"github.com/boutique2v/commerce-backend/internal/orders"
	"github.com/boutique2v/commerce-backend/internal/payments"
	"github.com/boutique2v/commerce-backend/internal/pricing"
	"github.com/boutique2v/commerce-backend/internal/products"
	"github.com/boutique2v/commerce-backend/internal/settings"
	"github.com/boutique2v/commerce-backend/internal/uploads"
	"github.com/boutique2v/commerce-backend/internal/users"
	"github.com/boutique2v/commerce-backend/internal/wishlist"
	"github.com/boutique2v/commerce-backend/pkg/config"
	"github.com/boutique2v/commerce-backend/pkg/db"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/metrics"
	"github.com/boutique2v/commerce-backend/pkg/migrate"
	"github.com/boutique2v/commerce-backend/pkg/redis"
	localstorage "github.com/boutique2v/commerce-backend/pkg/storage/local"
	pkgstripe "github.com/boutique2v/commerce-backend/pkg/stripe"
)

const (
	shutdownTimeout = 15 * time.Second
	stripeEventTTL  = 72 * time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	store, err := localstorage.New(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare artifact storage", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	conn := dbClient.DB()

	settingsService, err := settings.NewService(settings.ServiceParams{
		Store:  settings.NewRepository(conn),
		Logger: logg,
	})
	exitOnWireError(logg, "settings service", err)

	productRepo := products.NewRepository(conn)

	productService, err := products.NewService(products.ServiceParams{
		Store:  productRepo,
		Logger: logg,
	})
	exitOnWireError(logg, "product service", err)

	categoryService, err := categories.NewService(categories.ServiceParams{
		Store:  categories.NewRepository(conn),
		Logger: logg,
	})
	exitOnWireError(logg, "category service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:    cart.NewRepository(conn),
		Products: productRepo,
		Logger:   logg,
	})
	exitOnWireError(logg, "cart service", err)

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Store:    wishlist.NewRepository(conn),
		Products: productRepo,
		Logger:   logg,
	})
	exitOnWireError(logg, "wishlist service", err)

	calculator, err := pricing.NewCalculator(pricing.CalculatorParams{
		Settings: settingsService.Provider(),
		Tiers:    productRepo,
	})
	exitOnWireError(logg, "pricing calculator", err)

	renderer, err := invoices.NewRenderer(invoices.RendererParams{
		Settings: settingsService.Provider(),
		Store:    store,
		Logger:   logg,
	})
	exitOnWireError(logg, "invoice renderer", err)

	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		Store:    invoices.NewRepository(conn),
		Renderer: renderer,
		Logger:   logg,
	})
	exitOnWireError(logg, "invoice service", err)

	orderRepo := orders.NewRepository(conn)

	orderService, err := orders.NewService(orders.ServiceParams{
		Store:      orderRepo,
		Products:   productRepo,
		Calculator: calculator,
		Renderer:   renderer,
		Metrics:    orderMetrics,
		Logger:     logg,
	})
	exitOnWireError(logg, "order service", err)

	paymentService, err := payments.NewService(payments.ServiceParams{
		Stripe:   payments.NewStripeClient(stripeClient),
		Quoter:   orderService,
		Orders:   orderRepo,
		Settings: settingsService.Provider(),
		Logger:   logg,
	})
	exitOnWireError(logg, "payment service", err)

	stripeGuard, err := payments.NewIdempotencyGuard(redisClient, stripeEventTTL, "stripe:event")
	exitOnWireError(logg, "stripe event guard", err)

	userService, err := users.NewService(users.ServiceParams{
		Store:       users.NewRepository(conn),
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
		Logger:      logg,
	})
	exitOnWireError(logg, "user service", err)

	uploadService, err := uploads.NewService(uploads.ServiceParams{
		Store:  store,
		Config: cfg.Uploads,
		Logger: logg,
	})
	exitOnWireError(logg, "upload service", err)

	chatService, err := chats.NewService(chats.ServiceParams{
		Store:  chats.NewRepository(conn),
		Logger: logg,
	})
	exitOnWireError(logg, "chat service", err)

	adminService, err := admin.NewService(admin.ServiceParams{
		Users:    users.NewRepository(conn),
		Products: productRepo,
		Orders:   orderRepo,
		Logger:   logg,
	})
	exitOnWireError(logg, "admin service", err)

	handler := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Registry: registry,

		Stripe:       stripeClient,
		StripeGuard:  stripeGuard,
		HTTPMetrics:  httpMetrics,
		StorageRoot:  store.Root(),
		UploadPrefix: cfg.Storage.PublicBaseURL,

		Users:      userService,
		Products:   productService,
		Categories: categoryService,
		Cart:       cartService,
		Wishlist:   wishlistService,
		Orders:     orderService,
		Payments:   paymentService,
		Uploads:    uploadService,
		Chats:      chatService,
		Settings:   settingsService,
		Invoices:   invoiceService,
		Admin:      adminService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

func exitOnWireError(logg *logger.Logger, component string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to wire "+component, err)
	os.Exit(1)
}
