package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"freshcart/internal/config"
	"freshcart/internal/db"
	"freshcart/internal/gateway"
	"freshcart/internal/httpserver"
	"freshcart/internal/pricing"
	categoryrepo "freshcart/internal/repository/category"
	orderrepo "freshcart/internal/repository/order"
	productrepo "freshcart/internal/repository/product"
	tokenrepo "freshcart/internal/repository/token"
	userrepo "freshcart/internal/repository/user"
	catalogsvc "freshcart/internal/service/catalog"
	ordersvc "freshcart/internal/service/order"
	paymentsvc "freshcart/internal/service/payment"
	usersvc "freshcart/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	userRepo := userrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	ordersRepo := orderrepo.NewPostgres(dbpool)

	policy := pricing.Policy{
		ShippingFlatCents:    cfg.ShippingFlatCents,
		FreeShippingMinCents: cfg.FreeShippingMinCents,
		TaxRateBps:           cfg.TaxRateBps,
	}

	var gw gateway.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gw = gateway.NewStripe(cfg.StripeSecretKey, logger)
	} else {
		logger.Printf("STRIPE_SECRET_KEY not set, using in-memory fake gateway")
		gw = gateway.NewFake()
	}
	verifier := gateway.NewVerifier(cfg.StripeWebhookSecret)

	userService := usersvc.New(userRepo, tokenRepo)
	catalogService := catalogsvc.New(productRepo, categoryRepo)
	orderService := ordersvc.New(ordersRepo, productRepo, policy)
	paymentService := paymentsvc.New(ordersRepo, gw, verifier, cfg.Currency, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		UserSvc:    userService,
		OrderSvc:   orderService,
		PaymentSvc: paymentService,
		CatalogSvc: catalogService,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
