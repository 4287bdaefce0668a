package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suedpfote-storefront/internal/config"
	"suedpfote-storefront/internal/db"
	"suedpfote-storefront/internal/email"
	"suedpfote-storefront/internal/httpserver"
	"suedpfote-storefront/internal/jobs"
	"suedpfote-storefront/internal/medusa"
	"suedpfote-storefront/internal/outbox"
	accountsvc "suedpfote-storefront/internal/service/account"
	cartsvc "suedpfote-storefront/internal/service/cart"
	checkoutsvc "suedpfote-storefront/internal/service/checkout"
	loyaltysvc "suedpfote-storefront/internal/service/loyalty"
	ordersvc "suedpfote-storefront/internal/service/order"
	searchsvc "suedpfote-storefront/internal/service/search"
	"suedpfote-storefront/internal/stripe"
	"suedpfote-storefront/internal/validation"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	backend := medusa.New(medusa.Options{
		BaseURL:        cfg.BackendURL,
		PublishableKey: cfg.PublishableKey,
		RegionID:       cfg.RegionID,
		AdminEmail:     cfg.BackendAdminEmail,
		AdminPassword:  cfg.BackendAdminPassword,
		Logger:         logger,
	})
	gateway := stripe.New(cfg.StripeSecretKey, "", nil)
	mailer := email.New(cfg.MailAPIKey, cfg.MailDomain, cfg.FromEmail, "", nil, logger)

	jobStore := outbox.NewPostgres(dbpool)

	cartService, err := cartsvc.New(backend, logger, 0)
	if err != nil {
		logger.Fatalf("init cart service: %v", err)
	}
	checkoutService := checkoutsvc.New(backend, jobStore, logger)
	loyaltyService := loyaltysvc.New(backend)
	accountService := accountsvc.New(backend, mailer, logger)
	orderService := ordersvc.New(backend, logger)
	searchService := searchsvc.New(backend, cfg.SearchTimeout)

	dispatcher := outbox.NewDispatcher(jobStore, logger, 5*time.Second)
	jobs.Register(dispatcher, jobs.Deps{
		Mailer:   mailer,
		Accounts: accountService,
		Loyalty:  loyaltyService,
		Checkout: checkoutService,
		Backend:  backend,
		Logger:   logger,
	})

	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	go dispatcher.Run(dispatcherCtx)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Auth:         backend,
		Carts:        cartService,
		Checkout:     checkoutService,
		Loyalty:      loyaltyService,
		Orders:       orderService,
		Accounts:     accountService,
		Search:       searchService,
		Payments:     gateway,
		Mailer:       mailer,
		Proxy:        backend,
		Validator:    validation.New(),
		AdminKeyHash: cfg.AdminAPIKeyHash,
		CORSOrigins:  cfg.CORSOrigins,
	})
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

	stopDispatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
