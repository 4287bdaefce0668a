package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suedpfote-storefront/internal/config"
	"suedpfote-storefront/internal/db"
	"suedpfote-storefront/internal/email"
	"suedpfote-storefront/internal/jobs"
	"suedpfote-storefront/internal/medusa"
	"suedpfote-storefront/internal/outbox"
	accountsvc "suedpfote-storefront/internal/service/account"
	checkoutsvc "suedpfote-storefront/internal/service/checkout"
	loyaltysvc "suedpfote-storefront/internal/service/loyalty"
)

// Standalone outbox worker for running the side-effect dispatcher outside the
// API process.
func main() {
	logger := log.New(os.Stdout, "[worker] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	backend := medusa.New(medusa.Options{
		BaseURL:        cfg.BackendURL,
		PublishableKey: cfg.PublishableKey,
		RegionID:       cfg.RegionID,
		AdminEmail:     cfg.BackendAdminEmail,
		AdminPassword:  cfg.BackendAdminPassword,
		Logger:         logger,
	})
	mailer := email.New(cfg.MailAPIKey, cfg.MailDomain, cfg.FromEmail, "", nil, logger)

	jobStore := outbox.NewPostgres(pool)
	dispatcher := outbox.NewDispatcher(jobStore, logger, 5*time.Second)
	jobs.Register(dispatcher, jobs.Deps{
		Mailer:   mailer,
		Accounts: accountsvc.New(backend, mailer, logger),
		Loyalty:  loyaltysvc.New(backend),
		Checkout: checkoutsvc.New(backend, jobStore, logger),
		Backend:  backend,
		Logger:   logger,
	})

	runCtx, cancel := context.WithCancel(ctx)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-stopCh
		logger.Printf("received signal %s, shutting down", sig)
		cancel()
	}()

	logger.Println("outbox worker running")
	dispatcher.Run(runCtx)
	logger.Println("worker stopped")
}
