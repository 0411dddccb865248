package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sponsorhub/internal/adapter/broadcast"
	httpadapter "sponsorhub/internal/adapter/http"
	"sponsorhub/internal/adapter/memory"
	"sponsorhub/internal/adapter/notify"
	"sponsorhub/internal/adapter/postgres"
	"sponsorhub/internal/adapter/scheduler"
	"sponsorhub/internal/adapter/usecase"
	"sponsorhub/internal/config"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
	"sponsorhub/internal/db"
)

// main loads configuration, opens the configured store, then runs the HTTP
// server, the live broadcast hub and the billing scheduler until SIGINT or
// SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := slog.New(cfg.Log.Handler(os.Stdout)).With(slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("sponsorhub stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("sponsorhub stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Psql.Seed {
		if err := db.Seed(ctx, store, time.Now()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo data seeded")
	}

	hub := broadcast.NewHub(func(ctx context.Context) ([]domain.Campaign, error) {
		return store.ListCampaigns(ctx, port.CampaignFilter{})
	}, cfg.Broadcast, logger)

	opts := []usecase.Option{
		usecase.WithLogger(logger),
		usecase.WithRetry(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoff),
	}
	analytics := usecase.NewAnalyticsUseCase(store, store, opts...)
	campaigns := usecase.NewCampaignUseCase(store, store, store, store, analytics, hub, opts...)
	billing := usecase.NewBillingUseCase(store, store, store, analytics, hub, notify.NewLogReminder(logger),
		cfg.Billing.NetDays, opts...)
	svc := httpadapter.Services{
		Sponsors:  usecase.NewSponsorUseCase(store, store, store, opts...),
		Slots:     usecase.NewSlotUseCase(store, store, store, hub, opts...),
		Campaigns: campaigns,
		Analytics: analytics,
		Billing:   billing,
	}

	jobs := scheduler.New(cfg.Billing.JobTimeout, logger, scheduler.BillingJobs(cfg.Billing, billing, campaigns, time.Now)...)

	handler := httpadapter.NewHandler(svc, store, httpadapter.NewAuthenticator(cfg.Auth), hub.Handler(), cfg.Events, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return jobs.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.Store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}

	if cfg.Psql.RunMigrations {
		change, err := db.Migrate(cfg.Psql.Addr.String())
		if err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		if change.Applied() {
			logger.Info("migrations applied", slog.Uint64("from", uint64(change.From)), slog.Uint64("to", uint64(change.To)))
		} else {
			logger.Info("schema up to date", slog.Uint64("version", uint64(change.To)))
		}
	}
	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection: %w", err)
	}
	return postgres.NewStore(pool), pool.Close, nil
}
