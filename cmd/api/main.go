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

	"github.com/joho/godotenv"

	"github.com/aguacoop/aguacoop/internal/auth"
	authStore "github.com/aguacoop/aguacoop/internal/auth/store"
	"github.com/aguacoop/aguacoop/internal/config"
	"github.com/aguacoop/aguacoop/internal/database"
	coopHttp "github.com/aguacoop/aguacoop/internal/http"
	authHandler "github.com/aguacoop/aguacoop/internal/http/auth"
	moraHandler "github.com/aguacoop/aguacoop/internal/http/mora"
	paymentHandler "github.com/aguacoop/aguacoop/internal/http/payment"
	readingHandler "github.com/aguacoop/aguacoop/internal/http/reading"
	reportHandler "github.com/aguacoop/aguacoop/internal/http/report"
	tariffHandler "github.com/aguacoop/aguacoop/internal/http/tariff"
	voucherHandler "github.com/aguacoop/aguacoop/internal/http/voucher"
	"github.com/aguacoop/aguacoop/internal/importer"
	"github.com/aguacoop/aguacoop/internal/logging"
	"github.com/aguacoop/aguacoop/internal/mora"
	moraStore "github.com/aguacoop/aguacoop/internal/mora/store"
	"github.com/aguacoop/aguacoop/internal/payment"
	paymentStore "github.com/aguacoop/aguacoop/internal/payment/store"
	"github.com/aguacoop/aguacoop/internal/reading"
	readingStore "github.com/aguacoop/aguacoop/internal/reading/store"
	"github.com/aguacoop/aguacoop/internal/receipt"
	"github.com/aguacoop/aguacoop/internal/report"
	"github.com/aguacoop/aguacoop/internal/scheduler"
	"github.com/aguacoop/aguacoop/internal/tariff"
	tariffStore "github.com/aguacoop/aguacoop/internal/tariff/store"
	"github.com/aguacoop/aguacoop/internal/voucher"
	voucherStore "github.com/aguacoop/aguacoop/internal/voucher/store"
)

const rolloverJob = "rollover"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(), database.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		PingTimeout:     cfg.DB.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var (
		authService    = auth.NewService(authStore.New(db), auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens)
		tariffService  = tariff.NewService(tariffStore.New(db))
		voucherService = voucher.NewService(voucherStore.New(db))
		readingService = reading.NewService(readingStore.New(db), tariffService, reading.WithLogger(logger))
		importService  = importer.NewService(readingService)
		paymentService = payment.NewService(paymentStore.New(db),
			receipt.NewRenderer(cfg.Receipts.Dir, cfg.Receipts.Issuer), payment.WithLogger(logger))
		reportService = report.NewService(paymentService, logger)
		moraJob       = mora.NewJob(moraStore.New(db), mora.WithLogger(logger))
	)

	if err := bootstrapAdmin(ctx, cfg, authService, logger); err != nil {
		return err
	}

	sched := scheduler.New(logger, scheduler.WithTimeout(cfg.Mora.Timeout))

	if err := sched.Add(mora.JobName, cfg.Mora.Schedule, moraJob.Run); err != nil {
		return err
	}

	err = sched.Add(rolloverJob, cfg.Readings.RolloverSchedule, func(ctx context.Context) error {
		_, err := readingService.EnsureMonthly(ctx)
		return err
	})
	if err != nil {
		return err
	}

	router := coopHttp.New(coopHttp.Options{
		FrontendOrigin: cfg.App.FrontendOrigin,
		Timeout:        cfg.Server.Timeout,
		ReceiptsDir:    cfg.Receipts.Dir,
		ReceiptsURL:    cfg.Receipts.URLPrefix,
	}, tokens, coopHttp.Handlers{
		Auth:     authHandler.NewHandler(authService, tokens),
		Tariffs:  tariffHandler.NewHandler(tariffService),
		Readings: readingHandler.NewHandler(readingService, importService),
		Vouchers: voucherHandler.NewHandler(voucherService),
		Payments: paymentHandler.NewHandler(paymentService, cfg.Receipts.URLPrefix),
		Reports:  reportHandler.NewHandler(reportService),
		Mora:     moraHandler.NewHandler(sched, moraJob),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	sched.Start()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "app", cfg.App.Name)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}

	return sched.Stop(shutdownCtx)
}

func bootstrapAdmin(ctx context.Context, cfg *config.Config, svc *auth.Service, logger *slog.Logger) error {
	if cfg.Auth.AdminUsername == "" || cfg.Auth.AdminPassword == "" {
		return nil
	}

	_, err := svc.CreateOperator(ctx, auth.CreateParams{
		Username: cfg.Auth.AdminUsername,
		FullName: "Administrator",
		Password: cfg.Auth.AdminPassword,
		Role:     auth.RoleAdmin,
	})

	switch {
	case err == nil:
		logger.Info("bootstrap admin created", "username", cfg.Auth.AdminUsername)
	case errors.Is(err, auth.ErrUsernameTaken):
	default:
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	return nil
}
