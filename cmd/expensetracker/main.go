package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/auth"
	"expensetracker/internal/cache"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/mail"
	"expensetracker/internal/metrics"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/services"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, "server")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	m := metrics.New()

	// Without a broker the dispatcher sends directly through the mailer.
	var publisher mail.Publisher
	if client := cli.InitAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}
	dispatcher := mail.NewDispatcher(publisher, cli.NewMailer(logger, cfg), m, logger.Logger)

	transactions := services.NewTransactionService(repo, services.TransactionServiceConfig{
		DailyLimit: cfg.DailyTransactionLimit,
	}, m)
	accounts := services.NewAccountService(repo,
		auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL),
		auth.NewActionTokens(cfg.JWTSecret, cfg.TokenTTL),
		dispatcher,
		services.AccountServiceConfig{
			BaseURL:         cfg.BaseURL,
			DefaultCurrency: cfg.DefaultCurrency,
		},
	)
	preferences := services.NewPreferenceService(repo, cfg.DefaultCurrency)

	cacheManager := cache.NewManager()
	cacheManager.Register(preferences.Cache())

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})

	srv := apphttp.NewServer(apphttp.ServerConfig{
		Addr:          ":" + cfg.Port,
		SecureCookies: strings.HasPrefix(cfg.BaseURL, "https://"),
	}, apphttp.Dependencies{
		Transactions: transactions,
		Accounts:     accounts,
		Preferences:  preferences,
		Database:     repo,
		Metrics:      m,
		RateLimiter:  limiter,
		Logger:       logger,
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting expensetracker server", "port", cfg.Port, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cacheManager.Run(gctx, cacheCleanupInterval)
	})
	g.Go(func() error {
		return limiter.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			logger.Warn("Pending emails not delivered before shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
