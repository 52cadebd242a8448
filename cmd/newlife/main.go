package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HttpsPratik/new-life/internal/accounts"
	"github.com/HttpsPratik/new-life/internal/app"
	"github.com/HttpsPratik/new-life/internal/donations"
	"github.com/HttpsPratik/new-life/internal/feedback"
	"github.com/HttpsPratik/new-life/internal/mail"
	"github.com/HttpsPratik/new-life/internal/missing"
	"github.com/HttpsPratik/new-life/internal/observability"
	"github.com/HttpsPratik/new-life/internal/pets"
	"github.com/HttpsPratik/new-life/internal/platform/cache"
	"github.com/HttpsPratik/new-life/internal/platform/db"
	"github.com/HttpsPratik/new-life/internal/rescue"
	"github.com/HttpsPratik/new-life/internal/terms"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mailer, err := mail.NewClient(cfg.SMTPURL, cfg.SMTPFrom, cfg.SMTPSkipTLS)
	if err != nil {
		logger.Error("configure smtp", slog.Any("error", err))
		os.Exit(1)
	}
	if !mailer.IsEnabled() {
		logger.Warn("smtp not configured, outgoing email disabled")
	}

	sessions := accounts.NewSessionIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, redisClient)

	termsRepo := terms.NewRepository(dbpool)
	termsService := terms.NewService(termsRepo)
	termsHandler := terms.NewHandler(logger, termsService)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo, sessions, mailer, termsService, logger, accounts.ServiceConfig{
		VerificationTokenTTL: cfg.VerificationTokenTTL,
		ResetTokenTTL:        cfg.ResetTokenTTL,
		FrontendURL:          cfg.FrontendURL,
	})
	accountsHandler := accounts.NewHandler(logger, accountsService)
	authMiddleware := accounts.NewAuthMiddleware(sessions, accountsRepo, logger)

	petsRepo := pets.NewRepository(dbpool)
	petsService := pets.NewService(petsRepo, mailer, logger, cfg.FrontendURL)
	petsHandler := pets.NewHandler(logger, petsService)

	missingRepo := missing.NewRepository(dbpool)
	missingService := missing.NewService(missingRepo, mailer, logger, cfg.FrontendURL)
	missingHandler := missing.NewHandler(logger, missingService)

	rescueRepo := rescue.NewRepository(dbpool)
	rescueService := rescue.NewService(rescueRepo)
	rescueHandler := rescue.NewHandler(logger, rescueService)

	donationsRepo := donations.NewRepository(dbpool)
	donationsService := donations.NewService(donationsRepo)
	donationsHandler := donations.NewHandler(logger, donationsService)

	feedbackRepo := feedback.NewRepository(dbpool)
	feedbackService := feedback.NewService(feedbackRepo)
	feedbackHandler := feedback.NewHandler(logger, feedbackService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthMiddleware:   authMiddleware,
		AccountsHandler:  accountsHandler,
		TermsHandler:     termsHandler,
		PetsHandler:      petsHandler,
		MissingHandler:   missingHandler,
		RescueHandler:    rescueHandler,
		DonationsHandler: donationsHandler,
		FeedbackHandler:  feedbackHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
