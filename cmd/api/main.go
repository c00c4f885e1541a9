package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/delivery_team_backend/internal/config"
	"github.com/mishasvintus/delivery_team_backend/internal/handler"
	"github.com/mishasvintus/delivery_team_backend/internal/logger"
	"github.com/mishasvintus/delivery_team_backend/internal/mailer"
	"github.com/mishasvintus/delivery_team_backend/internal/payment"
	"github.com/mishasvintus/delivery_team_backend/internal/realtime"
	"github.com/mishasvintus/delivery_team_backend/internal/repository"
	"github.com/mishasvintus/delivery_team_backend/internal/repository/store"
	"github.com/mishasvintus/delivery_team_backend/internal/router"
	"github.com/mishasvintus/delivery_team_backend/internal/service"
)

const sessionBuffer = 16

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewPostgresDB(cfg.Database.DSN(), repository.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if cfg.Database.ApplySchema {
		if err := repository.ApplySchema(context.Background(), db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	pg := store.New(db)

	var provider payment.Provider = payment.Disabled{}
	if cfg.Payment.StripeSecretKey != "" {
		provider = payment.NewStripe(cfg.Payment.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payments are disabled")
	}

	var mail mailer.Sender = mailer.NewLogSender(log)
	if cfg.Mail.APIKey != "" {
		mail = mailer.NewMailerSend(cfg.Mail.APIKey, cfg.Mail.FromEmail, cfg.Mail.FromName)
	} else {
		log.Warn("MAILERSEND_API_KEY not set, emails are logged only")
	}

	hub := realtime.NewHub(sessionBuffer)
	sessions := realtime.NewSessionServer(hub, log, cfg.Server.WSOriginPatterns)

	notificationService := service.NewNotificationService(pg, hub, log)
	teamService := service.NewTeamService(pg, mail, notificationService, log, cfg.Server.FrontendURL)
	resolver := service.NewPaymentResolver(pg, provider, log, cfg.Payment.ProviderTimeout)
	paymentService := service.NewPaymentService(pg, pg, provider, resolver, notificationService, log, cfg.Payment.ProviderTimeout)
	userService := service.NewUserService(pg)

	r := router.SetupRoutes(router.Handlers{
		Team:         handler.NewTeamHandler(teamService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Notification: handler.NewNotificationHandler(notificationService, sessions),
	}, router.Options{
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		Users:          userService,
		RequestTimeout: cfg.Server.RequestTimeout,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
