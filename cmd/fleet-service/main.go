package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"

	"fleet-service/internal/auth"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	"fleet-service/internal/deadline"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/logger"
	"fleet-service/internal/mailer"
	"fleet-service/internal/repository"
	"fleet-service/internal/scheduler"
	"fleet-service/internal/service"
	"fleet-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	vehicleRepo := repository.NewVehicleRepository(database)
	engine := deadline.NewEngine(log.With().Str("component", "deadline").Logger())

	var images service.ImageStore
	if cfg.S3.Enabled() {
		store, err := storage.NewImageStore(cfg.S3, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create image store")
		}
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := store.EnsureBucket(bucketCtx); err != nil {
			log.Warn().Err(err).Str("bucket", cfg.S3.Bucket).Msg("image bucket not ready")
		}
		cancel()
		images = store
	} else {
		log.Warn().Msg("S3_ENDPOINT not set, image upload disabled")
	}

	var sender service.Sender
	if cfg.Mail.Enabled() {
		smtp, err := mailer.NewSMTPMailer(cfg.Mail)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create mailer")
		}
		sender = smtp
	} else {
		log.Warn().Msg("MAIL_TO or MAIL_USER not set, digest delivery disabled")
	}

	vehicleService := service.NewVehicleService(vehicleRepo, engine, images, cfg.Files.MaxImageBytes, log)
	dashboardService := service.NewDashboardService(vehicleRepo, engine)
	notificationService := service.NewNotificationService(vehicleRepo, engine, sender, cfg.Digest.HorizonDays, log)

	daily, err := scheduler.NewDaily(cfg.Digest.At, func(ctx context.Context) error {
		_, err := notificationService.Run(ctx)
		return err
	}, log.With().Str("component", "scheduler").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create digest scheduler")
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(vehicleService, dashboardService, notificationService, daily, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), func(ctx context.Context) error {
		return db.HealthCheck(ctx, database)
	}, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("starting fleet service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Digest.Enabled {
		g.Go(func() error {
			return daily.Start(ctx)
		})
	} else {
		log.Info().Msg("daily digest disabled")
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}
