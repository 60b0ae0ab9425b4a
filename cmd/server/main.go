package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/chills-dance/camp-api/internal/auth"
	"github.com/chills-dance/camp-api/internal/config"
	"github.com/chills-dance/camp-api/internal/database"
	"github.com/chills-dance/camp-api/internal/handler"
	appmw "github.com/chills-dance/camp-api/internal/middleware"
	"github.com/chills-dance/camp-api/internal/queue"
	"github.com/chills-dance/camp-api/internal/realtime"
	"github.com/chills-dance/camp-api/internal/repository"
	"github.com/chills-dance/camp-api/internal/router"
	pkglog "github.com/chills-dance/camp-api/pkg/log"
)

func main() {
	cfg := config.Load()
	logger := pkglog.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	teachers := repository.NewTeacherRepo(db)
	classes := repository.NewClassRepo(db)
	rsvps := repository.NewRSVPRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// Audit events go through the broker when one is configured; otherwise
	// they are written synchronously.
	var recorder auth.AuditRecorder
	if cfg.AMQPURL != "" {
		pub := queue.NewPublisher(cfg.AMQPURL, logger)
		defer pub.Close()
		recorder = pub
		go queue.NewConsumer(cfg.AMQPURL, auditRepo, logger).Start(ctx)
	} else {
		logger.Warn().Msg("RABBITMQ_URL not set, audit events bypass the broker")
		recorder = queue.NewSyncRecorder(auditRepo, logger)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	issuer := auth.NewIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	svc := auth.NewService(users, tokens, teachers, recorder, hasher, issuer, logger)

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	// Periodic sweep of expired refresh-token rows.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.CleanupIntervalH) * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := svc.CleanupExpiredTokens(ctx); err != nil {
					logger.Error().Err(err).Msg("token cleanup failed")
				}
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	if !cfg.IsProd() {
		// Request logging stays out of prod to keep payloads from the logs.
		e.Use(echomw.Logger())
	}

	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())
	authH := handler.NewAuthHandler(svc, issuer.RefreshTTL(), cfg.IsProd())
	classH := handler.NewClassHandler(classes, rsvps, hub)
	teacherH := handler.NewTeacherHandler(teachers)
	ws := realtime.NewHandler(hub, issuer)
	router.Register(e, issuer, authH, classH, teacherH, ws, limiter)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
