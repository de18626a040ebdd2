// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Inkwell blog server. It loads
// configuration, connects to Postgres and Redis, starts the email
// worker and the nightly export job, and serves HTTP with graceful
// shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"inkwell/internal/backup"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/mailer"
	"inkwell/internal/render"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
	"inkwell/internal/tasks"
	"inkwell/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Redis (sessions, flashes, presence, fragments, tasks).
	redisClient, err := cache.Connect(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessionStore := session.NewStore(redisClient)
	presence := cache.NewPresence(redisClient)
	fragments := cache.NewFragmentCache(redisClient, cache.DefaultFragmentTTL)

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	profileStore := store.NewProfileStore(db)
	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)
	ratingStore := store.NewRatingStore(db)
	viewerStore := store.NewViewerStore(db)
	feedbackStore := store.NewFeedbackStore(db)

	// Background email delivery: handlers enqueue, the worker drains.
	queue := tasks.NewQueue(redisClient)
	sender := mailer.New(cfg)
	worker := tasks.NewWorker(queue, sender)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	tokenMaker := token.NewMaker(cfg.SecretKey)

	// Off-site copy target for exports (optional).
	remote, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		slog.Error("failed to initialize s3 storage", "error", err)
		os.Exit(1)
	}
	if remote == nil {
		slog.Warn("s3 storage not configured, exports stay local only")
	}

	// Nightly JSON export of every table.
	exporter := backup.NewExporter(db, cfg.BackupDir, remote)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.BackupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if path, err := exporter.Run(ctx); err != nil {
			slog.Error("database export failed", "error", err)
		} else {
			slog.Info("database export written", "path", path)
		}
	}); err != nil {
		slog.Error("invalid backup schedule", "error", err, "schedule", cfg.BackupSchedule)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handler groups.
	articleHandlers := handlers.NewArticles(renderer, sessionStore, articleStore, categoryStore, tagStore, commentStore, ratingStore, viewerStore, profileStore, fragments, cfg.SiteURL)
	commentHandlers := handlers.NewComments(renderer, sessionStore, commentStore, articleStore)
	ratingHandlers := handlers.NewRatings(ratingStore, articleStore)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore, tokenMaker, queue, cfg.SiteURL)
	profileHandlers := handlers.NewProfiles(renderer, sessionStore, userStore, profileStore, articleStore, presence)
	feedbackHandlers := handlers.NewFeedback(renderer, sessionStore, feedbackStore, queue, cfg.AdminEmail)

	r := router.New(router.Deps{
		Renderer: renderer,
		Sessions: sessionStore,
		Presence: presence,
		Articles: articleHandlers,
		Comments: commentHandlers,
		Ratings:  ratingHandlers,
		Auth:     authHandlers,
		Profiles: profileHandlers,
		Feedback: feedbackHandlers,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
