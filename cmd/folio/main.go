// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/arajbanshi/folio/internal/auth"
	"github.com/arajbanshi/folio/internal/captcha"
	"github.com/arajbanshi/folio/internal/config"
	"github.com/arajbanshi/folio/internal/content"
	"github.com/arajbanshi/folio/internal/devicecache"
	"github.com/arajbanshi/folio/internal/geo"
	"github.com/arajbanshi/folio/internal/handler"
	"github.com/arajbanshi/folio/internal/logging"
	"github.com/arajbanshi/folio/internal/media"
	"github.com/arajbanshi/folio/internal/middleware"
	"github.com/arajbanshi/folio/internal/notify"
	"github.com/arajbanshi/folio/internal/scheduler"
	"github.com/arajbanshi/folio/internal/session"
	"github.com/arajbanshi/folio/internal/store"
	"github.com/arajbanshi/folio/internal/tracker"
	"github.com/arajbanshi/folio/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	generateToken := flag.Bool("generate-token", false, "Generate a new admin token, revoking any previous one, and exit")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "folio - personal portfolio site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SESSION_SECRET   CSRF/session key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DB_PATH          SQLite database path (default: ./data/folio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_CONTENT_PATH     Site content JSON path (default: ./data/config.json)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_REDIS_URL        Redis URL for the device cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_GEOIP_DB_PATH    Local GeoLite2-City.mmdb (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_HCAPTCHA_SITE_KEY / FOLIO_HCAPTCHA_SECRET_KEY  Contact form captcha (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("folio %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if *generateToken {
		if err := runGenerateToken(); err != nil {
			slog.Error("generating admin token", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// runGenerateToken mints a fresh admin token, stores its hash and prints
// the plain token exactly once.
func runGenerateToken() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	token, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}
	if err := store.New(db).ReplaceAdminToken(context.Background(), uuid.NewString(), hash, time.Now()); err != nil {
		return fmt.Errorf("storing token hash: %w", err)
	}

	fmt.Println("New admin token (shown once, store it safely):")
	fmt.Println(token)
	return nil
}

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	queries := store.New(db)

	// Session manager for the admin panel
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Device metadata cache, Redis when configured, memory otherwise
	devices, cacheErr := devicecache.NewWithFallback(devicecache.Config{
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.CachePrefix,
		TTL:      cfg.DeviceCacheTTL,
	})
	defer func() { _ = devices.Close() }()
	switch {
	case cacheErr != nil:
		slog.Warn("device cache degraded to memory", "error", cacheErr)
	case cfg.UseRedisCache():
		slog.Info("device cache initialized", "backend", "redis", "url", cfg.RedisURL)
	default:
		slog.Info("device cache initialized", "backend", "memory")
	}

	// Geolocation resolver
	resolver := geo.NewResolver(cfg.GeoAPIURL, logger)
	defer func() { _ = resolver.Close() }()
	if cfg.GeoIPDBPath != "" {
		if err := resolver.InitLocalDB(cfg.GeoIPDBPath); err != nil {
			slog.Warn("local GeoIP database unavailable, using remote API", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			slog.Info("local GeoIP database loaded", "path", cfg.GeoIPDBPath)
		}
	}

	// Webhook dispatcher and tracking service
	dispatcher := notify.NewDispatcher(queries, logger)
	trackerService := tracker.NewService(queries, resolver, dispatcher, devices, logger)

	// Background maintenance
	sched := scheduler.New(queries, devices, cfg.VisitRetentionDays, logger)
	sched.Start()
	defer sched.Stop()

	// Site content and image processing
	contentStore := content.NewStore(cfg.ContentPath, cfg.SamplePath)
	processor := media.NewProcessor(cfg.UploadsDir)
	verifier := captcha.NewVerifier(cfg.HCaptchaSiteKey, cfg.HCaptchaSecretKey)
	if verifier.Enabled() {
		slog.Info("hCaptcha verification enabled")
	}

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	// Handlers
	frontendHandler := handler.NewFrontendHandler(trackerService, contentStore, verifier, tmpl, logger)
	authHandler := handler.NewAuthHandler(queries, sessionManager, tmpl, logger)
	adminHandler := handler.NewAdminHandler(queries, logger)
	visitorsHandler := handler.NewVisitorsHandler(queries, resolver, logger)
	messagesHandler := handler.NewMessagesHandler(queries, resolver, logger)
	webhooksHandler := handler.NewWebhooksHandler(queries, dispatcher, logger)
	contentHandler := handler.NewContentHandler(contentStore, processor, logger)
	eventsHandler := handler.NewEventsHandler(queries, logger)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.SecurityHeaders(cfg.IsDevelopment()))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Public site
	r.Get("/", frontendHandler.Home)
	r.Get("/success", frontendHandler.Success)
	r.Post("/contact", frontendHandler.Contact)
	r.Post("/api/device-info", frontendHandler.DeviceInfo)
	r.Get("/healthz", handler.Health(db))

	// Static assets and uploaded images
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(web.Static())))
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.UploadsDir))))

	// Admin login/logout
	r.Get("/admin/login", authHandler.LoginPage)
	r.Post("/admin/login", authHandler.Login)
	r.Post("/admin/logout", authHandler.Logout)

	// Admin panel API, session-gated
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(sessionManager))

		r.Get("/", adminHandler.Stats)
		r.Route("/api", func(r chi.Router) {
			r.Get("/stats", adminHandler.Stats)

			r.Get("/visitors", visitorsHandler.List)
			r.Get("/visitors/{id}", visitorsHandler.Get)

			r.Get("/messages", messagesHandler.List)
			r.Get("/messages/{id}", messagesHandler.Get)
			r.Post("/messages/{id}/read", messagesHandler.MarkRead)
			r.Post("/messages/{id}/unread", messagesHandler.MarkUnread)
			r.Post("/messages/{id}/archive", messagesHandler.Archive)
			r.Delete("/messages/{id}", messagesHandler.Delete)

			r.Get("/webhooks", webhooksHandler.List)
			r.Post("/webhooks", webhooksHandler.Create)
			r.Get("/webhooks/detect", webhooksHandler.DetectPlatform)
			r.Put("/webhooks/{id}", webhooksHandler.Update)
			r.Delete("/webhooks/{id}", webhooksHandler.Delete)
			r.Post("/webhooks/{id}/test", webhooksHandler.Test)

			r.Get("/content", contentHandler.Get)
			r.Put("/content", contentHandler.Update)
			r.Put("/content/skills", contentHandler.UpdateSkills)
			r.Delete("/content/skills/{section}", contentHandler.DeleteSkillSection)
			r.Get("/content/{section}", contentHandler.GetSection)
			r.Post("/content/images", contentHandler.UploadImage)
			r.Delete("/content/images/{kind}/{name}", contentHandler.DeleteImage)

			r.Get("/events", eventsHandler.List)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
