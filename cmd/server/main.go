// Package main is the entry point for the mangaden web server. It loads
// configuration, connects to Postgres and Redis, wires the repositories,
// services and handlers together, and runs the HTTP server with graceful
// shutdown.
package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"mangaden/database"
	"mangaden/internal/auth"
	"mangaden/internal/cache"
	"mangaden/internal/config"
	"mangaden/internal/handler"
	"mangaden/internal/middleware"
	"mangaden/internal/repository"
	"mangaden/internal/service"
	"mangaden/internal/session"
	"mangaden/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "env", cfg.GoEnv, "port", cfg.HTTPPort)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.MediaRoot)
	if err != nil {
		logger.Error("media storage init failed", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)

	// Redis backs flash messages and the rankings cache. The site still
	// works without it: flashes are dropped and rankings hit the database.
	var flashes session.FlashStore
	var rankings *cache.RankingsCache
	if client := connectRedis(cfg, logger); client != nil {
		flashes = session.NewRedisFlashStore(client)
		rankings = cache.NewRankingsCache(client, time.Duration(cfg.CacheTTL)*time.Second)
		defer client.Close()
	}

	mangaRepo := repository.NewMangaRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	authorRepo := repository.NewAuthorRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	viewRepo := repository.NewViewCountRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	catalogService := service.NewCatalogService(mangaRepo, authorRepo, categoryRepo, chapterRepo, store)
	chapterService := service.NewChapterService(chapterRepo, mangaRepo, historyRepo, store)
	socialService := service.NewSocialService(followRepo, commentRepo, ratingRepo, mangaRepo)
	profileService := service.NewProfileService(userRepo, historyRepo, store)
	browseService := service.NewBrowseService(mangaRepo, categoryRepo, followRepo, ratingRepo, commentRepo, viewRepo, rankings)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"iterate": func(from, to int) []int {
			out := make([]int, 0, to-from+1)
			for i := from; i <= to; i++ {
				out = append(out, i)
			}
			return out
		},
		"deref": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
	})
	r.LoadHTMLGlob("web/templates/*.html")

	secure := cfg.IsProduction()
	r.Use(middleware.CSRF([]byte(cfg.CSRFKey), secure))
	r.Use(middleware.Session(tokens))

	r.Static("/media", store.Root())
	r.Static("/static", "web/static")
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	publicHandler := handler.NewPublicHandler(browseService, chapterService, flashes)
	publicHandler.RegisterRoutes(r)

	authHandler := handler.NewAuthHandler(authService, tokens, secure, flashes)
	authGroup := r.Group("/auth", middleware.RateLimit(rate.Every(3*time.Second), 5))
	authHandler.RegisterRoutes(authGroup)

	userHandler := handler.NewUserHandler(profileService, socialService, cfg.UploadMaxSize, flashes)
	userGroup := r.Group("/user", middleware.RequireLogin())
	actionsGroup := r.Group("/", middleware.RequireLogin())
	userHandler.RegisterRoutes(userGroup, actionsGroup)

	adminHandler := handler.NewAdminHandler(catalogService, chapterService, cfg.UploadMaxSize, flashes)
	adminGroup := r.Group("/admin", middleware.RequireAdmin())
	adminHandler.RegisterRoutes(adminGroup)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// connectRedis returns nil when Redis is unreachable so callers can
// degrade instead of refusing to start.
func connectRedis(cfg *config.Config, logger *slog.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid redis url, continuing without redis", "error", err)
		return nil
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, continuing without flash messages and rankings cache", "error", err)
		client.Close()
		return nil
	}
	logger.Info("connected to redis")
	return client
}
