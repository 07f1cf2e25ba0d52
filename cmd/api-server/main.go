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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"comichub/database"
	"comichub/internal/assets"
	"comichub/internal/cache"
	"comichub/internal/config"
	"comichub/internal/http-api/handler"
	"comichub/internal/http-api/middleware"
	"comichub/internal/http-api/repository"
	"comichub/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db, logger)

	// The cache is optional; a nil cache degrades to always-miss.
	redisCache, err := cache.New(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTL, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	tree := assets.NewTree(cfg.FilesRoot)

	// Repositories
	comicRepo := repository.NewComicRepo(db)
	hierarchyRepo := repository.NewHierarchyRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	contentService := service.NewContentService(comicRepo, hierarchyRepo, tree, redisCache, logger)
	catalogService := service.NewCatalogService(comicRepo, hierarchyRepo, ratingRepo, redisCache)
	favoriteService := service.NewFavoriteService(favoriteRepo, hierarchyRepo, userRepo)
	ratingService := service.NewRatingService(ratingRepo, hierarchyRepo)
	genreService := service.NewGenreService(genreRepo, comicRepo, hierarchyRepo, redisCache)
	commentService := service.NewCommentService(commentRepo, hierarchyRepo, userRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/check-conn", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	// Page and poster images are served straight off the asset tree.
	r.Static("/files", cfg.FilesRoot)

	authRequired := middleware.AuthRequired(authService)

	catalogHandler := handler.NewCatalogHandler(catalogService, favoriteService)
	catalogHandler.RegisterRoutes(r.Group("/comic"), authRequired)

	createGroup := r.Group("/create")
	createGroup.Use(authRequired, middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	handler.NewCreateHandler(contentService).RegisterRoutes(createGroup)

	handler.NewCommentHandler(commentService, ratingService).
		RegisterRoutes(r.Group("/comm"), authRequired)
	handler.NewGenresHandler(genreService).
		RegisterRoutes(r.Group("/genre"), authRequired, middleware.RequireAdmin())
	handler.NewAuthHandler(authService, favoriteService).
		RegisterRoutes(r.Group("/user"), authRequired)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("server listening", "port", cfg.HTTPPort, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
