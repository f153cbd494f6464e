package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/db"
	"recipebox/internal/handlers"
	"recipebox/internal/logger"
	"recipebox/internal/middleware"
	"recipebox/internal/router"
	"recipebox/internal/services"
	"recipebox/internal/session"
	"recipebox/internal/store"
	"recipebox/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	cfg := config.Load()
	logr := logger.New(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	// Database
	gdb, err := db.Open(db.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Debug:           !cfg.IsProduction(),
	}, logr)
	if err != nil {
		logr.WithError(err).Fatal("failed to connect database")
	}
	if err := db.Migrate(gdb); err != nil {
		logr.WithError(err).Fatal("failed to migrate database")
	}
	if err := db.SeedCategories(gdb, logr); err != nil {
		logr.WithError(err).Fatal("failed to seed categories")
	}

	// Redis, only when the cache or the rate limiter needs it
	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logr.WithError(err).Warn("redis not reachable, cache and rate limit will degrade")
		}
		cancel()
	}
	cacheStore, err := cache.New(cfg.CacheDriver, rdb)
	if err != nil {
		logr.WithError(err).Fatal("failed to build cache")
	}

	st := store.New(gdb)
	deps := &handlers.Deps{
		Config: cfg,
		Log:    logr,
		Store:  st,
		Feed:   services.NewFeedService(st, cacheStore, cfg.CacheTTL, logr),
		Mail:   services.NewMailService(cfg, logr),
	}

	// Initialize Gin
	r := gin.New()
	r.Use(middleware.RequestID())
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logr))
	}
	r.Use(deps.Recovery())
	r.Use(middleware.Metrics())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.GzipEnabled {
		r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	}
	r.Use(sessions.Sessions(session.Name, session.NewStore(cfg)))
	r.Use(middleware.LoadUser(st, cfg, logr))

	// Load Templates using Multitemplate so every view gets its own set
	renderer, err := handlers.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		logr.WithError(err).Fatal("failed to load templates")
	}
	r.HTMLRender = renderer

	// Static Assets
	r.Static("/static", cfg.StaticDir)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.RegisterRoutes(r, deps, rdb)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.WithError(err).Error("server forced to shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := db.Close(gdb); err != nil {
		logr.WithError(err).Error("failed to close database")
	}
	logr.Info("server exited")
}
