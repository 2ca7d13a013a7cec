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

	"github.com/NguyenZak/longhai-ticket-sub001/api/routes"
	_ "github.com/NguyenZak/longhai-ticket-sub001/docs"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/availability"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/notifications"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/config"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/database"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/middleware"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/validation"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger := logger.NewWithLevel(cfg.LogLevel)
	logger.SetDefault(appLogger)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("Server exited gracefully")
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	services := routes.BuildServices(cfg, db, appLogger)
	defer services.Publisher.Close()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        setupRouter(cfg, db, services, rateLimiter, appLogger),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.Bool("redis", db.Redis != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	reconciler := availability.NewReconciler(services.Availability, cfg.Booking.ReconcileInterval, appLogger)
	g.Go(func() error {
		return reconciler.Run(gctx)
	})

	if cfg.Kafka.Enabled {
		consumer, err := notifications.NewAvailabilityConsumer(
			notifications.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.BookingTopic),
			services.Availability,
			appLogger,
		)
		if err != nil {
			appLogger.Warn("Kafka consumer unavailable, relying on the reconciler", slog.Any("error", err))
		} else {
			g.Go(func() error {
				return consumer.Run(gctx)
			})
		}
	}

	return g.Wait()
}

func setupRouter(cfg *config.Config, db *database.DB, services *routes.Services, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	validation.RegisterGin()

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RequestLogger(appLogger), middleware.Recovery(appLogger))

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", middleware.RequestIDHeader},
		AllowCredentials: !containsWildcard(cfg.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
	}

	routes.NewRouter(cfg, db, services).SetupRoutes(engine)
	return engine
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
