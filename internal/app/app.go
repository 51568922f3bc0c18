package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/auth"
	"github.com/hostelhub/hostel-service/internal/cache"
	"github.com/hostelhub/hostel-service/internal/config"
	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/handlers"
	"github.com/hostelhub/hostel-service/internal/metrics"
	"github.com/hostelhub/hostel-service/internal/realtime"
	"github.com/hostelhub/hostel-service/internal/repositories/postgres"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/upload"
	"github.com/hostelhub/hostel-service/internal/utils"
	"github.com/hostelhub/hostel-service/internal/validator"
	"github.com/hostelhub/hostel-service/pkg"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// App owns every long-lived resource of the process. Nothing is global; two
// Apps can run side by side.
type App struct {
	cfg    *config.Config
	logger utils.Logger

	db        *gorm.DB
	redis     *redis.Client
	broker    *config.Broker
	publisher events.EventPublisher
	hub       *realtime.Hub
	relay     *realtime.Relay
	server    *http.Server
}

// New wires the application. Resources opened before a failure are released.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	logger := utils.NewLogger(cfg.Environment)
	a = &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	slogger := logger.Slog()
	cfg.LogPolicy(slogger)

	a.db, err = pkg.InitDatabase(cfg)
	if err != nil {
		return a, err
	}
	if err = pkg.Migrate(a.db); err != nil {
		return a, err
	}

	a.redis, err = pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		return a, err
	}
	var counter cache.CounterStore
	if a.redis != nil {
		counter = cache.NewRedisCounter(a.redis, "hostel:ratelimit", slogger)
	} else {
		logger.Warn("REDIS_URL not set, issue creation is not rate limited")
	}

	a.broker, err = cfg.Events.CreateBroker(slogger)
	if err != nil {
		return a, err
	}
	a.publisher = cfg.Events.CreateEventPublisher(a.broker, slogger)

	m := metrics.New()
	a.hub = realtime.NewHub(slogger, m)
	a.relay = realtime.NewRelay(a.broker.Subscriber, cfg.Events.RealtimeTopic, a.hub, slogger)
	if err = a.relay.Start(ctx); err != nil {
		return a, err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      postgres.NewRepository(a.db),
		Tokens:    tokens,
		Publisher: a.publisher,
		Recorder:  m,
		Logger:    slogger,
		Validator: validator.New(),
	})

	created, err := serviceManager.Auth().EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return a, fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	if created {
		logger.Info("Bootstrap admin account created", "email", cfg.AdminEmail)
	}

	storage, err := upload.NewLocalStorage(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return a, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.UploadMaxBytes

	handlers.NewHandlerManager(serviceManager, storage, logger).SetupRoutes(router, handlers.RouteOptions{
		Verifier:            tokens,
		Counter:             counter,
		IssueRateLimit:      cfg.IssueRateLimit,
		PublicIssueListing:  cfg.PublicIssueListing,
		PublicStatusUpdates: cfg.PublicStatusUpdates,
		CORSOrigins:         cfg.CORSOrigins,
		UploadDir:           storage.Dir(),
		Metrics:             m,
		Socket:              realtime.NewServer(a.hub, tokens, slogger),
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run serves until ctx is cancelled, then shuts the HTTP server down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server listening", "addr", a.server.Addr, "environment", a.cfg.Environment)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Close releases resources in reverse order of acquisition. Safe on a
// partially built App.
func (a *App) Close() {
	// The event publisher wraps the broker's publisher, and closing the
	// broker also ends the relay's subscription
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.LogError(err, "Failed to close event broker")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.LogError(err, "Failed to close redis client")
		}
	}
	if a.db != nil {
		if err := pkg.CloseDatabase(a.db); err != nil {
			a.logger.LogError(err, "Failed to close database")
		}
	}
	if a.hub != nil {
		a.logger.Info("Application closed", slog.Int("open_sockets", a.hub.ConnectedCount()))
	}
}
