package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/multidom/domainsync/config"
	"github.com/multidom/domainsync/internal/application"
	"github.com/multidom/domainsync/internal/infrastructure/cache/redis"
	"github.com/multidom/domainsync/internal/infrastructure/persistence"
	"github.com/multidom/domainsync/internal/infrastructure/persistence/postgres"
	apphttp "github.com/multidom/domainsync/internal/interfaces/http"
	"github.com/multidom/domainsync/pkg/logger"
)

func run() error {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting domain sync service...",
		logger.Component("main"),
	)

	// Initialize infrastructure
	db, redisClient, err := initInfrastructure(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()
	defer redisClient.Close()

	// Initialize application. The signing secret is resolved once here.
	repos := persistence.NewRepositories(db, redisClient)
	deps, err := application.NewDependencies(cfg)
	if err != nil {
		return err
	}
	svcs := application.NewServices(repos, deps, cfg)
	log.Info("Signing secret resolved", logger.Component("main"))

	// Create and start server
	server := newServer(cfg, svcs, repos, db, redisClient, log)
	return startServer(server, log)
}

func initLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
	})
}

func initInfrastructure(cfg *config.Config, log logger.Logger) (*postgres.DB, *redis.Client, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Connected to PostgreSQL",
		logger.Component("infrastructure"),
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
	)

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("Connected to Redis",
		logger.Component("infrastructure"),
		logger.String("host", cfg.Redis.Host),
		logger.Int("port", cfg.Redis.Port),
	)

	return db, redisClient, nil
}

func newServer(
	cfg *config.Config,
	svcs *application.Services,
	repos *persistence.Repositories,
	db *postgres.DB,
	redisClient *redis.Client,
	log logger.Logger,
) *http.Server {
	routerDeps := &apphttp.RouterDeps{
		SyncService:   svcs.Sync,
		Directory:     repos.Directory,
		DBHealther:    db,
		RedisHealther: redisClient,
		Logger:        log,
	}

	router := apphttp.NewRouter(cfg, routerDeps)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func startServer(server *http.Server, log logger.Logger) error {
	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Info("Server listening",
			logger.Component("server"),
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...",
			logger.Component("server"),
			logger.String("signal", sig.String()),
		)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited", logger.Component("server"))
	return nil
}
