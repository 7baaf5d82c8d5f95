package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"storegg/internal/api"
	"storegg/internal/catalog"
	"storegg/internal/config"
	"storegg/internal/db"
	"storegg/internal/ledger"
	"storegg/internal/logger"
	"storegg/internal/middleware"
	"storegg/internal/service"
	"storegg/internal/state"
)

func main() {
	app := &cli.App{
		Name:   "storegg",
		Usage:  "coin storefront with an egg mini-game",
		Action: cli.ShowAppHelp,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the storefront API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: migrate,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrate(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dbConn, err := db.Connect(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()
	return db.Migrate(dbConn)
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(zapLogger)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	authDB, ledgers, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	store := catalog.NewStore()
	fetcher := catalog.NewFetcher(cfg.CatalogURL, cfg.CatalogTimeout)
	go catalog.Load(ctx, fetcher, store, zapLogger)

	authService := service.NewAuthService(authDB, zapLogger, cfg.JWTSecret)
	shopService := service.NewShopService(store, ledgers, zapLogger, service.Options{
		StartingBalance: decimal.NewFromInt(cfg.StartingBalance),
		Policy: state.Policy{
			StrictFunds:     cfg.StrictFunds,
			UniqueOwnership: cfg.UniqueOwnership,
		},
	})

	handlers := &api.Handlers{
		AuthService: authService,
		ShopService: shopService,
		Logger:      zapLogger,
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, zapLogger)
	limiter.StartCleanup(ctx, time.Minute, cfg.RateLimitIdle)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           api.NewRouter(handlers, cfg.JWTSecret, limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting server", zap.String("port", cfg.ServerPort), zap.String("ledgerBackend", cfg.LedgerBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zapLogger.Error("Failed to run server", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStores picks the player and ledger stores for the configured backend.
func openStores(ctx context.Context, cfg *config.Config) (db.AuthDB, ledger.Persister, func(), error) {
	if cfg.LedgerBackend == config.BackendMemory {
		return db.NewMemoryAuthDB(), ledger.NewMemoryPersister(), func() {}, nil
	}

	dbConn, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		_ = dbConn.Close()
		return nil, nil, nil, err
	}
	authDB := db.NewAuthDB(dbConn)

	if cfg.LedgerBackend == config.BackendRedis {
		client, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			_ = dbConn.Close()
			return nil, nil, nil, err
		}
		return authDB, db.NewRedisLedgerStore(client), func() {
			_ = client.Close()
			_ = dbConn.Close()
		}, nil
	}

	return authDB, db.NewLedgerDB(dbConn), func() { _ = dbConn.Close() }, nil
}
