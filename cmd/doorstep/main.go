package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"doorstep/internal/cart"
	"doorstep/internal/config"
	"doorstep/internal/notify"
	"doorstep/internal/pricing"
	"doorstep/internal/server"
	"doorstep/internal/storage"
	"doorstep/pkg/api"
	"doorstep/pkg/logger"
	"doorstep/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Development())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("Service stopped with error", zap.Error(err))
	}

	zapLogger.Info("Service shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	engine, err := loadEngine(ctx, cfg, zapLogger)
	if err != nil {
		return err
	}

	notifier, err := notify.New(cfg.Telegram.Token, cfg.Telegram.ChannelID, zapLogger)
	if err != nil {
		return err
	}

	handler := server.NewHandler(
		engine,
		cart.NewStore(redisClient, cfg.SessionTTL, zapLogger),
		api.NewClient(cfg.LeadsAPI.BaseURL, cfg.LeadsAPI.Token, cfg.LeadsAPI.Timeout, cfg.LeadsAPI.MaxRetries, zapLogger),
		notifier,
		redisClient,
		server.OTPPolicy{SendLimit: cfg.OTP.SendLimit, SendWindow: cfg.OTP.SendWindow},
		zapLogger,
	)

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: server.NewRouter(handler, server.RouterConfig{
			RateLimit:  cfg.HTTP.RateLimit,
			RateBurst:  cfg.HTTP.RateBurst,
			TrustProxy: cfg.HTTP.TrustProxy,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	drained := make(chan struct{})
	go func() {
		handler.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		zapLogger.Warn("Shutdown timeout reached with notifications still pending")
	}
	return nil
}

// loadEngine builds the pricing engine from the built-in tables or, with
// CATALOG_SOURCE=postgres, from the catalog database.
func loadEngine(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (*pricing.Engine, error) {
	if cfg.CatalogSource != config.CatalogPostgres {
		zapLogger.Info("Using built-in catalog")
		return pricing.NewEngine(pricing.DefaultCatalog())
	}

	catalogStorage, err := storage.NewCatalogStorage(ctx, cfg.Database, zapLogger)
	if err != nil {
		return nil, err
	}
	defer catalogStorage.Close()

	if cfg.Database.Migrate {
		if err := catalogStorage.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	catalog, err := catalogStorage.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.NewEngine(catalog)
}
