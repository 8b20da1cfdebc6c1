package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fridgechef/internal/api"
	"fridgechef/internal/config"
	"fridgechef/internal/history"
	"fridgechef/internal/logging"
	"fridgechef/internal/platform/gemini"
	"fridgechef/internal/platform/localllm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	model, closeModel, err := newModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error creating model client: %w", err)
	}
	defer closeModel()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error creating history store: %w", err)
	}
	defer closeStore()

	handler := api.NewHandler(model, store, logger, api.Options{
		Provider:      cfg.Model.Provider,
		ModelTimeout:  cfg.Model.Timeout,
		MaxImageBytes: cfg.Image.MaxSizeBytes,
		ResizeWidth:   cfg.Image.ResizeWidth,
		Debug:         cfg.App.Debug(),
	})
	router := api.NewRouter(handler, logger, api.RouterConfig{
		AllowOrigins: cfg.CORS.Origins,
		Debug:        cfg.App.Debug(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("provider", cfg.Model.Provider),
			zap.Bool("history", store != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// newModel builds the configured model back-end and its cleanup func.
func newModel(ctx context.Context, cfg *config.Config) (api.Model, func() error, error) {
	switch cfg.Model.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case config.ProviderLocal:
		client := localllm.NewClient(localllm.Options{
			BaseURL:   cfg.LocalLLM.BaseURL,
			APIKey:    cfg.LocalLLM.APIKey,
			Model:     cfg.LocalLLM.Model,
			MaxTokens: cfg.LocalLLM.MaxTokens,
		})
		return client, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
}

// newStore opens the analysis log when a database URL is configured. The
// returned store is a nil interface otherwise, which disables the log.
func newStore(ctx context.Context, cfg *config.Config) (history.Store, func() error, error) {
	if cfg.Database.URL == "" {
		return nil, func() error { return nil }, nil
	}
	store, err := history.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
