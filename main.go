package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"emam3/chat-relay/completion"
	"emam3/chat-relay/config"
	"emam3/chat-relay/handlers"
	"emam3/chat-relay/metrics"
	"emam3/chat-relay/quota"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	cfg, err := config.Load(config.EnvFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewDefault()
	client := completion.NewOpenAIClient(cfg.APIKey, cfg.RequestTimeout, completion.WithBaseURL(cfg.BaseURL))
	relay := handlers.NewRelay(quota.New(), client, m, logger, handlers.RelayConfig{
		SystemPrompt: cfg.SystemPrompt,
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      cfg.RequestTimeout,
	})
	chat := handlers.NewChatServer(relay, m, logger,
		handlers.WithConnectLimit(cfg.ConnectRate, cfg.ConnectBurst),
		handlers.WithBaseContext(ctx),
	)

	// Configure server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewMux(chat, m, cfg.StaticDir, cfg.SystemPromptFile),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       15 * time.Second,
	}
	srv.RegisterOnShutdown(chat.CloseAll)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "url", "http://localhost:"+cfg.Port, "model", cfg.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
