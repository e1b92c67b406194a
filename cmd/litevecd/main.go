package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prantlf/litevec/internal/autosave"
	"github.com/prantlf/litevec/internal/config"
	"github.com/prantlf/litevec/internal/httpapi"
	"github.com/prantlf/litevec/internal/mcpapi"
	"github.com/prantlf/litevec/internal/persist"
	"github.com/prantlf/litevec/internal/vecdb"

	"github.com/mark3labs/mcp-go/server"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fmt.Fprintf(os.Stderr, "litevecd version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := vecdb.New()

	persister := persist.New(cfg.Store.Path, logger)
	if err := persister.Open(); err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := persister.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing store: %v\n", err)
		}
	}()

	if err := persister.Load(db); err != nil {
		return fmt.Errorf("loading store: %w", err)
	}
	logger.Info("store loaded", "path", cfg.Store.Path)

	autosaveLoop := autosave.New(db, persister, cfg.Autosave.Interval)
	go autosaveLoop.Run(ctx)

	coordinator := autosave.NewCoordinator(db, persister)

	handler := httpapi.NewHandler(httpapi.Deps{
		DB:                db,
		Logger:            logger,
		PayloadLimitBytes: cfg.HTTP.PayloadLimitBytes,
		RequestTimeout:    cfg.HTTP.Timeout,
		CORSMaxAge:        cfg.HTTP.CORSMaxAge,
		CompressionLimit:  cfg.HTTP.CompressionLimit,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	mcpSrv := mcpapi.NewServer(mcpapi.Deps{DB: db})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			logger.Error("MCP stdio server error", "error", err)
		}
	}()
	logger.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("litevecd listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", "error", err)
	}

	if err := coordinator.Close(shutdownCtx); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	return nil
}
