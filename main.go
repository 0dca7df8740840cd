// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasingagerda/batyr/batyr"
	"github.com/fasingagerda/batyr/internal/appconfig"
	"github.com/fasingagerda/batyr/internal/logutil"
)

func main() {
	configPath := flag.String("config", "batyr.yaml", "path to the configuration file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", batyr.AppName, batyr.Version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", batyr.AppName, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	logger := logutil.NewLogger(cfg.Log.Level, cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	logger.Info("starting", "name", batyr.AppName, "version", batyr.Version)

	service, err := batyr.NewService(cfg.ServiceConfig(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service.Start(context.Background())

	var jwtAuth *batyr.JWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth = batyr.NewJWTAuth(cfg.JWTSecret)
		logger.Info("API authentication enabled")
	}

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: batyr.NewServer(service, jwtAuth, logger),
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", "error", err)
	}
	if err := service.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("service shutdown failed: %w", err)
	}
	logger.Info("stopped")
	return nil
}
