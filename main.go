package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/pharmacology-api/config"
	"github.com/giygas/pharmacology-api/data"
	"github.com/giygas/pharmacology-api/logging"
	"github.com/giygas/pharmacology-api/scheduler"
	"github.com/giygas/pharmacology-api/server"
	"github.com/giygas/pharmacology-api/validation"
)

const logsDir = "logs"

// loadEnv reads .env from the working directory, then from the executable directory
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		slog.Warn("Failed to get executable path", "error", err)
		return
	}

	exPath := filepath.Dir(ex)
	if err := os.Chdir(exPath); err != nil {
		slog.Warn("Failed to change directory", "error", err)
		return
	}

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables only")
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(logging.Options{
		Dir:            logsDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		Verbose:        len(os.Args) > 1 && os.Args[1] == "-v",
	})
	defer logging.Shutdown()

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	parser := scheduler.NewParser(cfg.ContentDir)
	contentScheduler := scheduler.NewScheduler(dataContainer, parser, validation.NewDataValidator(), cfg.AuditInterval)
	if err := contentScheduler.Start(); err != nil {
		logging.Error("Failed to start content scheduler", "error", err)
		logging.Shutdown()
		os.Exit(1)
	}
	defer contentScheduler.Stop()

	readyCtx, cancelReady := context.WithTimeout(context.Background(), 30*time.Second)
	err = dataContainer.WaitReady(readyCtx)
	cancelReady()
	if err != nil {
		logging.Error("Content never became ready", "error", err)
		contentScheduler.Stop()
		logging.Shutdown()
		os.Exit(1)
	}

	srv := server.NewServer(cfg, dataContainer)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logging.Info(fmt.Sprintf("Received %s", sig))
	case err := <-serverErr:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
			contentScheduler.Stop()
			logging.Shutdown()
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}
