// Package logging wraps log/slog with a console handler, a weekly rotating
// JSON file and a chi request middleware.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/pharmacology-api/config"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

// Options controls where and how verbosely the service logs
type Options struct {
	Dir            string
	RetentionWeeks int
	MaxFileSize    int64
	Env            config.Environment
	Level          string
	Verbose        bool
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance
func InitLogger(opts Options) {
	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}

	logger, rotating := SetupLogger(opts)
	DefaultLoggingService = &LoggingService{
		Logger:   logger,
		rotating: rotating,
	}
	slog.SetDefault(logger)
}

// Close releases the log file held by the service
func (ls *LoggingService) Close() error {
	if ls == nil || ls.rotating == nil {
		return nil
	}
	return ls.rotating.Close()
}

// Shutdown closes the global logging service
func Shutdown() {
	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}
}

// GetConsoleLogLevel picks the console level for an environment.
// Tests stay quiet unless verbose, and ignore LOG_LEVEL.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the level for the rotating file, which keeps everything
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current(level slog.Level) *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	current(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current(slog.LevelDebug).Debug(msg, args...)
}
