// Package logging provides structured logging configuration for apisim.
//
// This package wraps log/slog to provide consistent logging across the
// simulation library and the CLI. It supports configurable log levels and
// output formats.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("snapshot loaded", "path", path, "collections", n)
//	logger.Error("seed rejected", "error", err)
//
// # Integration
//
// Components accept a *slog.Logger in their constructor. If no logger is
// provided, they fall back to logging.Nop().
package logging
