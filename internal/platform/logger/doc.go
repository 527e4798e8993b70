// Package logger configures structured JSON logging on top of log/slog and
// provides helpers for carrying request-scoped loggers through a context.
package logger
