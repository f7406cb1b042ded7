// Package observability wires the process-level telemetry used by the
// commands: structured logging, OTel container metrics, and a Prometheus
// scrape endpoint.
package observability

import (
	"io"
	"log/slog"
	"strings"
)

const attrService = "service"

// LoggerConfig selects the output shape of the process logger.
type LoggerConfig struct {
	// Level is one of debug, info, warn, error. Unknown values fall back
	// to info.
	Level string

	// JSON switches the handler from human-readable text to JSON lines.
	JSON bool

	// Service is attached to every record.
	Service string
}

// NewLogger builds an slog logger writing to w per cfg.
func NewLogger(w io.Writer, cfg LoggerConfig) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var inner slog.Handler
	if cfg.JSON {
		inner = slog.NewJSONHandler(w, handlerOpts)
	} else {
		inner = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(inner)
	if cfg.Service != "" {
		logger = logger.With(slog.String(attrService, cfg.Service))
	}

	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
