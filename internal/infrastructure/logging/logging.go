package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/apascualco/campusgate/internal/infrastructure/config"
)

// New builds the process logger. LOG_FORMAT picks json or text; when unset,
// production logs json and every other environment logs text.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.LogLevel),
		ReplaceAttr: durationAsString,
	}

	var h slog.Handler
	if useJSON(cfg) {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With(
		slog.String("service", cfg.TraceServiceName),
		slog.String("version", cfg.Version),
	)
}

func useJSON(cfg *config.Config) bool {
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		return true
	case "text":
		return false
	default:
		return cfg.Env == "production"
	}
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func durationAsString(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		a.Value = slog.StringValue(a.Value.Duration().String())
	}
	return a
}
