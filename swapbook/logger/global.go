package logger

import (
	"log/slog"
	"time"
)

// LogSwap logs a committed lifecycle transition.
func LogSwap(op string, swapID int64, role string, affected int64) {
	slog.Info("Swap transition committed",
		slog.String("type", "swap"),
		slog.String("op", op),
		slog.Int64("swap_id", swapID),
		slog.String("role", role),
		slog.Int64("affected_rows", affected),
	)
}

// LogQuery logs database operations
func LogQuery(query string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "db"),
		slog.Duration("took", duration),
		slog.String("query", query),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs, slog.Any("error", err))...)
		return
	}
	slog.Debug("Query executed", attrs...)
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
