package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. Handlers and services receive
// children of this logger rather than constructing their own.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
