package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// appName tags every entry in the log file so it can be merged with other
// services' logs.
const appName = "mindcare"

// SetupLogger logs text to stderr at level. When logFile is set, the same
// records also go to that file as JSON at debug level, so retrieval details
// (distances, candidate counts) are kept even when the terminal is quiet.
// The returned cleanup closes the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	noop := func() error { return nil }

	if logFile == "" {
		return slog.New(consoleHandler(os.Stderr, level)), noop
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger := slog.New(consoleHandler(os.Stderr, level))
		logger.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, noop
	}

	return newLogger(os.Stderr, file, level), file.Close
}

// newLogger fans records out to a console handler filtered at level and a
// JSON file handler that keeps everything from debug up.
func newLogger(console, file io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		consoleHandler(console, level),
		fileHandler(file),
	))
}

func consoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

func fileHandler(w io.Writer) slog.Handler {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	return h.WithAttrs([]slog.Attr{
		slog.String("app", appName),
		slog.Int("pid", os.Getpid()),
	})
}
