package logging

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mfigueroa/backlog/internal/config"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Init initializes the logging system, writing logs to a file under the
// data directory. Uses text format for human readability.
func Init() error {
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	// Open log file in append mode
	logPath := filepath.Join(logDir, "backlog.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	// Create text handler (human readable)
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// Keep the repositories' and services' warning prints out of command
	// output by sending the standard log package to the same file.
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags)

	return nil
}
