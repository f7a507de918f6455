package main

import (
	"log/slog"
	"os"

	"github.com/Demco21/hogbot-migrate/cmd"
	"github.com/Demco21/hogbot-migrate/hogmigrate/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Initialize custom logger
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting hogbot voice time migration",
		slog.String("version", version),
		slog.String("commit", commit))

	if err := cmd.Execute(); err != nil {
		slog.Error("Migration failed",
			slog.String("type", "error"),
			slog.Any("error", err))
		os.Exit(1)
	}
}
