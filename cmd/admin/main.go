package main

import (
	"log/slog"
	"os"

	"brainself/internal/config"
	"brainself/pkg/database"
	"brainself/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(os.Stderr, cfg.LogLevel)

	dsn := cfg.DBPath
	if cfg.DBDriver == config.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	db, err := database.NewDatabase(database.Options{Driver: cfg.DBDriver, DSN: dsn})
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cli := newCommandLine(db, log)
	err = newRootCmd(cli).Execute()
	_ = db.Close()
	if err != nil {
		os.Exit(1)
	}
}
