package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"

	"brainself/internal/app"
	"brainself/internal/config"
	"brainself/pkg/database"
	"brainself/pkg/logger"
	"brainself/pkg/telegram"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключаемся к базе данных
	dsn := cfg.DBPath
	if cfg.DBDriver == config.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	db, err := database.NewDatabase(database.Options{
		Driver:   cfg.DBDriver,
		DSN:      dsn,
		LogLevel: gormLevel(cfg.LogLevel),
	})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// Создаем администратора по умолчанию
	if err := db.EnsureAdmin(cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
		log.Warn("failed to create default admin", slog.String("error", err.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telegram необязателен: без токена уведомления пишутся в лог
	var (
		bot      *telegram.Bot
		notifier telegram.Notifier
	)
	if cfg.TelegramBotToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramBotToken, "http://"+cfg.Addr(), log)
		if err != nil {
			log.Warn("telegram disabled", slog.String("error", err.Error()))
		} else {
			notifier = bot
			if err := bot.SetCommands(); err != nil {
				log.Warn("failed to set bot commands", slog.String("error", err.Error()))
			}
		}
	}

	application, err := app.New(cfg, db, log, app.Options{Notifier: notifier})
	if err != nil {
		log.Error("failed to build application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Restore(ctx); err != nil {
		log.Warn("restore failed", slog.String("error", err.Error()))
	}

	if bot != nil {
		bot.SetLinkChat(application.LinkTelegram)
		go bot.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting BrainSelf server", slog.String("addr", cfg.Addr()), slog.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	}
	return gormlogger.Warn
}
