// Package app связывает конфигурацию, хранилища, сервисы и HTTP маршруты.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"brainself/internal/access"
	"brainself/internal/config"
	"brainself/internal/handlers"
	"brainself/internal/realtime"
	"brainself/internal/reminders"
	"brainself/internal/repository"
	"brainself/internal/services"
	"brainself/pkg/database"
	"brainself/pkg/notegen"
	"brainself/pkg/papers"
	"brainself/pkg/storage"
	"brainself/pkg/telegram"
)

// App собранное приложение
type App struct {
	Config *config.Config
	Log    *slog.Logger
	Repos  *repository.Repositories
	Router *gin.Engine

	Auth      *services.AuthService
	Profiles  services.ProfileService
	Timetable services.TimetableService
	Tests     services.TestService
	Inbox     services.InboxService

	hub       *realtime.Hub
	reminders *reminders.Scheduler
	expiry    *reminders.Scheduler
	redis     *redis.Client
}

// Options необязательные зависимости
type Options struct {
	// Notifier по умолчанию пишет уведомления в лог
	Notifier telegram.Notifier
	// Notes по умолчанию notegen клиент из конфигурации
	Notes handlers.NoteGenerator
}

// New создает все слои поверх открытой базы данных
func New(cfg *config.Config, db *database.Database, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, Log: log}

	a.Repos = repository.New(db.DB)
	events := access.NewEvents()
	resolver := access.NewResolver(a.Repos.Profiles, log)

	// Redis нужен для нескольких инстансов: общий чат и отзыв токенов
	broker := realtime.Broker(realtime.NewMemoryBroker())
	revocations := services.NewMemoryRevocations()
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.redis.Ping(context.Background()).Err(); err != nil {
			_ = a.redis.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		broker = realtime.NewRedisBroker(a.redis)
		revocations = services.NewRedisRevocations(a.redis)
		log.Info("redis connected", slog.String("addr", cfg.RedisAddr))
	}
	a.hub = realtime.NewHub(broker)

	notifier := opts.Notifier
	if notifier == nil {
		notifier = telegram.NewLogNotifier(log)
	}

	store, err := storage.NewStorage(cfg.UploadPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	notes := opts.Notes
	if notes == nil {
		notes = notegen.New(notegen.Config{
			APIKey:  cfg.CompletionAPIKey,
			BaseURL: cfg.CompletionBaseURL,
			Model:   cfg.CompletionModel,
			Timeout: cfg.CompletionTimeout,
		})
		log.Info("note generator configured",
			slog.String("model", cfg.CompletionModel),
			slog.String("key", notegen.MaskKey(cfg.CompletionAPIKey)))
	}

	a.reminders = reminders.NewScheduler()
	a.expiry = reminders.NewScheduler()

	// Сервисы
	a.Auth = services.NewAuthService(a.Repos, revocations, events, log, cfg.JWTSecret, cfg.JWTExpiration)
	a.Profiles = services.NewProfileService(a.Repos.Profiles, events, log)
	achievements := services.NewAchievementService(a.Repos, log)
	groups := services.NewGroupService(a.Repos, cfg.GroupAutoJoinCreator)
	chat := services.NewChatService(a.Repos, groups, a.hub, log)
	courses := services.NewCourseService(a.Repos, achievements, log)
	a.Tests = services.NewTestService(a.Repos, achievements, store, a.expiry, log)
	a.Timetable = services.NewTimetableService(a.Repos, a.reminders, notifier, cfg.ReminderLead, log)
	a.Inbox = services.NewInboxService(a.Repos, notifier, log)

	router, err := handlers.NewRouter(handlers.RouterOptions{
		Tokens:         a.Auth,
		Resolver:       resolver,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
	}, handlers.Handlers{
		Auth:       handlers.NewAuthHandler(a.Auth),
		Profile:    handlers.NewProfileHandler(a.Profiles),
		SchoolTags: handlers.NewSchoolTagHandler(services.NewSchoolTagService(a.Repos)),
		Groups:     handlers.NewGroupHandler(groups),
		Chat:       handlers.NewChatHandler(chat, resolver, a.Auth, cfg.AllowedOrigins),
		Marks:      handlers.NewMarksHandler(services.NewMarksService(a.Repos)),
		Analytics:  handlers.NewAnalyticsHandler(services.NewAnalyticsService(a.Repos, log)),
		Tests:      handlers.NewTestHandler(a.Tests),
		Courses:    handlers.NewCourseHandler(courses),
		Student:    handlers.NewStudentHandler(services.NewDashboardService(a.Repos), achievements),
		Timetable:  handlers.NewTimetableHandler(a.Timetable),
		Inbox:      handlers.NewInboxHandler(a.Inbox),
		Content:    handlers.NewContentHandler(papers.NewCatalog(cfg.PapersPath), notes),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Router = router
	return a, nil
}

// Restore заново взводит напоминания и таймеры попыток после запуска
func (a *App) Restore(ctx context.Context) error {
	n, err := a.Timetable.RestoreReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore reminders: %w", err)
	}
	if err := a.Tests.RestoreExpiries(ctx); err != nil {
		return fmt.Errorf("failed to restore attempt expiries: %w", err)
	}
	a.Log.Info("schedules restored", slog.Int("reminders", n))
	return nil
}

// LinkTelegram привязывает чат к профилю; код это ID профиля.
// После привязки разрешение на напоминания запрашивается заново.
func (a *App) LinkTelegram(ctx context.Context, code string, chatID int64) error {
	if err := a.Profiles.LinkTelegram(ctx, code, chatID); err != nil {
		return err
	}
	if id, err := uuid.Parse(strings.TrimSpace(code)); err == nil {
		a.Timetable.ForgetPermission(id)
	}
	return nil
}

// Close останавливает планировщики и закрывает внешние соединения
func (a *App) Close() {
	if a.reminders != nil {
		a.reminders.Stop()
	}
	if a.expiry != nil {
		a.expiry.Stop()
	}
	if a.hub != nil {
		if err := a.hub.Close(); err != nil {
			a.Log.Warn("failed to close realtime hub", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("failed to close redis", slog.String("error", err.Error()))
		}
	}
}
