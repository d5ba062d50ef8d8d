package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brainself/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options описывает подключение к базе данных
type Options struct {
	Driver   string // sqlite | postgres
	DSN      string // путь к файлу sqlite или URL postgres
	LogLevel logger.LogLevel
}

// Database представляет подключение к базе данных
type Database struct {
	DB *gorm.DB
}

// NewDatabase создает новое подключение к базе данных и мигрирует схему
func NewDatabase(opts Options) (*Database, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "", "sqlite":
		// Создаем директорию для базы данных если она не существует
		if !isMemoryDSN(opts.DSN) {
			if err := os.MkdirAll(filepath.Dir(opts.DSN), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(opts.DSN)
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}

	// Автомиграция моделей
	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

// NewMemory открывает отдельную in-memory базу sqlite (используется в тестах)
func NewMemory() (*Database, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	d, err := NewDatabase(Options{Driver: "sqlite", DSN: dsn, LogLevel: logger.Silent})
	if err != nil {
		return nil, err
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, err
	}
	// общий кеш sqlite не допускает параллельных писателей
	sqlDB.SetMaxOpenConns(1)
	return d, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || (len(dsn) > 5 && dsn[:5] == "file:")
}

// Migrate выполняет миграцию базы данных
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&models.User{},
		&models.SchoolTag{},
		&models.Profile{},
		&models.UserSchoolTag{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupChatMessage{},
		&models.StudentMark{},
		&models.Subject{},
		&models.Course{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.LessonProgress{},
		&models.YoutubeVideo{},
		&models.VideoProgress{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestAttempt{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.StudySession{},
		&models.TimetableEntry{},
		&models.Message{},
	)
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping проверяет доступность базы
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// EnsureAdmin создает администратора по умолчанию, если учетной записи с таким email нет
func (d *Database) EnsureAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var user models.User
	err := d.DB.Where("email = ?", email).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up default admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	role := models.RoleAdmin
	return d.DB.Transaction(func(tx *gorm.DB) error {
		user = models.User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create default admin: %w", err)
		}
		profile := models.Profile{
			ID:       uuid.New(),
			UserID:   user.ID,
			Nickname: "admin",
			Email:    email,
			Role:     &role,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create default admin profile: %w", err)
		}
		return nil
	})
}
