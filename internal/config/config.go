package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит все настройки приложения
type Config struct {
	// Server
	Port           string
	Host           string
	Env            string
	AllowedOrigins []string

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Redis (рассылка событий чата между инстансами)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Telegram
	TelegramBotToken string

	// File Storage
	UploadPath string
	PapersPath string

	// Security
	JWTSecret     string
	JWTExpiration time.Duration

	// Completion API (генератор конспектов)
	CompletionAPIKey  string
	CompletionBaseURL string
	CompletionModel   string
	CompletionTimeout time.Duration

	// Domain
	ReminderLead         time.Duration
	GroupAutoJoinCreator bool

	// Logging
	LogLevel string

	// Bootstrap
	DefaultAdminEmail    string
	DefaultAdminPassword string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config := &Config{
		Port:                 v.GetString("PORT"),
		Host:                 v.GetString("HOST"),
		Env:                  v.GetString("APP_ENV"),
		AllowedOrigins:       splitList(v.GetString("ALLOWED_ORIGINS")),
		DBDriver:             strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:               v.GetString("DB_PATH"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		TelegramBotToken:     v.GetString("TELEGRAM_BOT_TOKEN"),
		UploadPath:           v.GetString("UPLOAD_PATH"),
		PapersPath:           v.GetString("PAPERS_PATH"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTExpiration:        v.GetDuration("JWT_EXPIRATION"),
		CompletionAPIKey:     v.GetString("COMPLETION_API_KEY"),
		CompletionBaseURL:    v.GetString("COMPLETION_BASE_URL"),
		CompletionModel:      v.GetString("COMPLETION_MODEL"),
		CompletionTimeout:    v.GetDuration("COMPLETION_TIMEOUT"),
		ReminderLead:         v.GetDuration("REMINDER_LEAD"),
		GroupAutoJoinCreator: v.GetBool("GROUP_AUTO_JOIN_CREATOR"),
		LogLevel:             strings.ToLower(v.GetString("LOG_LEVEL")),
		DefaultAdminEmail:    v.GetString("DEFAULT_ADMIN_EMAIL"),
		DefaultAdminPassword: v.GetString("DEFAULT_ADMIN_PASSWORD"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "10000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "/tmp/brainself.db")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("UPLOAD_PATH", "/tmp/brainself/uploads")
	v.SetDefault("PAPERS_PATH", "./papers")
	v.SetDefault("JWT_SECRET", "brainself_dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("COMPLETION_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("COMPLETION_MODEL", "llama3-8b-8192")
	v.SetDefault("COMPLETION_TIMEOUT", "120s")
	v.SetDefault("REMINDER_LEAD", "5m")
	v.SetDefault("GROUP_AUTO_JOIN_CREATOR", false)
	v.SetDefault("LOG_LEVEL", "info")
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == "brainself_dev_secret") {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive")
	}
	if c.ReminderLead < 0 {
		return fmt.Errorf("REMINDER_LEAD must not be negative")
	}
	return nil
}

// IsProduction сообщает, запущено ли приложение в боевом режиме
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Addr возвращает адрес для http.Server
func (c *Config) Addr() string { return c.Host + ":" + c.Port }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
