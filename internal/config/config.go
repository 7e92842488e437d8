package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Pagination
		CORS
		Lending
		Reminder
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}

	Database struct {
		User     string
		Password string
		Host     string
		Port     int
		Name     string
		SSLMode  string

		// Read pool serves GET traffic and may point at a replica;
		// write pool always targets the primary.
		ReadMaxOpenConns  int
		ReadMaxIdleConns  int
		WriteMaxOpenConns int
		WriteMaxIdleConns int
		ConnMaxLifetime   time.Duration

		LogQueries bool
	}

	Auth struct {
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int
	}

	Pagination struct {
		BooksPerPage   int
		MembersPerPage int
		DefaultLimit   int
	}

	CORS struct {
		AllowedOrigins []string
	}

	Lending struct {
		DailyFineRate float64 // fine per day overdue, applied at return time
	}

	Reminder struct {
		Enabled     bool
		Schedule    string // cron format: "0 9 * * *" = daily at 9 AM
		DueSoonDays int    // send reminders for books due within this many days

		SMTPHost     string
		SMTPPort     int
		SMTPUser     string
		SMTPPassword string
		FromEmail    string
		FromName     string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", 9000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	// DATABASE_USER and DATABASE_PASSWORD have no defaults; they are
	// validated when the pools are opened.
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 5432)
	v.SetDefault("database_name", "neighborhood_library")
	v.SetDefault("database_sslmode", "disable")
	v.SetDefault("database_read_max_open_conns", 5)
	v.SetDefault("database_read_max_idle_conns", 5)
	v.SetDefault("database_write_max_open_conns", 10)
	v.SetDefault("database_write_max_idle_conns", 10)
	v.SetDefault("database_conn_max_lifetime", "1h")
	v.SetDefault("database_log_queries", false)

	// Auth defaults
	v.SetDefault("jwt_secret", "")
	v.SetDefault("auth_token_expiry", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)

	// Pagination defaults
	v.SetDefault("default_books_per_page", 10)
	v.SetDefault("default_members_per_page", 10)
	v.SetDefault("default_page_limit", 100)

	v.SetDefault("allowed_origins", "http://localhost:9001,http://localhost:5173,http://127.0.0.1:9001")

	v.SetDefault("daily_fine_rate", 1.0)

	// Reminder job defaults
	v.SetDefault("reminder_enabled", false)
	v.SetDefault("reminder_schedule", "0 9 * * *") // Daily at 9 AM
	v.SetDefault("reminder_due_soon_days", 1)
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_user", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("from_email", "")
	v.SetDefault("from_name", "Neighborhood Library")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			User:              v.GetString("DATABASE_USER"),
			Password:          v.GetString("DATABASE_PASSWORD"),
			Host:              v.GetString("DATABASE_HOST"),
			Port:              v.GetInt("DATABASE_PORT"),
			Name:              v.GetString("DATABASE_NAME"),
			SSLMode:           v.GetString("DATABASE_SSLMODE"),
			ReadMaxOpenConns:  v.GetInt("DATABASE_READ_MAX_OPEN_CONNS"),
			ReadMaxIdleConns:  v.GetInt("DATABASE_READ_MAX_IDLE_CONNS"),
			WriteMaxOpenConns: v.GetInt("DATABASE_WRITE_MAX_OPEN_CONNS"),
			WriteMaxIdleConns: v.GetInt("DATABASE_WRITE_MAX_IDLE_CONNS"),
			ConnMaxLifetime:   v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
			LogQueries:        v.GetBool("DATABASE_LOG_QUERIES"),
		},
		Auth: Auth{
			JWTSecret:   v.GetString("JWT_SECRET"),
			TokenExpiry: v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("AUTH_BCRYPT_COST"),
		},
		Pagination: Pagination{
			BooksPerPage:   v.GetInt("DEFAULT_BOOKS_PER_PAGE"),
			MembersPerPage: v.GetInt("DEFAULT_MEMBERS_PER_PAGE"),
			DefaultLimit:   v.GetInt("DEFAULT_PAGE_LIMIT"),
		},
		CORS: CORS{
			AllowedOrigins: splitOrigins(v.GetString("ALLOWED_ORIGINS")),
		},
		Lending: Lending{
			DailyFineRate: v.GetFloat64("DAILY_FINE_RATE"),
		},
		Reminder: Reminder{
			Enabled:      v.GetBool("REMINDER_ENABLED"),
			Schedule:     v.GetString("REMINDER_SCHEDULE"),
			DueSoonDays:  v.GetInt("REMINDER_DUE_SOON_DAYS"),
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUser:     v.GetString("SMTP_USER"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			FromEmail:    v.GetString("FROM_EMAIL"),
			FromName:     v.GetString("FROM_NAME"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
