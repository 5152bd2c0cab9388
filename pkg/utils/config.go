package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Email     EmailConfig
	OTP       OTPConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
	// RefreshTTL is the lifetime of the opaque refresh session, not of a JWT.
	RefreshTTL time.Duration
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
	MaxAttempts   int
	ResendSeconds int
}

type RateLimitConfig struct {
	Default int
	Admin   int
	Window  time.Duration
}

func LoadConfig() (*Config, error) {
	return loadConfig(".env")
}

func loadConfig(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "book-recommendation")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ISSUER", "book-recommendation")
	v.SetDefault("JWT_ACCESS_TTL_MINUTES", 5)
	v.SetDefault("JWT_REFRESH_TTL_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("OTP_EXPIRY_MINUTES", 2)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_MAX_ATTEMPTS", 5)
	v.SetDefault("OTP_RESEND_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_DEFAULT", 5)
	v.SetDefault("RATE_LIMIT_ADMIN", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	// .env is optional in containers, the environment wins anyway
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           v.GetString("APP_NAME"),
			Port:           v.GetString("PORT"),
			Debug:          v.GetBool("DEBUG"),
			LogPath:        v.GetString("LOG_PATH"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Issuer:     v.GetString("JWT_ISSUER"),
			AccessTTL:  time.Duration(v.GetInt("JWT_ACCESS_TTL_MINUTES")) * time.Minute,
			RefreshTTL: time.Duration(v.GetInt("JWT_REFRESH_TTL_HOURS")) * time.Hour,
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: v.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        v.GetInt("OTP_LENGTH"),
			MaxAttempts:   v.GetInt("OTP_MAX_ATTEMPTS"),
			ResendSeconds: v.GetInt("OTP_RESEND_SECONDS"),
		},
		RateLimit: RateLimitConfig{
			Default: v.GetInt("RATE_LIMIT_DEFAULT"),
			Admin:   v.GetInt("RATE_LIMIT_ADMIN"),
			Window:  time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
